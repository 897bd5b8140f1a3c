package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/entrhq/periscope/pkg/browser"
	"github.com/entrhq/periscope/pkg/display"
	"github.com/entrhq/periscope/pkg/guard"
	"github.com/entrhq/periscope/pkg/logging"
)

// Driver is the browser capability the relay dispatches commands against.
// *browser.Session satisfies it; tests substitute a fake.
type Driver interface {
	Navigate(url string) error
	Reload() error
	GoBack() error
	GoForward() error
	ClickAt(x, y int) error
	ScrollTo(x, y int) error
	SendKey(k browser.KeyPress) error
	CaptureScreenshot() ([]byte, error)
	CurrentURL() string
}

// ReplyFunc delivers a result to the originating connection. Implementations
// must be safe to call from the relay worker goroutine.
type ReplyFunc func(Envelope)

// handlerFunc processes one command's payload and pushes results through
// reply.
type handlerFunc func(data json.RawMessage, reply ReplyFunc)

// Options configures a Relay.
type Options struct {
	// QueueSize bounds the number of commands waiting for the worker.
	QueueSize int

	// LowBandwidth re-encodes screenshots at reduced quality.
	LowBandwidth bool

	// Guard filters navigation targets; nil admits everything.
	Guard *guard.Guard
}

// Relay serializes all client commands against the one shared browser
// session. A single worker goroutine owns the Driver exclusively and drains
// a bounded FIFO queue, so commands from different connections are applied
// in a well-defined serial order and never interleave at the browser layer.
type Relay struct {
	driver   Driver
	registry *Registry
	guard    *guard.Guard
	logger   *logging.Logger
	handlers map[string]handlerFunc

	queue        chan task
	lowBandwidth bool

	// Natural dimensions of the last screenshot pushed to any client,
	// used to translate click coordinates.
	dimsMu   sync.Mutex
	naturalW int
	naturalH int
}

type task struct {
	connID string
	cmd    Envelope
	reply  ReplyFunc
}

// New creates a relay for the given driver.
func New(driver Driver, registry *Registry, logger *logging.Logger, opts Options) *Relay {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}

	r := &Relay{
		driver:       driver,
		registry:     registry,
		guard:        opts.Guard,
		logger:       logger,
		queue:        make(chan task, opts.QueueSize),
		lowBandwidth: opts.LowBandwidth,
	}

	r.handlers = map[string]handlerFunc{
		CommandNavigate:   r.handleNavigate,
		CommandRefresh:    r.handleRefresh,
		CommandGoBack:     r.handleGoBack,
		CommandGoForward:  r.handleGoForward,
		CommandScreenshot: r.handleScreenshot,
		CommandClick:      r.handleClick,
		CommandScroll:     r.handleScroll,
		CommandKeydown:    r.handleKeydown,
	}

	return r
}

// Submit enqueues a command from a connection. It never blocks: when the
// queue is full the command is rejected with a busy error result so the
// transport goroutine stays responsive.
func (r *Relay) Submit(connID string, cmd Envelope, reply ReplyFunc) {
	r.registry.Touch(connID)
	metricCommandsTotal.WithLabelValues(r.metricType(cmd.Type)).Inc()

	select {
	case r.queue <- task{connID: connID, cmd: cmd, reply: reply}:
	default:
		metricQueueRejections.Inc()
		r.logger.Warnf("queue full, rejecting %s from %s", cmd.Type, connID)
		reply(errorEnvelope("server busy, command dropped"))
	}
}

// Run drains the queue until ctx is cancelled. Commands are applied
// one at a time in arrival order; a failing command produces an error
// result for its connection and never stops the worker.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Infof("relay worker started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Infof("relay worker stopped")
			return
		case t := <-r.queue:
			r.dispatch(t)
		}
	}
}

func (r *Relay) dispatch(t task) {
	handler, ok := r.handlers[t.cmd.Type]
	if !ok {
		r.logger.Warnf("unknown command %q from %s", t.cmd.Type, t.connID)
		t.reply(errorEnvelope(fmt.Sprintf("unknown command type: %s", t.cmd.Type)))
		return
	}

	handler(t.cmd.Data, r.countingReply(t))
}

// countingReply wraps a task's reply sink to keep the error metric honest.
func (r *Relay) countingReply(t task) ReplyFunc {
	return func(e Envelope) {
		if e.Type == ResultError {
			metricCommandErrors.WithLabelValues(r.metricType(t.cmd.Type)).Inc()
			r.logger.Warnf("%s from %s failed: %s", t.cmd.Type, t.connID, e.Data)
		}
		t.reply(e)
	}
}

// metricType collapses command types the dispatch table does not know into
// one fixed label. Clients choose the type string, and an unchecked label
// value would let them grow the metric family without bound.
func (r *Relay) metricType(typ string) string {
	if _, ok := r.handlers[typ]; ok {
		return typ
	}
	return "unknown"
}

func (r *Relay) handleNavigate(data json.RawMessage, reply ReplyFunc) {
	var payload NavigatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		reply(errorEnvelope("malformed navigate payload"))
		return
	}
	if payload.URL == "" {
		reply(errorEnvelope("navigate requires a url"))
		return
	}

	target := browser.NormalizeURL(payload.URL)
	if r.guard != nil && !r.guard.Admits(target) {
		reply(errorEnvelope(fmt.Sprintf("navigation to %s is not permitted", target)))
		return
	}

	r.logger.Infof("navigate to %s", target)
	if err := r.driver.Navigate(target); err != nil {
		reply(errorEnvelope(err.Error()))
		return
	}

	reply(navigationCompleteEnvelope(r.driver.CurrentURL()))
	r.pushScreenshot(reply)
}

func (r *Relay) handleRefresh(data json.RawMessage, reply ReplyFunc) {
	r.logger.Infof("refresh page")
	if err := r.driver.Reload(); err != nil {
		reply(errorEnvelope(err.Error()))
		return
	}
	r.pushScreenshot(reply)
}

func (r *Relay) handleGoBack(data json.RawMessage, reply ReplyFunc) {
	if err := r.driver.GoBack(); err != nil {
		reply(errorEnvelope(err.Error()))
		return
	}
	r.pushScreenshot(reply)
}

func (r *Relay) handleGoForward(data json.RawMessage, reply ReplyFunc) {
	if err := r.driver.GoForward(); err != nil {
		reply(errorEnvelope(err.Error()))
		return
	}
	r.pushScreenshot(reply)
}

func (r *Relay) handleScreenshot(data json.RawMessage, reply ReplyFunc) {
	r.pushScreenshot(reply)
}

func (r *Relay) handleClick(data json.RawMessage, reply ReplyFunc) {
	var payload ClickPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		reply(errorEnvelope("malformed click payload"))
		return
	}

	point, err := r.translate(payload)
	if err != nil {
		// Translation failure drops the click; no browser action taken.
		reply(errorEnvelope(err.Error()))
		return
	}

	r.logger.Infof("click at (%d, %d)", point.X, point.Y)
	if err := r.driver.ClickAt(point.X, point.Y); err != nil {
		reply(errorEnvelope(err.Error()))
		return
	}
	r.pushScreenshot(reply)
}

// translate maps a click payload into page space. Clients that report the
// size they displayed the screenshot at get their coordinates rescaled
// against the last screenshot's natural size; clients that omit it are
// taken to already be in page space.
func (r *Relay) translate(payload ClickPayload) (display.Point, error) {
	if payload.DisplayWidth == 0 && payload.DisplayHeight == 0 {
		return display.Point{X: int(payload.X), Y: int(payload.Y)}, nil
	}

	r.dimsMu.Lock()
	nw, nh := r.naturalW, r.naturalH
	r.dimsMu.Unlock()

	if nw == 0 || nh == 0 {
		// Nothing has been captured yet, so there is no image the
		// display size could refer to.
		return display.Point{}, &display.TranslationError{Reason: "no screenshot captured yet"}
	}

	return display.Translate(payload.X, payload.Y, nw, nh, payload.DisplayWidth, payload.DisplayHeight)
}

func (r *Relay) handleScroll(data json.RawMessage, reply ReplyFunc) {
	var payload ScrollPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		reply(errorEnvelope("malformed scroll payload"))
		return
	}

	// Fire-and-forget: scroll is cheap and has no screenshot side effect.
	if err := r.driver.ScrollTo(int(payload.X), int(payload.Y)); err != nil {
		reply(errorEnvelope(err.Error()))
	}
}

func (r *Relay) handleKeydown(data json.RawMessage, reply ReplyFunc) {
	var payload KeydownPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		reply(errorEnvelope("malformed keydown payload"))
		return
	}
	if payload.Key == "" {
		reply(errorEnvelope("keydown requires a key"))
		return
	}

	key := browser.KeyPress{
		Key:   payload.Key,
		Ctrl:  payload.CtrlKey,
		Shift: payload.ShiftKey,
		Alt:   payload.AltKey,
		Meta:  payload.MetaKey,
	}

	r.logger.Infof("key %q (modifiers: %v)", key.Key, key.Modifiers())
	if err := r.driver.SendKey(key); err != nil {
		reply(errorEnvelope(err.Error()))
		return
	}
	r.pushScreenshot(reply)
}

// pushScreenshot captures the page, remembers its natural dimensions for
// later click translation, and pushes the encoded image to the originating
// connection.
func (r *Relay) pushScreenshot(reply ReplyFunc) {
	data, err := r.driver.CaptureScreenshot()
	if err != nil {
		reply(errorEnvelope(err.Error()))
		return
	}

	if w, h, err := display.Dimensions(data); err == nil {
		r.dimsMu.Lock()
		r.naturalW, r.naturalH = w, h
		r.dimsMu.Unlock()
	}

	if r.lowBandwidth {
		if reduced, err := display.ReduceQuality(data); err == nil {
			data = reduced
		} else {
			r.logger.Warnf("quality reduction failed, sending original: %v", err)
		}
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	metricScreenshotBytes.Observe(float64(len(encoded)))
	reply(screenshotEnvelope(encoded))
}
