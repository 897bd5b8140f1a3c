package server_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/periscope/pkg/browser"
	"github.com/entrhq/periscope/pkg/config"
	"github.com/entrhq/periscope/pkg/logging"
	"github.com/entrhq/periscope/pkg/relay"
	"github.com/entrhq/periscope/pkg/server"
)

// stubDriver satisfies relay.Driver with canned responses.
type stubDriver struct {
	url string
	png []byte
}

func (d *stubDriver) Navigate(url string) error          { d.url = url; return nil }
func (d *stubDriver) Reload() error                      { return nil }
func (d *stubDriver) GoBack() error                      { return nil }
func (d *stubDriver) GoForward() error                   { return nil }
func (d *stubDriver) ClickAt(x, y int) error             { return nil }
func (d *stubDriver) ScrollTo(x, y int) error            { return nil }
func (d *stubDriver) SendKey(k browser.KeyPress) error   { return nil }
func (d *stubDriver) CaptureScreenshot() ([]byte, error) { return d.png, nil }
func (d *stubDriver) CurrentURL() string                 { return d.url }

type stubStatus struct{ ready bool }

func (s stubStatus) Ready() bool { return s.ready }

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 24))))
	return buf.Bytes()
}

// newTestServer builds a full relay + server stack on a stub browser.
func newTestServer(t *testing.T, ready bool) (*httptest.Server, *relay.Registry) {
	t.Helper()

	registry := relay.NewRegistry()
	rly := relay.New(&stubDriver{png: testPNG(t)}, registry, logging.Discard("relay"), relay.Options{})

	ctx := t.Context()
	go rly.Run(ctx)

	cfg := config.ServerConfig{Host: "127.0.0.1", Port: "0", StaticDir: "testdata-absent"}
	srv := server.New(cfg, rly, registry, stubStatus{ready: ready}, logging.Discard("server"))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, registry
}

func TestHealthEndpoint(t *testing.T) {
	ts, registry := newTestServer(t, true)
	registry.Register("conn-1")

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status  string `json:"status"`
		Browser string `json:"browser"`
		Clients int    `json:"clients"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "connected", body.Browser)
	assert.Equal(t, 1, body.Clients)
}

func TestHealthReportsDisconnectedBrowser(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Browser string `json:"browser"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "disconnected", body.Browser)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) relay.Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var e relay.Envelope
	require.NoError(t, conn.ReadJSON(&e))
	return e
}

func TestWebSocketScreenshotRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t, true)
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteJSON(relay.Envelope{Type: relay.CommandScreenshot}))

	e := readEnvelope(t, conn)
	require.Equal(t, relay.ResultScreenshot, e.Type)

	var payload relay.ScreenshotResultPayload
	require.NoError(t, json.Unmarshal(e.Data, &payload))

	decoded, err := base64.StdEncoding.DecodeString(payload.Screenshot)
	require.NoError(t, err)
	assert.NotEmpty(t, decoded)
}

func TestWebSocketNavigateSequence(t *testing.T) {
	ts, _ := newTestServer(t, true)
	conn := dialWS(t, ts)

	data, err := json.Marshal(relay.NavigatePayload{URL: "https://example.com"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(relay.Envelope{Type: relay.CommandNavigate, Data: data}))

	first := readEnvelope(t, conn)
	require.Equal(t, relay.ResultNavigationComplete, first.Type)

	var nav relay.NavigationCompletePayload
	require.NoError(t, json.Unmarshal(first.Data, &nav))
	assert.Equal(t, "https://example.com", nav.URL)

	second := readEnvelope(t, conn)
	assert.Equal(t, relay.ResultScreenshot, second.Type)
}

func TestWebSocketUnknownCommand(t *testing.T) {
	ts, _ := newTestServer(t, true)
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteJSON(relay.Envelope{Type: "launch-missiles"}))

	e := readEnvelope(t, conn)
	assert.Equal(t, relay.ResultError, e.Type)
}

func TestWebSocketRegistersConnection(t *testing.T) {
	ts, registry := newTestServer(t, true)

	conn := dialWS(t, ts)
	assert.Eventually(t, func() bool { return registry.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return registry.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
