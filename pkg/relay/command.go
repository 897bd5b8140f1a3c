package relay

import "encoding/json"

// Command types accepted from clients.
const (
	CommandNavigate   = "navigate"
	CommandRefresh    = "refresh"
	CommandGoBack     = "go-back"
	CommandGoForward  = "go-forward"
	CommandScreenshot = "screenshot"
	CommandClick      = "click"
	CommandScroll     = "scroll"
	CommandKeydown    = "keydown"
)

// Result types pushed back to clients.
const (
	ResultNavigationComplete = "navigation-complete"
	ResultScreenshot         = "screenshot"
	ResultError              = "error"
)

// Envelope is the tagged JSON message exchanged over the wire in both
// directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NavigatePayload carries the navigate command's target.
type NavigatePayload struct {
	URL string `json:"url"`
}

// ClickPayload carries a pointer position in displayed-image pixel space,
// along with the size the client displayed the screenshot at. Clients that
// render the screenshot at its natural size may omit the display
// dimensions.
type ClickPayload struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	DisplayWidth  int     `json:"displayWidth,omitempty"`
	DisplayHeight int     `json:"displayHeight,omitempty"`
}

// ScrollPayload carries the target scroll offset in page space.
type ScrollPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// KeydownPayload carries a key event with its modifier flags, using the
// field names the DOM KeyboardEvent gives the client.
type KeydownPayload struct {
	Key      string `json:"key"`
	CtrlKey  bool   `json:"ctrlKey"`
	ShiftKey bool   `json:"shiftKey"`
	AltKey   bool   `json:"altKey"`
	MetaKey  bool   `json:"metaKey"`
}

// ScreenshotResultPayload carries an encoded screenshot.
type ScreenshotResultPayload struct {
	Screenshot string `json:"screenshot"`
}

// NavigationCompletePayload reports the URL a navigation landed on.
type NavigationCompletePayload struct {
	URL string `json:"url"`
}

// ErrorResultPayload carries a failure message for the originating
// connection.
type ErrorResultPayload struct {
	Message string `json:"message"`
}

// mustEnvelope builds an envelope from a payload that cannot fail to
// marshal (all outbound payloads are plain structs).
func mustEnvelope(typ string, payload interface{}) Envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		// Outbound payloads are marshal-safe; reaching this is a defect.
		panic(err)
	}
	return Envelope{Type: typ, Data: data}
}

func errorEnvelope(message string) Envelope {
	return mustEnvelope(ResultError, ErrorResultPayload{Message: message})
}

func screenshotEnvelope(encoded string) Envelope {
	return mustEnvelope(ResultScreenshot, ScreenshotResultPayload{Screenshot: encoded})
}

func navigationCompleteEnvelope(url string) Envelope {
	return mustEnvelope(ResultNavigationComplete, NavigationCompletePayload{URL: url})
}
