package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload is the single client message shape. Answer fields are
// only read for ActionAnswer.
type RequestPayload struct {
	Action         Action  `json:"action"`
	Index          int     `json:"index"`
	SelectedOption *string `json:"selected_option"`
	TimeSpent      int     `json:"time_spent"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventSaved     Event = "saved"
	EventTick      Event = "tick"
	EventExpired   Event = "expired"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

// TickResponse announces the remaining seconds of a timed attempt.
type TickResponse struct {
	Event     Event `json:"event"`
	Remaining int   `json:"remaining"`
}

// SavedResponse acknowledges an autosaved answer.
type SavedResponse struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
}

// ResultResponse carries the persisted session after submit or expiry.
type ResultResponse struct {
	Event   Event       `json:"event"`
	Session interface{} `json:"session"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
