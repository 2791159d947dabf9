package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer  Action = "answer"
	ActionWarning Action = "warning"
	ActionFinish  Action = "finish"
	ActionPing    Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest is sent by the client to record the answer for one question.
type AnswerRequest struct {
	Action     Action  `json:"action"`
	QuestionID string  `json:"question_id"`
	Answer     string  `json:"answer"`
	TimeTaken  float64 `json:"time_taken"`
}

// WarningRequest is sent by the client when the proctoring hooks fire
// (window blur, paste attempt).
type WarningRequest struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
}

// FinishRequest is sent by the client to close the attempt.
type FinishRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSaved    Event = "saved"
	EventWarned   Event = "warned"
	EventFinished Event = "finished"
	EventPong     Event = "pong"
)

type SavedResponse struct {
	Event      Event  `json:"event"`
	QuestionID string `json:"question_id"`
}

type WarnedResponse struct {
	Event    Event `json:"event"`
	Warnings int   `json:"warnings"`
}

type FinishedResponse struct {
	Event          Event   `json:"event"`
	TotalTimeTaken float64 `json:"total_time_taken"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
