package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/examly/examly-backend/internal/middleware"
	"github.com/examly/examly-backend/internal/model"
	"github.com/examly/examly-backend/internal/service"
	ws "github.com/examly/examly-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the WebSocket attempt stream.
type WSHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/student/exams/:exam_id/stream
// Upgrades to WebSocket for low-latency answer saving and proctoring events
// during an attempt. The same semantics as the REST endpoints apply.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()

	// The attempt must exist and still be open before streaming.
	state, err := h.attemptService.GetState(ctx, examID, claims.Email)
	if err != nil {
		ws.WriteError(conn, "no attempt for this exam")
		return
	}
	if state.Completed {
		ws.WriteError(conn, "attempt is already completed")
		return
	}

	wsLog := h.log.With().
		Str("student_email", claims.Email).
		Str("exam_id", examID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			ws.WriteError(conn, "malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			h.handleAnswer(c, conn, examID, claims.Email, raw)
		case ws.ActionWarning:
			h.handleWarning(c, conn, examID, claims.Email, raw)
		case ws.ActionFinish:
			if done := h.handleFinish(c, conn, wsLog, examID, claims.Email); done {
				return
			}
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			ws.WriteError(conn, "unknown action")
		}
	}
}

func (h *WSHandler) handleAnswer(c *gin.Context, conn *websocket.Conn, examID uuid.UUID, studentEmail string, raw []byte) {
	var msg ws.AnswerRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		ws.WriteError(conn, "malformed answer")
		return
	}

	questionID, err := uuid.Parse(msg.QuestionID)
	if err != nil {
		ws.WriteError(conn, "invalid question ID")
		return
	}

	req := &model.SubmitResponseRequest{
		QuestionID: questionID,
		Answer:     msg.Answer,
		TimeTaken:  msg.TimeTaken,
	}
	if _, err := h.attemptService.SubmitResponse(c.Request.Context(), examID, studentEmail, req); err != nil {
		ws.WriteError(conn, attemptErrorMessage(err))
		return
	}

	ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, QuestionID: msg.QuestionID})
}

func (h *WSHandler) handleWarning(c *gin.Context, conn *websocket.Conn, examID uuid.UUID, studentEmail string, raw []byte) {
	var msg ws.WarningRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		ws.WriteError(conn, "malformed warning")
		return
	}
	if msg.Reason == "" {
		msg.Reason = "window_blur"
	}

	warnings, err := h.attemptService.RecordWarning(c.Request.Context(), examID, studentEmail, msg.Reason)
	if err != nil {
		ws.WriteError(conn, attemptErrorMessage(err))
		return
	}

	ws.WriteTyped(conn, ws.WarnedResponse{Event: ws.EventWarned, Warnings: warnings})
}

func (h *WSHandler) handleFinish(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, examID uuid.UUID, studentEmail string) bool {
	attempt, err := h.attemptService.Finish(c.Request.Context(), examID, studentEmail)
	if err != nil {
		ws.WriteError(conn, attemptErrorMessage(err))
		return false
	}

	total := 0.0
	if attempt.TotalTimeTaken != nil {
		total = *attempt.TotalTimeTaken
	}
	ws.WriteTyped(conn, ws.FinishedResponse{Event: ws.EventFinished, TotalTimeTaken: total})
	wsLog.Info().Msg("Attempt finished over stream")
	return true
}

func attemptErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		return "attempt not found"
	case errors.Is(err, service.ErrAttemptCompleted):
		return "attempt is already completed"
	case errors.Is(err, service.ErrQuestionNotInExam):
		return "question does not belong to this exam"
	default:
		return "internal error"
	}
}
