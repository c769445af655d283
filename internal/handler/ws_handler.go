package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/quizdrill/backend/internal/middleware"
	"github.com/quizdrill/backend/internal/model"
	"github.com/quizdrill/backend/internal/practice"
	"github.com/quizdrill/backend/internal/service"
	ws "github.com/quizdrill/backend/internal/websocket"
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

// WSHandler streams timed practice attempts: server-authoritative countdown
// ticks out, autosaves and submission in, forced submission on expiry.
type WSHandler struct {
	practiceService *service.PracticeService
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(practiceService *service.PracticeService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		practiceService: practiceService,
		log:             log.With().Str("component", "ws_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/practice/attempts/:id/stream
// Upgrades to WebSocket for one attempt. Timed attempts receive a tick
// every second; at zero the attempt is force-submitted and the persisted
// session is pushed before the connection closes.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	attemptID := c.Param("id")
	userID := claims.UserID

	// Ownership and liveness check before the upgrade so failures surface
	// as plain HTTP errors.
	view, err := h.practiceService.Get(c.Request.Context(), userID, attemptID)
	if err != nil {
		switch {
		case errors.Is(err, practice.ErrAttemptNotFound):
			c.JSON(http.StatusGone, gin.H{"error": "attempt finished"})
		case errors.Is(err, service.ErrNotAttemptOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", userID).
		Str("attempt_id", attemptID).
		Logger()

	wsLog.Info().Msg("Attempt stream connected")

	// gorilla conns allow one concurrent writer; the tick goroutine and the
	// read loop both write.
	var writeMu sync.Mutex
	write := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return ws.WriteTyped(conn, v)
	}

	var countdown *practice.Countdown
	if view.Timed {
		countdown = practice.NewCountdown(view.RemainingSeconds, nil)
		defer countdown.Stop()
		go h.streamTicks(conn, countdown, attemptID, write, wsLog)
	}

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(userID, attemptID, &msg, write, wsLog)
		case ws.ActionPing:
			write(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionSubmit:
			h.handleSubmit(userID, attemptID, countdown, write, wsLog)
			return
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// streamTicks forwards countdown ticks to the client and force-submits the
// attempt when the budget hits zero. Closing the conn unblocks the read loop.
func (h *WSHandler) streamTicks(conn *websocket.Conn, countdown *practice.Countdown, attemptID string, write func(interface{}) error, wsLog zerolog.Logger) {
	for rem := range countdown.Ticks() {
		if err := write(ws.TickResponse{Event: ws.EventTick, Remaining: rem}); err != nil {
			return
		}
		if rem == 0 {
			session, err := h.practiceService.ForceSubmit(context.Background(), attemptID)
			if err != nil {
				// Lost the race against an explicit submit; nothing to push.
				if !errors.Is(err, practice.ErrAttemptNotFound) {
					wsLog.Error().Err(err).Msg("Forced submit failed")
				}
			} else {
				wsLog.Info().Float64("score", session.Score).Msg("Attempt expired and submitted")
				write(ws.ResultResponse{Event: ws.EventExpired, Session: session})
			}
			conn.Close()
			return
		}
	}
}

func (h *WSHandler) handleAnswer(userID int, attemptID string, msg *ws.RequestPayload, write func(interface{}) error, wsLog zerolog.Logger) {
	req := &model.SaveAnswerRequest{
		Index:          msg.Index,
		SelectedOption: msg.SelectedOption,
		TimeSpent:      msg.TimeSpent,
	}
	if err := h.practiceService.SaveAnswer(context.Background(), userID, attemptID, req); err != nil {
		wsLog.Warn().Err(err).Int("index", msg.Index).Msg("Autosave failed")
		write(ws.ErrorResponse{Event: ws.EventError, Error: "save failed"})
		return
	}
	write(ws.SavedResponse{Event: ws.EventSaved, Index: msg.Index})
}

func (h *WSHandler) handleSubmit(userID int, attemptID string, countdown *practice.Countdown, write func(interface{}) error, wsLog zerolog.Logger) {
	if countdown != nil {
		countdown.Stop()
	}

	session, err := h.practiceService.Submit(context.Background(), userID, attemptID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Submit failed")
		write(ws.ErrorResponse{Event: ws.EventError, Error: "submit failed"})
		return
	}

	wsLog.Info().Float64("score", session.Score).Msg("Attempt submitted")
	write(ws.ResultResponse{Event: ws.EventSubmitted, Session: session})
}
