package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-kiosk-service/internal/delivery/http/dto/kiosk/request"
	"github.com/LavaJover/shvark-kiosk-service/internal/delivery/http/dto/kiosk/response"
	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/session"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	maxMessageSize = 1024
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The kiosk screen is served from a different origin than the api.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SessionHandler serves one payment screen per websocket connection.
type SessionHandler struct {
	manager      *session.Manager
	assetUsecase usecase.AssetUsecase
	logger       *slog.Logger
}

func NewSessionHandler(manager *session.Manager, assetUsecase usecase.AssetUsecase, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		manager:      manager,
		assetUsecase: assetUsecase,
		logger:       logger,
	}
}

// GET /api/sessions/ws?asset=<id>&quantity=<n>
func (h *SessionHandler) ServeWS(c *gin.Context) {
	quantity, err := parseQuantity(c.Query("quantity"))
	if err != nil {
		writeError(c, err)
		return
	}
	asset, err := h.assetUsecase.GetAsset(c.Query("asset"))
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket connection", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := h.manager.Open(ctx, *asset, quantity)
	if err != nil {
		h.logger.Warn("Failed to open session", "asset_id", asset.ID, "error", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		return
	}
	h.logger.Info("Session opened", "session_id", sess.ID(), "asset_id", asset.ID, "quantity", quantity)

	notices := make(chan response.SessionError, 4)
	done := make(chan struct{})
	go h.writePump(conn, sess.Updates(), notices, done)

	h.readPump(conn, sess, notices)

	h.manager.Close(sess.ID())
	<-done
	h.logger.Info("Session closed", "session_id", sess.ID())
}

// writePump is the only writer on conn. It exits once the session's update
// stream is closed or a write fails.
func (h *SessionHandler) writePump(conn *websocket.Conn, updates <-chan domain.SessionUpdate, notices <-chan response.SessionError, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				h.logger.Debug("Session write failed", "session_id", update.SessionID, "error", err)
				conn.Close()
				return
			}
		case notice := <-notices:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(notice); err != nil {
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}

func (h *SessionHandler) readPump(conn *websocket.Conn, sess *session.Session, notices chan<- response.SessionError) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.logger.Warn("Unexpected websocket close", "session_id", sess.ID(), "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		if notice, ok := h.handleMessage(sess, message); !ok {
			select {
			case notices <- notice:
			default:
			}
		}
	}
}

func (h *SessionHandler) handleMessage(sess *session.Session, message []byte) (response.SessionError, bool) {
	var msg request.SessionMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return sessionError(response.ErrorCodeInvalidMessage, "message is not valid json"), false
	}

	var err error
	switch msg.Type {
	case request.MessageTypeQuantity:
		err = sess.SetQuantity(msg.Quantity)
	case request.MessageTypeAsset:
		var asset *domain.Asset
		asset, err = h.assetUsecase.GetAsset(msg.AssetID)
		if err == nil {
			err = sess.SetAsset(*asset)
		}
	default:
		return sessionError(response.ErrorCodeUnknownType, "unknown message type "+msg.Type), false
	}

	if err != nil {
		h.logger.Debug("Session message rejected", "session_id", sess.ID(), "type", msg.Type, "error", err)
		return sessionError(response.ErrorCodeRejected, err.Error()), false
	}
	return response.SessionError{}, true
}

func sessionError(code, message string) response.SessionError {
	return response.SessionError{Type: "error", Code: code, Message: message}
}
