package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsIdleTimeout  = 5 * time.Minute
	wsWriteTimeout = 10 * time.Second
	wsReadLimit    = 64 << 10
)

// handleWebSocket answers each JSON predict request on the connection in
// order. One connection is one sequential conversation.
func (h *Handlers) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || originAllowed(h.AllowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	logger := h.logger().With(zap.String("client_id", clientID), zap.String("request_id", GetRequestID(r.Context())))
	logger.Debug("websocket client connected")
	defer func() {
		fields := []zap.Field{}
		if start := GetStartTime(r.Context()); !start.IsZero() {
			fields = append(fields, zap.Duration("session", time.Since(start)))
		}
		logger.Info("websocket client disconnected", fields...)
	}()

	conn.SetReadLimit(wsReadLimit)
	ctx := r.Context()
	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var reply interface{}
		var req PredictRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			h.recordError("invalid_input")
			reply = map[string]string{"error": "invalid JSON message: " + err.Error()}
		} else if vector, err := req.Vector(h.Pipeline.Features()); err != nil {
			h.recordError("invalid_input")
			reply = map[string]string{"error": err.Error()}
		} else if result, err := h.Pipeline.Predict(ctx, vector); err != nil {
			_, message := h.predictFailure(r, err)
			reply = map[string]string{"error": message}
		} else {
			reply = newPredictResponse(result)
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}
