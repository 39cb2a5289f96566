package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/upb/skillboard/backend/middleware"
	"github.com/upb/skillboard/backend/services/timeline"
	"go.uber.org/zap"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 30 * time.Second
)

// StreamHandler pushes every newly published feed snapshot to connected
// dashboard clients over a websocket
type StreamHandler struct {
	timeline *timeline.Service
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(timelineSvc *timeline.Service, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		timeline: timelineSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// CORS is enforced at the router; the upgrade itself accepts
			// any origin the router let through
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleStream handles GET /api/v1/activity/stream. The current snapshot is
// sent immediately, then every published update until the client disconnects.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		return
	}
	defer conn.Close()

	updates := h.timeline.Subscribe()
	defer h.timeline.Unsubscribe(updates)

	h.logger.Debug("stream client connected",
		zap.String("request_id", requestID),
		zap.String("remote", conn.RemoteAddr().String()))

	// Reader goroutine: we never expect client frames, but reading is what
	// surfaces close frames and pong responses
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.writeSnapshot(conn, h.timeline.Feed()); err != nil {
		return
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case feed, ok := <-updates:
			if !ok {
				return
			}
			if err := h.writeSnapshot(conn, feed); err != nil {
				h.logger.Debug("stream write failed, dropping client",
					zap.String("request_id", requestID),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) writeSnapshot(conn *websocket.Conn, snapshot interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(snapshot)
}
