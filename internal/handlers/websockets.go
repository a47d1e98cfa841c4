package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"regenx/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
	directBuf  = 4
)

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{CheckOrigin: h.checkOrigin}
}

// checkOrigin accepts same-host requests and the configured CORS origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || allowAllOrigins(h.opts.AllowedOrigins) {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, o := range h.opts.AllowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// @Summary  Live step channel
// @Description  WebSocket. Send {"type":"step-pulse","data":...}; every client receives {"type":"update-ui","data":...}.
// @Tags     live
// @Router   /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sub := h.services.Subscribe()
	defer h.services.Unsubscribe(sub)

	h.metrics.liveClients.Inc()
	defer h.metrics.liveClients.Dec()
	h.log.Debugw("ws_client_connected", "remote", c.ClientIP())

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Replies meant for this client only; the writer loop below owns the conn.
	direct := make(chan models.Envelope, directBuf)
	done := make(chan struct{})
	go h.startReader(conn, direct, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case frame, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
				return
			}
		case env := <-direct:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "err", err)
				return
			}
		}
	}
}

// startReader decodes client frames until the connection closes.
func (h *Handler) startReader(conn *websocket.Conn, direct chan<- models.Envelope, done chan<- struct{}) {
	defer close(done)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}

		var env models.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.reply(direct, models.Envelope{Type: models.EventError, Error: "malformed frame"})
			continue
		}

		switch env.Type {
		case models.EventStepPulse:
			data := env.Data
			if len(data) == 0 {
				data = json.RawMessage("null")
			}
			n, err := h.services.PublishPulse(data)
			if err != nil {
				h.log.Errorw("ws_publish_failed", "err", err)
				h.reply(direct, models.Envelope{Type: models.EventError, Error: "publish failed"})
				continue
			}
			h.metrics.pulsesRelayed.Inc()
			h.log.Debugw("ws_pulse_relayed", "listeners", n)
		default:
			h.reply(direct, models.Envelope{Type: models.EventError, Error: "unknown message type: " + env.Type})
		}
	}
}

// reply queues env for the sender, dropping it if the writer is behind.
func (h *Handler) reply(direct chan<- models.Envelope, env models.Envelope) {
	select {
	case direct <- env:
	default:
		h.log.Debugw("ws_reply_dropped", "type", env.Type)
	}
}
