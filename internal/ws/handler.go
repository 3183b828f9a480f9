package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zunxo7/CandyMinigames-sub000/internal/hub"
	"github.com/zunxo7/CandyMinigames-sub000/internal/protocol"
)

const (
	writeTimeout   = 3 * time.Second
	outboxSize     = 32
	maxMessageSize = 64 << 10
)

// Handler upgrades the request and bridges the connection to the hub: a
// writer goroutine drains the hub-owned outbox, the reader loop feeds decoded
// envelopes back in. Messages from one connection reach the hub in the order
// they were read.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(maxMessageSize)

		connID := uuid.NewString()
		out := make(chan protocol.Envelope, outboxSize)

		h.Inbox() <- hub.Register{ConnID: connID, Outbox: out}
		defer func() { h.Inbox() <- hub.Unregister{ConnID: connID} }()

		// Writer goroutine; exits when the hub closes the outbox.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for env := range out {
				payload, err := json.Marshal(env)
				if err != nil {
					log.Warn("marshal outbound envelope", zap.String("connID", connID), zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (hub.Unregister in defer):
				return
			}

			var env protocol.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"event":"error","data":{"error":"bad json"}}`))
				continue
			}

			h.Inbox() <- hub.Inbound{ConnID: connID, Env: env}
		}
	}
}
