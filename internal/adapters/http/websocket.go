package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/farmmap/internal/adapters/nats"
	"github.com/samirrijal/farmmap/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "locations" | "audit" (default: locations)
	Level   string `json:"level"`   // locations: domain | plot | plant ("" = all)
	Domain  string `json:"domain"`  // audit: domain id ("" = all)
}

// wsSubject maps a client request onto a NATS subject.
func wsSubject(m wsMessage) (string, bool) {
	switch m.Channel {
	case "", "locations":
		if m.Level != "" {
			return natsadapter.SubjectLocationValidated + "." + m.Level, true
		}
		return natsadapter.SubjectLocationValidated + ".>", true
	case "audit":
		if m.Domain != "" {
			return natsadapter.SubjectAuditViolation + "." + m.Domain, true
		}
		return natsadapter.SubjectAuditViolation + ".>", true
	}
	return "", false
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// location and audit events from NATS so open maps can refresh.
// Clients send JSON: {"action":"subscribe","channel":"locations","level":"plant"}
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		log := slog.With(slog.String("remote", c.RemoteAddr().String()))
		log.Info("ws client connected")

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		// Helper: thread-safe write
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		// Auto-subscribe to the broadcast subject
		defaultSubject := natsadapter.SubjectBroadcast
		sub, err := nc.Subscribe(defaultSubject, relay)
		if err != nil {
			log.Error("ws default subscribe failed", slog.String("error", err.Error()))
			return
		}
		subs[defaultSubject] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client messages for subscribe/unsubscribe
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, ok := wsSubject(m)
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Info("ws client disconnected")
	}
}
