package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/agentik/internal/engine"
)

// subscriberBuffer is how many messages a slow stream client may fall behind
// before messages to it are dropped.
const subscriberBuffer = 16

type streamMessage struct {
	Type  string        `json:"type"` // "snapshot", "start" or "step"
	RunID string        `json:"run_id"`
	State *engine.World `json:"fortress_state"`
}

// hub fans encoded messages out to stream subscribers. The zero value is ready.
type hub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func (h *hub) subscribe() chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[chan []byte]struct{})
	}
	ch := make(chan []byte, subscriberBuffer)
	h.subs[ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, ch)
}

func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
			// Slow client; it will catch up on the next step.
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (s *Server) publish(kind, runID string, w *engine.World) {
	msg, err := json.Marshal(streamMessage{Type: kind, RunID: runID, State: w})
	if err != nil {
		slog.Error("encoding stream message failed", "type", kind, "step", w.Tick, "error", err)
		return
	}
	s.hub.broadcast(msg)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleStream upgrades to a websocket that receives the current world, then
// every world change as it happens. Client messages are ignored.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)
	slog.Info("stream client connected", "remote", r.RemoteAddr, "clients", s.hub.count())

	first, err := json.Marshal(streamMessage{Type: "snapshot", RunID: s.RunID(), State: s.Runner.Snapshot()})
	if err != nil {
		return
	}
	if err := writeMessage(conn, first); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader: only here to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stream client disconnected", "remote", r.RemoteAddr)
			return
		case msg := <-ch:
			if err := writeMessage(conn, msg); err != nil {
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msg []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, msg)
}
