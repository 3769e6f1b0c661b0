package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// watchBuffer bounds the per-subscriber event queue. A slow client
// drops intermediate events rather than stalling the search loop.
const watchBuffer = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWatch handles GET /api/v1/search/{id}/watch. It upgrades the
// connection to a WebSocket and streams one JSON ProgressEvent per
// successful replacement until the job reaches a terminal state.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.searchesMu.RLock()
	state, exists := s.searches[id]
	s.searchesMu.RUnlock()
	if !exists {
		http.Error(w, "search not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", map[string]interface{}{
			"search_id": id,
			"error":     err.Error(),
		})
		return
	}
	defer conn.Close()

	events, terminal := s.subscribe(state)
	if terminal {
		// Job already settled; nothing will be broadcast.
		return
	}
	defer s.unsubscribe(state, events)

	// Drain client frames so close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for event := range events {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
		if event.Status != "running" {
			return
		}
	}
}

// subscribe registers a new event channel on the state. It reports
// terminal=true when the job has already finished.
func (s *Server) subscribe(state *SearchState) (chan ProgressEvent, bool) {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()

	switch state.Status {
	case "completed", "failed", "cancelled":
		return nil, true
	}

	ch := make(chan ProgressEvent, watchBuffer)
	state.subscribers[ch] = struct{}{}
	return ch, false
}

// unsubscribe removes an event channel from the state.
func (s *Server) unsubscribe(state *SearchState, ch chan ProgressEvent) {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()
	delete(state.subscribers, ch)
}

// broadcast fans an event out to all subscribers without blocking the
// search loop. When final is true all subscriber channels are closed
// and detached after delivery.
func (s *Server) broadcast(state *SearchState, event ProgressEvent, final bool) {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()

	for ch := range state.subscribers {
		select {
		case ch <- event:
		default:
		}
		if final {
			close(ch)
			delete(state.subscribers, ch)
		}
	}
}
