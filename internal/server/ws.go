package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/finsift/finsift/internal/queue"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleQueueSocket streams job snapshots to the client: the current
// job list on connect, then one message per state change. Slow clients
// drop intermediate updates rather than stalling the queue worker.
func (s *Server) handleQueueSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	updates := make(chan queue.Job, 64)
	unsubscribe := s.uploads.Notify(func(j queue.Job) {
		select {
		case updates <- j:
		default:
		}
	})
	defer unsubscribe()

	for _, j := range s.uploads.Jobs() {
		if err := conn.WriteJSON(j); err != nil {
			return
		}
	}

	// Reader goroutine notices the peer closing the connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case j := <-updates:
			if err := conn.WriteJSON(j); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
