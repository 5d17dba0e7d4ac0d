package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var runEventsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RunEventsWSHandler streams the same convergence events as
// streamRunEventsSSE over a persistent websocket connection, for clients
// that prefer a socket to a one-way SSE stream.
func (s *Server) RunEventsWSHandler(w http.ResponseWriter, r *http.Request, runID string) {
	conn, err := runEventsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.Broker.Subscribe(runID)
	defer s.Broker.Unsubscribe(runID, ch)

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	go readAndDiscard(conn)

	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(map[string]any{"type": evt.Type, "data": evt.Data}); err != nil {
				return
			}
			if evt.Type == "run.completed" || evt.Type == "run.failed" {
				return
			}
		case <-pingTicker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readAndDiscard drains client frames (pongs, close) so the connection's
// read deadline doesn't trip; this handler never expects client messages.
func readAndDiscard(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
