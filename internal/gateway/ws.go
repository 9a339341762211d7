package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The gateway binds to loopback by default; cross-origin browser pages
	// talking to a local tool are expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsInbound is a client frame. Only chat frames exist today.
type wsInbound struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// wsOutbound is a server frame: progress text while the run advances, then
// one final or error frame.
type wsOutbound struct {
	Type   string `json:"type"` // progress | final | error
	Text   string `json:"text,omitempty"`
	Result any    `json:"result,omitempty"`
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	// gorilla allows one concurrent writer; progress callbacks and the
	// final frame share this lock.
	var writeMu sync.Mutex
	send := func(frame wsOutbound) {
		writeMu.Lock()
		defer writeMu.Unlock()
		raw, _ := json.Marshal(frame)
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			slog.Debug("websocket write failed", "err", err)
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var in wsInbound
		if err := json.Unmarshal(raw, &in); err != nil || in.Type != "chat" || in.Message == "" {
			send(wsOutbound{Type: "error", Text: "expected {\"type\": \"chat\", \"message\": \"...\"}"})
			continue
		}

		result, err := s.engine.Dispatch(r.Context(), in.Message, func(progress string) {
			send(wsOutbound{Type: "progress", Text: progress})
		})
		if err != nil {
			send(wsOutbound{Type: "error", Text: err.Error()})
			continue
		}
		send(wsOutbound{Type: "final", Text: result.Response, Result: result})
	}
}
