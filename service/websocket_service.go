package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// WebSocketService carries the same token/done/error event stream as the
// NDJSON chat endpoint over a websocket connection.
type WebSocketService struct {
	rag      *RAGService
	upgrader websocket.Upgrader
}

func NewWebSocketService(rag *RAGService) *WebSocketService {
	return &WebSocketService{
		rag: rag,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writes come from both the ping path and the streaming callback.
	var writeMu sync.Mutex
	writeEvent := func(event types.StreamEvent) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(types.WebsocketResponse{
			Type:    types.TypeWebsocketChat,
			Payload: event,
		})
	}

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			log.Println("Unmarshal error:", err)
			writeEvent(types.StreamEvent{Type: types.EventError, Data: "invalid request"})
			continue
		}

		switch req.Type {
		case types.TypeWebsocketChat:
			var chatReq types.ChatRequest
			if err := json.Unmarshal(req.Payload, &chatReq); err != nil {
				writeEvent(types.StreamEvent{Type: types.EventError, Data: "invalid chat payload"})
				continue
			}
			answer, err := s.rag.AnswerStream(ctx, chatReq, func(token string) {
				writeEvent(types.StreamEvent{Type: types.EventToken, Data: token})
			})
			if err != nil {
				log.Println("Chat error:", err)
				writeEvent(types.StreamEvent{Type: types.EventError, Data: err.Error()})
				continue
			}
			writeEvent(types.StreamEvent{Type: types.EventDone, Data: answer})

		case types.TypeWebsocketPing:
			writeMu.Lock()
			err := conn.WriteJSON(types.WebsocketResponse{Type: types.TypeWebsocketPong})
			writeMu.Unlock()
			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
