package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DelanoMarcell/litigation-chatbot/service"
	"github.com/DelanoMarcell/litigation-chatbot/types"
)

type ChatHandler struct {
	rag *service.RAGService
}

func NewChatHandler(rag *service.RAGService) *ChatHandler {
	return &ChatHandler{
		rag: rag,
	}
}

// HandleChat answers a chat request. With the stream flag set the response
// is newline-delimited JSON events (token fragments, then one authoritative
// done event); otherwise a single JSON body.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if req.Stream {
		h.handleChatStream(c, req)
		return
	}

	answer, err := h.rag.Answer(c.Request.Context(), req)
	if err != nil {
		log.Printf("Chat request failed: %v", err)
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   answer,
	})
}

func (h *ChatHandler) handleChatStream(c *gin.Context, req types.ChatRequest) {
	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	writeEvent := func(event types.StreamEvent) {
		if err := enc.Encode(event); err != nil {
			log.Printf("Stream write failed: %v", err)
			return
		}
		c.Writer.Flush()
	}

	answer, err := h.rag.AnswerStream(c.Request.Context(), req, func(token string) {
		writeEvent(types.StreamEvent{Type: types.EventToken, Data: token})
	})
	if err != nil {
		log.Printf("Streaming chat request failed: %v", err)
		writeEvent(types.StreamEvent{Type: types.EventError, Data: err.Error()})
		return
	}
	writeEvent(types.StreamEvent{Type: types.EventDone, Data: answer})
}
