package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DelanoMarcell/litigation-chatbot/database"
	"github.com/DelanoMarcell/litigation-chatbot/types"
)

type ChunkHandler struct {
	store      database.VectorStore
	localIndex database.ChunkIndex
}

func NewChunkHandler(store database.VectorStore, localIndex database.ChunkIndex) *ChunkHandler {
	return &ChunkHandler{
		store:      store,
		localIndex: localIndex,
	}
}

// HandleGetChunk resolves a chunk id to its full content and provenance.
// The vector store is authoritative; the local ingestion artifact answers
// when the store lookup is unavailable.
func (h *ChunkHandler) HandleGetChunk(c *gin.Context) {
	chunkID := c.Param("id")
	if chunkID == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Chunk id is required",
		})
		return
	}

	chunk, err := h.store.GetChunk(c.Request.Context(), chunkID)
	if err != nil {
		log.Printf("Vector store lookup for %s failed, trying local index: %v", chunkID, err)
		chunk, err = h.localIndex.Get(chunkID)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "Chunk not found: " + chunkID,
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   chunk,
	})
}
