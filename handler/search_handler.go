package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DelanoMarcell/litigation-chatbot/service"
	"github.com/DelanoMarcell/litigation-chatbot/types"
)

type SearchHandler struct {
	rag *service.RAGService
}

func NewSearchHandler(rag *service.RAGService) *SearchHandler {
	return &SearchHandler{
		rag: rag,
	}
}

// HandleSearch exposes raw retrieval without the answering model, mainly for
// inspecting what the pipeline would hand the model as evidence.
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Query is required",
		})
		return
	}

	matches, err := h.rag.Retrieve(c.Request.Context(), req.Mode, req.Query, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Search failed: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   types.SearchResponse{Matches: matches},
	})
}
