package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	docsDir string
}

func NewDocumentHandler(docsDir string) *DocumentHandler {
	return &DocumentHandler{
		docsDir: docsDir,
	}
}

// HandleServePDF streams a source PDF so citation links in the client can
// open the exact page a chunk came from.
func (h *DocumentHandler) HandleServePDF(c *gin.Context) {
	requestedName := c.Query("file")
	if requestedName == "" {
		c.String(http.StatusBadRequest, "File parameter is required")
		return
	}

	if filepath.Ext(requestedName) != ".pdf" {
		c.String(http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	// The query value is attacker-controlled, keep it inside docsDir.
	cleanName := filepath.Base(requestedName)
	actualFile, err := h.findDocument(cleanName)
	if err != nil {
		c.String(http.StatusNotFound, "File not found")
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", cleanName))
	c.File(filepath.Join(h.docsDir, actualFile))
}

func (h *DocumentHandler) findDocument(requestedName string) (string, error) {
	files, err := os.ReadDir(h.docsDir)
	if err != nil {
		return "", err
	}

	baseName := strings.TrimSuffix(requestedName, ".pdf")
	for _, file := range files {
		name := file.Name()
		if !strings.HasSuffix(name, ".pdf") {
			continue
		}
		if strings.TrimSuffix(name, ".pdf") == baseName {
			return name, nil
		}
	}

	return "", fmt.Errorf("file not found: %s", requestedName)
}
