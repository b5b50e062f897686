package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/DelanoMarcell/litigation-chatbot/types"
	"github.com/DelanoMarcell/litigation-chatbot/utils"
)

// ReadElements loads one document's element file, a JSON array produced by
// the upstream parsing service. A malformed file is fatal for that document
// only; batch callers continue with the rest.
func ReadElements(path string) ([]types.DocumentElement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	var elements []types.DocumentElement
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("malformed document %s: %w", path, err)
	}
	return elements, nil
}

// ProcessDocument runs the chunking pass for one parsed document file. The
// document id is derived from the filename.
func ProcessDocument(path string) ([]types.Chunk, error) {
	elements, err := ReadElements(path)
	if err != nil {
		return nil, err
	}
	docID := utils.FileNameWithoutExt(path)
	items, docTitle := ContentItems(elements, docID)
	return BuildChunks(docID, docTitle, items), nil
}
