package database

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// LocalChunkIndex is the newline-delimited JSON artifact written during
// ingestion, one Chunk per line. It backs point lookups when the vector
// store is unavailable. The in-memory map is populated lazily exactly once
// and is read-only afterwards.
type LocalChunkIndex struct {
	path    string
	once    sync.Once
	chunks  map[string]types.Chunk
	loadErr error
}

func NewLocalChunkIndex(path string) *LocalChunkIndex {
	return &LocalChunkIndex{path: path}
}

// Append writes chunks to the index file, one JSON object per line.
func (i *LocalChunkIndex) Append(chunks []types.Chunk) error {
	f, err := os.OpenFile(i.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open chunk index %s: %w", i.path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, chunk := range chunks {
		if err := enc.Encode(chunk); err != nil {
			return fmt.Errorf("failed to write chunk %s: %w", chunk.ChunkID, err)
		}
	}
	return w.Flush()
}

// Get returns the chunk with the given id, loading the index file on first
// use. Later lines win on duplicate ids, matching upsert semantics.
func (i *LocalChunkIndex) Get(chunkID string) (*types.Chunk, error) {
	i.once.Do(i.load)
	if i.loadErr != nil {
		return nil, i.loadErr
	}
	chunk, ok := i.chunks[chunkID]
	if !ok {
		return nil, fmt.Errorf("chunk %s not found in local index", chunkID)
	}
	return &chunk, nil
}

func (i *LocalChunkIndex) load() {
	i.chunks = make(map[string]types.Chunk)
	f, err := os.Open(i.path)
	if err != nil {
		i.loadErr = fmt.Errorf("failed to open chunk index %s: %w", i.path, err)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk types.Chunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			i.loadErr = fmt.Errorf("malformed chunk index line: %w", err)
			return
		}
		i.chunks[chunk.ChunkID] = chunk
	}
	if err := scanner.Err(); err != nil {
		i.loadErr = fmt.Errorf("failed to read chunk index: %w", err)
	}
}
