package utils

import (
	"path/filepath"
	"strings"
)

// FileNameWithoutExt extracts the base filename without its extension.
func FileNameWithoutExt(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndex(base, "."); idx != -1 {
		base = base[:idx]
	}
	return base
}
