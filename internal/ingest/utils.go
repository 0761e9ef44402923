package ingest

import (
	"path/filepath"
	"strings"

	"github.com/docgate/docgate/constants"
)

// AllowedExt checks if a file extension is in the default allowed set.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[normalizeExt(ext)]
	return ok
}

func normalizeExt(ext string) string {
	return constants.NormalizeExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}
