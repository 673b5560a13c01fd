package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadSource reads the source file at path, grounded on the teacher's
// util.ReadSource (stdlib file read, wrapped with a path-qualified error).
func ReadSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read source %q: %w", path, err)
	}
	return string(b), nil
}

// ObjectBaseName derives <basename>.o's base from a source path, stripping
// a cosmetic .js/.ts extension (spec.md §6: "extension is cosmetic").
func ObjectBaseName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	switch strings.ToLower(ext) {
	case ".js", ".ts":
		return strings.TrimSuffix(base, ext)
	default:
		return base
	}
}
