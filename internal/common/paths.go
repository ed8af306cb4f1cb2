package common

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CleanPath normalizes a user-supplied file path and resolves it to an absolute path
func CleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("invalid path: empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("invalid path: contains NUL byte")
	}

	cleaned := filepath.Clean(path)

	if !filepath.IsAbs(cleaned) {
		abs, err := filepath.Abs(cleaned)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		cleaned = abs
	}

	return cleaned, nil
}
