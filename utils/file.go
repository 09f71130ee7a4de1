package utils

import (
	"io"
	"log/slog"
	"os"
)

func ReadFileFull(filePath string) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer Close(f, filePath)
	return io.ReadAll(f)
}

// Close a closable and if it fails just log it
func Close(c io.Closer, what string) {
	err := c.Close()
	if err != nil {
		slog.Warn("Could not close", "what", what, "error", err)
	}
}
