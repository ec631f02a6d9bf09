package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGelfHandler creates a slog handler that ships JSON records to a Graylog
// server over GELF/UDP. The returned handler is safe to pass to Setup.
func NewGelfHandler(address string, level string) (slog.Handler, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("failed to create GELF writer for %s: %w", address, err)
	}

	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}), nil
}
