package api_test

import (
	"io"
	"log/slog"
)

// testLogger returns a logger that discards everything, keeping handler
// output out of test logs.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
