package main

import (
	"context"
	"fmt"
	"io"
	"os"
)

// readJobFile reads a job file's raw bytes from disk, or from standard input
// when filename is "-". It reports whether the data came from stdin so
// callers can warn when stdin is read from an interactive terminal, which
// usually means the caller forgot to pipe a file in.
func readJobFile(ctx context.Context, filename string) (data []byte, fromStdin bool, err error) {
	if filename != "-" {
		data, err = os.ReadFile(filename)
		return data, false, err
	}

	if isInteractive(ctx) {
		if logger := tryLogger(ctx); logger != nil {
			logger.Warn("reading job file from stdin on an interactive terminal")
		}
	}

	data, err = io.ReadAll(os.Stdin)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read job file from stdin: %w", err)
	}

	return data, true, nil
}
