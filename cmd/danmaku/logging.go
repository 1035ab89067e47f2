package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "danmaku.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging routes slog and log to logs/danmaku.log when debug is set, and discards them otherwise
// The terminal owns stdout/stderr while running, so nothing is ever logged there
// An oversized previous log is renamed with a timestamp suffix
func setupLogging(debug bool) *os.File {
	if !debug {
		discardLogs()
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		discardLogs()
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("danmaku-%s.log", time.Now().Format("20060102-150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		discardLogs()
		return nil
	}

	// slog.SetDefault also redirects the log package through the handler
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return f
}

func discardLogs() {
	// SetDefault rewires the log package, so log output is discarded after it
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	log.SetOutput(io.Discard)
}
