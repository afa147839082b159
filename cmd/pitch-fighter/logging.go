package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/pitch-fighter/config"
	"github.com/lixenwraith/pitch-fighter/parameter"
)

// setupLogging routes log and slog output to the debug file, or discards it
// The terminal belongs to tcell, so nothing may reach stdout or stderr
func setupLogging(cfg config.LogConfig) *os.File {
	if !cfg.Debug {
		discard()
		return nil
	}

	dir, name := cfg.Dir, cfg.File
	if dir == "" {
		dir = parameter.LogDir
	}
	if name == "" {
		name = parameter.LogFileName
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		discard()
		return nil
	}

	path := filepath.Join(dir, name)
	if info, err := os.Stat(path); err == nil && info.Size() > parameter.LogMaxSize {
		ext := filepath.Ext(name)
		rotated := filepath.Join(dir, fmt.Sprintf("%s-%s%s", name[:len(name)-len(ext)], time.Now().Format("20060102-150405"), ext))
		_ = os.Rename(path, rotated)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		discard()
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return f
}

func discard() {
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
