package slogx

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/streamshift/adrestreamer/utils/app"
)

var logFile *os.File

func init() {
	dir := app.LogDir()

	f, err := os.OpenFile(filepath.Join(dir, "adrestreamer.log"), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		panic(fmt.Sprintf("failed to open log file, err: %v", err))
	}
	logFile = f

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{AddSource: true}))

	log.SetOutput(f)
	slog.SetDefault(logger)
}

// Configure re-homes the default logger once the effective config is
// known: level, JSON vs text, and whether stderr also gets a copy
// (quiet mode writes only to the log file).
func Configure(level slog.Level, json, quiet bool) {
	var w io.Writer = logFile
	if !quiet {
		w = io.MultiWriter(logFile, os.Stderr)
	}

	opts := &slog.HandlerOptions{AddSource: true, Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func Error(err any) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}

	return slog.String("error", fmt.Sprintf("%+v", err))
}

func Bytes(k string, b []byte) slog.Attr {
	return slog.String(k, string(b))
}
