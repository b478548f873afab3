package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// Config captures the minimal settings needed to configure a slog logger.
type Config struct {
	// Level represents the textual log level (debug, info, warn, error).
	Level string
	// Format controls the output encoding (json or text).
	Format string
	// AddSource toggles slog's source attribution.
	AddSource bool
	// Directory receives one log file per day. Empty disables file output.
	Directory string
}

// ParseLevel converts textual levels into slog levels, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	case "trace":
		return slog.LevelDebug - 2
	default:
		return slog.LevelInfo
	}
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: cfg.AddSource}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		return slog.NewJSONHandler(w, handlerOpts)
	default:
		return slog.NewTextHandler(w, handlerOpts)
	}
}

// New builds a slog.Logger writing to every writer, each with its own handler.
func New(cfg Config, writers ...io.Writer) *slog.Logger {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}
	if len(writers) == 1 {
		return slog.New(newHandler(writers[0], cfg))
	}
	handlers := make([]slog.Handler, 0, len(writers))
	for _, w := range writers {
		handlers = append(handlers, newHandler(w, cfg))
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// Setup logs to stdout and to a dated file under cfg.Directory, and routes the
// standard log package through the same writers. The returned closer releases the file.
func Setup(cfg Config, now time.Time) (io.Closer, *slog.Logger, error) {
	if strings.TrimSpace(cfg.Directory) == "" {
		logger := New(cfg, os.Stdout)
		return io.NopCloser(nil), logger, nil
	}
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fileName := filepath.Join(cfg.Directory, now.UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := New(cfg, os.Stdout, file)
	log.SetOutput(io.MultiWriter(os.Stdout, file))
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
