package chiext

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger logs one line per request to log. A nil log uses the default
// logger.
func Logger(log *slog.Logger) func(next http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return middleware.RequestLogger(&LogFormatter{log: log})
}

type LogFormatter struct {
	log *slog.Logger
}

func (l *LogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	log := l.log.With(slog.String("from", r.RemoteAddr))
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		log = log.With(slog.String("request", reqID))
	}

	return &logEntry{
		log: log,
		msg: fmt.Sprintf("%s %s %s", r.Method, r.RequestURI, r.Proto),
	}
}

type logEntry struct {
	log *slog.Logger
	msg string
}

func (l *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	l.log.Log(context.Background(), level, l.msg,
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.Duration("elapsed", elapsed),
	)
}

func (l *logEntry) Panic(v interface{}, stack []byte) {
	l.log.Error("Handler panicked", slog.Any("panic", v), slog.String("stack", string(stack)))
}
