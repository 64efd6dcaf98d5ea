package middleware

import (
	"log/slog"
	"net/http"

	slogchi "github.com/samber/slog-chi"
)

// RequestLog writes one access log record per request through l.
// Authorization headers are never logged.
func RequestLog(l *slog.Logger) func(http.Handler) http.Handler {
	return slogchi.NewWithConfig(l, slogchi.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
		Filters: []slogchi.Filter{
			slogchi.IgnorePath("/health"),
		},
	})
}
