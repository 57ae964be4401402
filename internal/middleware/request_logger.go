package middleware

import (
	"context"
	"net/http"

	"pet-vaccination-schedule/internal/platform/apperr"
	"pet-vaccination-schedule/internal/platform/logger"
)

const loggerKey ctxKey = "logger"

// WithLogger deja el logger del request en el contexto.
func WithLogger(ctx context.Context, log logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// LoggerFrom devuelve el logger del request; Nop si no hay.
func LoggerFrom(ctx context.Context) logger.Logger {
	if log, ok := ctx.Value(loggerKey).(logger.Logger); ok && log != nil {
		return log
	}
	return logger.Nop()
}

// LogFailure loguea la causa real de un error que sale como 500.
// Los errores públicos (4xx) no se loguean acá; AccessLog ya deja la línea del request.
func LogFailure(r *http.Request, status int, err error) {
	if status < http.StatusInternalServerError || err == nil {
		return
	}
	LoggerFrom(r.Context()).Error("request failed", logger.Fields{
		"error":       err,
		"programming": apperr.IsProgramming(err),
		"method":      r.Method,
		"path":        r.URL.Path,
	})
}
