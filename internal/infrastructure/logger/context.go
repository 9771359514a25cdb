package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey carries the request-scoped logger.
	LoggerKey contextKey = "logger"
	// RequestIDKey carries the request id.
	RequestIDKey contextKey = "request_id"
	// UserIDKey carries the authenticated user id.
	UserIDKey contextKey = "user_id"
)

// WithContext attaches logger to ctx.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the logger attached to ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores requestID in ctx and returns a child logger tagged
// with it. The child logger is also attached to the returned context.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	child := logger.With(zap.String("request_id", requestID))
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	return WithContext(ctx, child), child
}

// WithUserID stores userID in ctx and returns a child logger tagged with it.
// The child logger is also attached to the returned context.
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	child := logger.With(zap.String("user_id", userID))
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return WithContext(ctx, child), child
}

// GetRequestID returns the request id stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// GetUserID returns the user id stored in ctx, or "".
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}
