package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// GormLogger adapts zap to GORM's logger interface. SQL statements log at
// debug so production info-level output stays readable; slow queries and
// errors are promoted.
type GormLogger struct {
	logger                    *zap.Logger
	logLevel                  gormlogger.LogLevel
	slowThreshold             time.Duration
	ignoreRecordNotFoundError bool
}

// GormLoggerOption configures a GormLogger.
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold overrides the slow query threshold.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(gl *GormLogger) {
		gl.slowThreshold = threshold
	}
}

// WithIgnoreRecordNotFoundError controls whether ErrRecordNotFound is
// logged as an SQL error.
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(gl *GormLogger) {
		gl.ignoreRecordNotFoundError = ignore
	}
}

// NewGormLogger wraps zapLogger for use as a gorm logger.
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		logger:                    zapLogger.Named("gorm"),
		logLevel:                  level,
		slowThreshold:             defaultSlowThreshold,
		ignoreRecordNotFoundError: true,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode returns a copy at the given level, as gorm expects.
func (gl *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *gl
	clone.logLevel = level
	return &clone
}

func (gl *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if gl.logLevel < gormlogger.Info {
		return
	}
	gl.logger.Sugar().Infof(msg, data...)
}

func (gl *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if gl.logLevel < gormlogger.Warn {
		return
	}
	gl.logger.Sugar().Warnf(msg, data...)
}

func (gl *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if gl.logLevel < gormlogger.Error {
		return
	}
	gl.logger.Sugar().Errorf(msg, data...)
}

// Trace logs each SQL statement with its duration and row count.
func (gl *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if gl.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := gl.traceFields(ctx, elapsed, rows, sql)

	if err != nil && gl.logLevel >= gormlogger.Error {
		if gl.ignoreRecordNotFoundError && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		gl.logger.Error("SQL Error", append(fields, zap.Error(err))...)
		return
	}

	if gl.slowThreshold != 0 && elapsed > gl.slowThreshold && gl.logLevel >= gormlogger.Warn {
		gl.logger.Warn(fmt.Sprintf("SLOW SQL >= %v", gl.slowThreshold), fields...)
		return
	}

	if gl.logLevel >= gormlogger.Info {
		gl.logger.Debug("SQL Query", fields...)
	}
}

func (gl *GormLogger) traceFields(ctx context.Context, elapsed time.Duration, rows int64, sql string) []zap.Field {
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	return fields
}

// MapGormLogLevel translates the application log level into gorm's scale.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
