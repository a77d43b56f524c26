package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// QueryLogger is a bun.QueryHook that writes every statement to zap.
// Failed statements are logged at error level, except for sql.ErrNoRows.
type QueryLogger struct {
	logger *zap.Logger
}

var _ bun.QueryHook = (*QueryLogger)(nil)

func NewQueryLogger(logger *zap.Logger) *QueryLogger {
	return &QueryLogger{logger: logger}
}

func (h *QueryLogger) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogger) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	fields := []zap.Field{
		zap.String("operation", event.Operation()),
		zap.Duration("duration", time.Since(event.StartTime)),
		zap.String("sql", event.Query),
	}

	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Error("sql query error", append(fields, zap.Error(event.Err))...)
		return
	}

	h.logger.Debug("sql query", fields...)
}
