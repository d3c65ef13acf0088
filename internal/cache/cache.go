package cache

import (
	"context"

	"github.com/LeventeLantos/sms-dashboard/internal/model"
)

// SessionCache holds each browser session's recently sent records.
// It is a convenience view and never the source of truth.
type SessionCache interface {
	Get(ctx context.Context, sessionID string) ([]model.Record, error)
	Set(ctx context.Context, sessionID string, records []model.Record) error
}
