package repo

import (
	"context"
	"errors"

	"github.com/LeventeLantos/sms-dashboard/internal/model"
)

var (
	ErrLogNotFound       = errors.New("log file not found")
	ErrInvalidLineNumber = errors.New("invalid line number")
)

// LogRepository is the durable, line-oriented audit log of send attempts.
// Line numbers are 1-based and follow append order.
type LogRepository interface {
	Append(ctx context.Context, r model.Record) error
	ReadAll(ctx context.Context) (string, error)
	Truncate(ctx context.Context) error
	DeleteLine(ctx context.Context, n int) error
}
