package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/LeventeLantos/sms-dashboard/internal/cache"
	"github.com/LeventeLantos/sms-dashboard/internal/model"
	"github.com/LeventeLantos/sms-dashboard/internal/repo"
)

const LogNotFoundPlaceholder = "Log file not found."

var ErrUnauthorized = errors.New("wrong password")

// LineNumberError reports admin input that is not an integer.
type LineNumberError struct {
	Input string
	Err   error
}

func (e *LineNumberError) Error() string {
	return fmt.Sprintf("line number %q is not an integer: %v", e.Input, e.Err)
}

func (e *LineNumberError) Unwrap() error { return e.Err }

type Dashboard struct {
	sender    *Sender
	logs      repo.LogRepository
	sessions  cache.SessionCache
	adminPass string

	now func() time.Time
}

func NewDashboard(sender *Sender, logs repo.LogRepository, sessions cache.SessionCache, adminPass string) *Dashboard {
	return &Dashboard{
		sender:    sender,
		logs:      logs,
		sessions:  sessions,
		adminPass: adminPass,
		now:       time.Now,
	}
}

// SessionLog returns the records sent from this session. Cache failures
// degrade to an empty list.
func (d *Dashboard) SessionLog(ctx context.Context, sessionID string) []model.Record {
	records, err := d.sessions.Get(ctx, sessionID)
	if err != nil {
		slog.Warn("session log unavailable", "error", err)
		return nil
	}
	return records
}

// Send delivers one message and records the attempt whatever the outcome.
// Only a failure to write the durable log is returned. It runs to completion
// even if the caller's context is canceled; the gateway call is bounded by
// the client timeout instead.
func (d *Dashboard) Send(ctx context.Context, sessionID, to, body string) (model.Record, error) {
	ctx = context.WithoutCancel(ctx)

	res := d.sender.Send(ctx, to, body)
	rec := model.NewRecord(to, body, res.Status(), d.now())

	if err := d.logs.Append(ctx, rec); err != nil {
		return rec, fmt.Errorf("append log: %w", err)
	}

	records, err := d.sessions.Get(ctx, sessionID)
	if err == nil {
		err = d.sessions.Set(ctx, sessionID, append(records, rec))
	}
	if err != nil {
		slog.Warn("session log not updated", "error", err)
	}

	return rec, nil
}

func (d *Dashboard) ClearLog(ctx context.Context, pass string) error {
	if !d.authorized(pass) {
		return ErrUnauthorized
	}
	if err := d.logs.Truncate(ctx); err != nil {
		return err
	}
	slog.Info("log file cleared")
	return nil
}

// DeleteLine checks the passphrase, then parses rawLine, then removes that
// 1-based line. It returns the parsed line number on success.
func (d *Dashboard) DeleteLine(ctx context.Context, pass, rawLine string) (int, error) {
	if !d.authorized(pass) {
		return 0, ErrUnauthorized
	}

	n, err := strconv.Atoi(strings.TrimSpace(rawLine))
	if err != nil {
		return 0, &LineNumberError{Input: rawLine, Err: err}
	}

	if err := d.logs.DeleteLine(ctx, n); err != nil {
		return n, err
	}
	slog.Info("log line deleted", "line", n)
	return n, nil
}

func (d *Dashboard) ViewLog(ctx context.Context, pass string) (string, error) {
	if !d.authorized(pass) {
		return "", ErrUnauthorized
	}

	content, err := d.logs.ReadAll(ctx)
	if errors.Is(err, repo.ErrLogNotFound) {
		return LogNotFoundPlaceholder, nil
	}
	return content, err
}

func (d *Dashboard) authorized(pass string) bool {
	return subtle.ConstantTimeCompare([]byte(pass), []byte(d.adminPass)) == 1
}
