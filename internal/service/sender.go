package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LeventeLantos/sms-dashboard/internal/model"
)

type SendClient interface {
	Send(ctx context.Context, from, to, body string) (remoteMessageID string, err error)
}

// Result is the outcome of one gateway call. Reason is set only on failure.
type Result struct {
	OK       bool
	RemoteID string
	Reason   string
}

func (r Result) Status() model.Status {
	if r.OK {
		return model.Sent
	}
	return model.Failed(r.Reason)
}

type Sender struct {
	client SendClient
	from   string
}

func NewSender(client SendClient, from string) *Sender {
	return &Sender{
		client: client,
		from:   from,
	}
}

// Send never fails: provider errors and panics both become a failed Result.
func (s *Sender) Send(ctx context.Context, to, body string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("sms gateway panic recovered", "to", to, "panic", r)
			res = Result{Reason: fmt.Sprint(r)}
		}
	}()

	remoteID, err := s.client.Send(ctx, s.from, to, body)
	if err != nil {
		slog.Warn("sms send failed", "to", to, "error", err)
		return Result{Reason: err.Error()}
	}

	slog.Info("sms sent", "to", to, "remote_id", remoteID)
	return Result{OK: true, RemoteID: remoteID}
}
