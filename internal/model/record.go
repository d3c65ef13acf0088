package model

import (
	"strings"
	"time"
)

// TimeLayout is the second-precision timestamp used on the dashboard and in the log file.
const TimeLayout = "2006-01-02 15:04:05"

type Status string

const Sent Status = "✅ Sent"

const failedPrefix = "❌ "

func Failed(reason string) Status {
	return Status(failedPrefix + reason)
}

func (s Status) OK() bool {
	return s == Sent
}

// Record is one send attempt. It is never modified after creation.
type Record struct {
	To     string    `json:"to"`
	Body   string    `json:"message"`
	Status Status    `json:"status"`
	Time   time.Time `json:"time"`
}

func NewRecord(to, body string, status Status, at time.Time) Record {
	return Record{
		To:     to,
		Body:   body,
		Status: status,
		Time:   at.Truncate(time.Second),
	}
}

func (r Record) FormattedTime() string {
	return r.Time.Format(TimeLayout)
}

var lineEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

// FormatLine renders r as a single newline-terminated log line.
func FormatLine(r Record) string {
	var b strings.Builder
	b.WriteString(r.FormattedTime())
	b.WriteString(" | TO: ")
	b.WriteString(lineEscaper.Replace(r.To))
	b.WriteString(" | MESSAGE: ")
	b.WriteString(lineEscaper.Replace(r.Body))
	b.WriteString(" | STATUS: ")
	b.WriteString(lineEscaper.Replace(string(r.Status)))
	b.WriteByte('\n')
	return b.String()
}
