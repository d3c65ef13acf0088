package repo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/LeventeLantos/sms-dashboard/internal/model"
)

const logFileMode = 0o644

// FileLogRepo keeps the log in a single UTF-8 text file. Mutations are
// serialised and whole-file rewrites go through a temp file and rename,
// so readers see either the old or the new contents.
type FileLogRepo struct {
	path string
	mu   sync.Mutex
}

var _ LogRepository = (*FileLogRepo)(nil)

func NewFileLogRepo(path string) *FileLogRepo {
	return &FileLogRepo{path: filepath.Clean(path)}
}

func (r *FileLogRepo) Path() string { return r.path }

func (r *FileLogRepo) Append(ctx context.Context, rec model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	if _, err := f.WriteString(model.FormatLine(rec)); err != nil {
		_ = f.Close()
		return fmt.Errorf("append log line: %w", err)
	}
	return f.Close()
}

func (r *FileLogRepo) ReadAll(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrLogNotFound
		}
		return "", fmt.Errorf("read log file: %w", err)
	}
	return string(data), nil
}

func (r *FileLogRepo) Truncate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.replace(nil)
}

func (r *FileLogRepo) DeleteLine(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read log file: %w", err)
	}

	lines := splitLines(data)
	if n < 1 || n > len(lines) {
		return ErrInvalidLineNumber
	}

	out := make([]byte, 0, len(data)-len(lines[n-1]))
	for i, line := range lines {
		if i == n-1 {
			continue
		}
		out = append(out, line...)
	}
	return r.replace(out)
}

// replace swaps the file contents via temp file + rename. Caller holds mu.
func (r *FileLogRepo) replace(data []byte) error {
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, logFileMode); err != nil {
		return fmt.Errorf("write temp log file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace log file: %w", err)
	}
	return nil
}

// splitLines splits after each '\n', keeping terminators. A trailing
// fragment without a newline still counts as a line.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, data)
			break
		}
		lines = append(lines, data[:i+1])
		data = data[i+1:]
	}
	return lines
}
