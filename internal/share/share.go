// Package share hands rendered reports to the outside world.
package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rongwang/expense-tracker/internal/config"
	"github.com/rongwang/expense-tracker/internal/report"
	"github.com/rongwang/expense-tracker/internal/session"
)

// Sharer delivers a rendered report. Implementations must not alter the export.
type Sharer interface {
	Share(ctx context.Context, exp *report.Export) error
	Close() error
}

// ErrNotConfigured is returned when sharing is disabled
var ErrNotConfigured = errors.New("report sharing is not configured")

// Disabled rejects every share request
type Disabled struct{}

func (Disabled) Share(context.Context, *report.Export) error { return ErrNotConfigured }
func (Disabled) Close() error                                { return nil }

// DirSharer drops reports into a directory, e.g. one watched by a sync client
type DirSharer struct {
	Dir string
}

// NewDirSharer creates the target directory if needed
func NewDirSharer(dir string) (*DirSharer, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create share dir: %w", err)
	}
	return &DirSharer{Dir: dir}, nil
}

func (s *DirSharer) Share(ctx context.Context, exp *report.Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := filepath.Base(exp.Filename)
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid report filename %q", exp.Filename)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), exp.Data, 0o640); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (s *DirSharer) Close() error { return nil }

// New builds the sharer selected by cfg.Driver
func New(cfg config.ShareConfig, clock session.Clock, logger *slog.Logger) (Sharer, error) {
	switch cfg.Driver {
	case "", "none":
		return Disabled{}, nil
	case "dir":
		return NewDirSharer(cfg.Dir)
	case "amqp":
		return NewAMQPSharer(cfg.AMQPURL, cfg.Exchange, cfg.RoutingKey, clock, logger)
	}
	return nil, fmt.Errorf("unsupported share driver %q", cfg.Driver)
}
