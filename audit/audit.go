// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-elect/models"
)

const errorBuffer = 64

// Appender persists audit entries.
type Appender interface {
	AppendAudit(ctx context.Context, e models.AuditEntry) error
}

// Logger records audit entries without ever failing the caller.
type Logger struct {
	appender Appender
	log      *slog.Logger
	now      func() time.Time
	errs     chan error
	failures atomic.Int64
}

// New returns a Logger writing to appender. A nil logger uses slog.Default.
func New(appender Appender, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{
		appender: appender,
		log:      logger,
		now:      time.Now,
		errs:     make(chan error, errorBuffer),
	}
}

// Errors delivers audit write failures. Failures are dropped when nobody
// drains the channel fast enough; Failures still counts them.
func (l *Logger) Errors() <-chan error {
	return l.errs
}

// Failures returns how many entries could not be written.
func (l *Logger) Failures() int64 {
	return l.failures.Load()
}

// Record appends e, filling its ID and timestamp when unset. It runs detached
// from ctx cancellation so an aborted request still leaves its audit trail.
func (l *Logger) Record(ctx context.Context, e models.AuditEntry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now().UTC()
	}

	defer func() {
		if r := recover(); r != nil {
			l.fail(e, fmt.Errorf("audit append panicked: %v", r))
		}
	}()

	if err := l.appender.AppendAudit(context.WithoutCancel(ctx), e); err != nil {
		l.fail(e, err)
	}
}

func (l *Logger) fail(e models.AuditEntry, err error) {
	l.failures.Add(1)
	l.log.Error("failed to record audit entry",
		"action", e.Action,
		"success", e.Success,
		"error", err,
	)

	select {
	case l.errs <- fmt.Errorf("audit %s: %w", e.Action, err):
	default:
	}
}

// Drain logs every error delivered on Errors until ctx is done.
func (l *Logger) Drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-l.errs:
			l.log.Warn("audit failure surfaced", "error", err, "total_failures", l.Failures())
		}
	}
}
