// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-elect/audit"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/store"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Source describes where a request came from, for vote records and audit.
type Source struct {
	IP        string
	UserAgent string
}

// Service runs the election operations against the store.
type Service struct {
	store *store.Store
	audit *audit.Logger
	clock Clock
	log   *slog.Logger
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(st *store.Store, auditor *audit.Logger, opts ...Option) *Service {
	s := &Service{
		store: st,
		audit: auditor,
		clock: systemClock{},
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// ActiveElection returns the live election or a NoActiveElection rejection.
func (s *Service) ActiveElection(ctx context.Context) (models.Election, error) {
	e, err := s.store.GetActiveElection(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return models.Election{}, reject(CodeNoActiveElection, "no active election")
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("load active election: %w", err)
	}
	return e, nil
}

// loadActive returns the election only while it is the active one.
func (s *Service) loadActive(ctx context.Context, electionID string) (models.Election, error) {
	e, err := s.store.GetElection(ctx, electionID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !e.IsActive) {
		return models.Election{}, reject(CodeNoActiveElection, "no active election")
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("load election: %w", err)
	}
	return e, nil
}

// txErr converts transaction failures into rejections where one applies.
func txErr(err error) error {
	if errors.Is(err, store.ErrContention) {
		return reject(CodeContention, "the system is busy, please try again")
	}
	return err
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
