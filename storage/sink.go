package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"car-scraper/models"
)

// Sink receives the normalized listing table.
type Sink interface {
	Name() string
	Write(ctx context.Context, listings []models.NormalizedListing) error
}

// Multi fans one table out to several sinks. Writes are serialized, and
// every sink is attempted even when an earlier one fails.
type Multi struct {
	mu    sync.Mutex
	sinks []Sink
}

func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Len() int { return len(m.sinks) }

func (m *Multi) Write(ctx context.Context, listings []models.NormalizedListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, listings); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
