package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"cf_buddy/internal/platform/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Source string

const (
	SourceMemory   Source = "memory"
	SourceStore    Source = "store"
	SourceUpstream Source = "upstream"
)

// Meta describes where a snapshot value came from.
type Meta struct {
	FetchedAt time.Time `json:"fetched_at"`
	Source    Source    `json:"source"`
	Stale     bool      `json:"stale"`
}

type SnapshotConfig struct {
	Name string
	TTL  time.Duration
	// Retention is how long the store keeps a copy; it should exceed TTL so a
	// stale copy is still available when a refresh fails.
	Retention time.Duration
	Store     Store
	Clock     func() time.Time
}

type entry[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

type result[T any] struct {
	value T
	meta  Meta
}

// Snapshot caches the result of an expensive fetch for TTL. Concurrent
// refreshes collapse into one fetch. A failed refresh falls back to the last
// known copy from memory or the store, flagged as stale.
type Snapshot[T any] struct {
	cfg   SnapshotConfig
	fetch func(context.Context) (T, error)
	group singleflight.Group

	mu      sync.RWMutex
	current *entry[T]
}

func NewSnapshot[T any](cfg SnapshotConfig, fetch func(context.Context) (T, error)) *Snapshot[T] {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Retention < cfg.TTL {
		cfg.Retention = 7 * cfg.TTL
	}
	return &Snapshot[T]{cfg: cfg, fetch: fetch}
}

func (s *Snapshot[T]) Get(ctx context.Context) (T, Meta, error) {
	if e := s.fresh(); e != nil {
		return e.Value, Meta{FetchedAt: e.FetchedAt, Source: SourceMemory}, nil
	}

	// detached so one caller's cancellation does not fail the shared flight
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(s.cfg.Name, func() (interface{}, error) {
		return s.refresh(flightCtx)
	})
	if err != nil {
		var zero T
		return zero, Meta{}, err
	}
	r := v.(result[T])
	return r.value, r.meta, nil
}

// Invalidate drops the in-memory copy; the next Get consults the store and upstream.
func (s *Snapshot[T]) Invalidate() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

func (s *Snapshot[T]) fresh() *entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current != nil && s.cfg.Clock().Sub(s.current.FetchedAt) < s.cfg.TTL {
		return s.current
	}
	return nil
}

func (s *Snapshot[T]) memory() *entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Snapshot[T]) remember(e *entry[T]) {
	s.mu.Lock()
	s.current = e
	s.mu.Unlock()
}

func (s *Snapshot[T]) refresh(ctx context.Context) (result[T], error) {
	if e := s.fresh(); e != nil {
		return result[T]{e.Value, Meta{FetchedAt: e.FetchedAt, Source: SourceMemory}}, nil
	}

	var stored *entry[T]
	if s.cfg.Store != nil {
		var e entry[T]
		err := s.cfg.Store.Get(ctx, s.cfg.Name, &e)
		switch {
		case err == nil && s.cfg.Clock().Sub(e.FetchedAt) < s.cfg.TTL:
			s.remember(&e)
			return result[T]{e.Value, Meta{FetchedAt: e.FetchedAt, Source: SourceStore}}, nil
		case err == nil:
			stored = &e
		case !errors.Is(err, ErrMiss):
			logger.Log.Warn("snapshot store read failed", zap.String("snapshot", s.cfg.Name), zap.Error(err))
		}
	}

	value, err := s.fetch(ctx)
	if err != nil {
		fallback := s.memory()
		source := SourceMemory
		if fallback == nil && stored != nil {
			fallback, source = stored, SourceStore
			s.remember(stored)
		}
		if fallback == nil {
			return result[T]{}, err
		}
		logger.Log.Warn("snapshot refresh failed, serving stale copy",
			zap.String("snapshot", s.cfg.Name),
			zap.Time("fetched_at", fallback.FetchedAt),
			zap.Error(err))
		return result[T]{fallback.Value, Meta{FetchedAt: fallback.FetchedAt, Source: source, Stale: true}}, nil
	}

	e := &entry[T]{Value: value, FetchedAt: s.cfg.Clock()}
	s.remember(e)
	if s.cfg.Store != nil {
		if err := s.cfg.Store.Set(ctx, s.cfg.Name, e, s.cfg.Retention); err != nil {
			logger.Log.Warn("snapshot store write failed", zap.String("snapshot", s.cfg.Name), zap.Error(err))
		}
	}
	return result[T]{value, Meta{FetchedAt: e.FetchedAt, Source: SourceUpstream}}, nil
}
