// Package store keeps the single loaded loan snapshot shared read-only by every
// request, and swaps it atomically when the snapshot is reloaded.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"loanlens/domain/loan"
	"loanlens/internal"
	"loanlens/internal/errors"
	"loanlens/ports"
)

type state struct {
	dataset *loan.Dataset
	// err is set when no dataset has ever loaded
	err error
	// lastErr is the most recent load failure, even if an older dataset is still served
	lastErr error
}

// Store holds the current dataset. Reads never block; loads are serialized.
type Store struct {
	source  ports.LoanSource
	logger  *internal.Logger
	current atomic.Pointer[state]

	loadMu    sync.Mutex
	mu        sync.RWMutex
	listeners []func(*loan.Dataset)
}

// New creates an empty store over source
func New(source ports.LoanSource, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	s := &Store{source: source, logger: logger}
	s.current.Store(&state{err: errors.DatasetNotLoaded()})
	return s
}

// Source returns the underlying loan source
func (s *Store) Source() ports.LoanSource {
	return s.source
}

// Load reads the source and publishes the result. A failed load keeps the
// previously published dataset, if any, and returns the error.
func (s *Store) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	start := time.Now()
	prev := s.current.Load()

	ds, err := s.source.Load(ctx)
	if err != nil {
		next := &state{dataset: prev.dataset, err: prev.err, lastErr: err}
		if prev.dataset == nil {
			next.err = err
		}
		s.current.Store(next)
		if prev.dataset != nil {
			s.logger.Error("[Store] reload of %s failed, keeping version %s: %v",
				s.source.Describe(), prev.dataset.Version().Short(), err)
		} else {
			s.logger.Error("[Store] load of %s failed: %v", s.source.Describe(), err)
		}
		return err
	}

	s.current.Store(&state{dataset: ds})
	s.logger.Info("[Store] loaded %d records from %s (version %s) in %s",
		ds.Len(), s.source.Describe(), ds.Version().Short(), time.Since(start).Round(time.Millisecond))

	if prev.dataset == nil || !prev.dataset.Version().Equals(ds.Version()) {
		s.notify(ds)
	}
	return nil
}

// Current returns the published dataset, or the load error if none has ever loaded
func (s *Store) Current() (*loan.Dataset, error) {
	st := s.current.Load()
	if st.dataset == nil {
		return nil, st.err
	}
	return st.dataset, nil
}

// Ready reports whether a dataset is being served
func (s *Store) Ready() bool {
	return s.current.Load().dataset != nil
}

// LastError returns the most recent load failure, nil after a successful load
func (s *Store) LastError() error {
	return s.current.Load().lastErr
}

// OnReload registers fn to run after each load that publishes a new version
func (s *Store) OnReload(fn func(*loan.Dataset)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(ds *loan.Dataset) {
	s.mu.RLock()
	listeners := append([]func(*loan.Dataset){}, s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(ds)
	}
}
