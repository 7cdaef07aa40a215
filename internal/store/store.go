// Package store owns the canonical application state. Callers change it only
// by dispatching actions; every transition produces a fresh value, is
// persisted after it is published, and is announced to subscribers.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

var (
	// ErrStorage marks persistence failures. They never undo a transition.
	ErrStorage = errors.New("storage error")

	ErrUnknownAction = errors.New("unknown action")
)

// Change describes one applied transition.
type Change struct {
	Action Action
	State  core.AppState
	// PersistErr is set when the snapshot could not be written.
	PersistErr error
}

type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStore)
		}
	}
}

// WithSubscriber registers fn at construction time, see Subscribe.
func WithSubscriber(fn func(Change)) Option {
	return func(s *Store) { s.subscribers = append(s.subscribers, fn) }
}

type Store struct {
	// mu serializes transitions, persistence and notification.
	mu      sync.Mutex
	current atomic.Pointer[core.AppState]

	repo           storage.Repository
	logger         *log.Logger
	subscribers    []func(Change)
	lastPersistErr error
}

// New builds a store holding the default state. repo may be nil, in which case
// nothing is persisted.
func New(repo storage.Repository, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	initial := core.DefaultState()
	s.current.Store(&initial)
	return s
}

// State returns a snapshot of the current state. The snapshot is a private
// copy; modifying it has no effect on the store.
func (s *Store) State() core.AppState {
	return s.current.Load().Clone()
}

// Subscribe registers fn to be called after every transition, in dispatch
// order. fn runs while the store is locked and must not call Dispatch.
func (s *Store) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// LastPersistError returns the error of the most recent save, nil if it
// succeeded.
func (s *Store) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPersistErr
}

// Hydrate loads the persisted snapshot, if any, and initializes the state with
// it. A missing record keeps the defaults. Read failures are logged and
// returned wrapped in ErrStorage; the defaults stay in place.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	snapshot, err := s.repo.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.InfoContext(ctx, "No persisted state, starting with defaults",
			log.FieldOperation, log.OpHydrate)
		return nil
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load persisted state, starting with defaults",
			log.FieldOperation, log.OpHydrate,
			log.FieldError, err)
		return fmt.Errorf("%w: load state: %w", ErrStorage, err)
	}

	if _, err := s.Dispatch(ctx, Initialize{State: snapshot}); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "State hydrated",
		log.FieldOperation, log.OpHydrate,
		log.FieldCount, len(snapshot.Transactions))
	return nil
}

// Dispatch validates action against the current state, applies it, persists
// the resulting snapshot and notifies subscribers. Only validation errors are
// returned; a failed save is logged, reported through Change.PersistErr and
// LastPersistError, and leaves the new state in place.
func (s *Store) Dispatch(ctx context.Context, action Action) (core.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := *s.current.Load()
	if action == nil {
		return prev.Clone(), ErrUnknownAction
	}

	action, err := validate(prev, action)
	if err != nil {
		s.logger.DebugContext(ctx, "Action rejected",
			log.FieldOperation, log.OpValidate,
			log.FieldAction, action.Name(),
			log.FieldError, err)
		return prev.Clone(), fmt.Errorf("%s: %w", action.Name(), err)
	}

	next := Reduce(prev, action)
	s.current.Store(&next)

	s.lastPersistErr = s.persist(ctx, next)
	s.notify(Change{Action: action, State: next, PersistErr: s.lastPersistErr})

	s.logger.DebugContext(ctx, "Action applied",
		log.FieldOperation, log.OpDispatch,
		log.FieldAction, action.Name(),
		log.FieldCount, len(next.Transactions))

	return next.Clone(), nil
}

// Reset clears the persisted record and restores the default state.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var clearErr error
	if s.repo != nil {
		if err := s.repo.Clear(ctx); err != nil {
			s.logger.WarnContext(ctx, "Failed to clear persisted state",
				log.FieldOperation, log.OpReset,
				log.FieldError, err)
			clearErr = fmt.Errorf("%w: clear state: %w", ErrStorage, err)
		}
	}

	initial := core.DefaultState()
	s.current.Store(&initial)
	s.lastPersistErr = clearErr
	s.notify(Change{Action: Initialize{State: initial}, State: initial, PersistErr: clearErr})

	s.logger.InfoContext(ctx, "State reset to defaults", log.FieldOperation, log.OpReset)
	return clearErr
}

func (s *Store) persist(ctx context.Context, state core.AppState) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, state); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist state, keeping in-memory copy",
			log.FieldOperation, log.OpPersist,
			log.FieldError, err)
		return fmt.Errorf("%w: save state: %w", ErrStorage, err)
	}
	return nil
}

func (s *Store) notify(c Change) {
	for _, fn := range s.subscribers {
		c.State = c.State.Clone()
		fn(c)
	}
}

// validate rejects payloads that must never reach the reducer and returns the
// action with normalized fields.
func validate(state core.AppState, action Action) (Action, error) {
	switch a := action.(type) {
	case AddTransaction:
		if err := a.Transaction.Validate(); err != nil {
			return action, err
		}
		if indexOf(state.Transactions, a.Transaction.ID) >= 0 {
			return action, fmt.Errorf("%w: %s", core.ErrDuplicateID, a.Transaction.ID)
		}
	case UpdateTransaction:
		if err := a.Transaction.Validate(); err != nil {
			return action, err
		}
	case UpdateUser:
		patch, err := a.Patch.Normalize()
		if err != nil {
			return action, err
		}
		return UpdateUser{Patch: patch}, nil
	}
	return action, nil
}
