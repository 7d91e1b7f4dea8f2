// Package state owns the single in-memory copy of the application state.
//
// Every write goes through Mutate: the current state is cloned, the
// transition runs on the clone and, only if it succeeds, the clone replaces
// the current state. Readers therefore never observe a half-applied
// transition, and a failed transition leaves no trace. Commit hooks run
// after the swap, outside the lock, and are where side effects start.
package state

import (
	"sync"

	"veredapos/internal/ledger"
	"veredapos/internal/model"
)

// CommitHook observes a committed transition. next must be treated as
// read-only.
type CommitHook func(next *model.State)

type Store struct {
	mu      sync.Mutex
	current *model.State
	hooks   []CommitHook
	prefix  string
}

type Option func(*Store)

// WithInvoicePrefix sets the prefix used to read back issued invoice
// numbers when the ledger is reconciled.
func WithInvoicePrefix(p string) Option {
	return func(s *Store) { s.prefix = p }
}

// New wraps initial, or the empty state of a fresh installation when nil.
// The invoice ledger is reconciled with the closed orders first so
// numbering resumes after the last issued invoice.
func New(initial *model.State, opts ...Option) *Store {
	s := &Store{prefix: ledger.DefaultPrefix}
	for _, o := range opts {
		o(s)
	}
	if initial == nil {
		initial = model.NewState(model.DefaultSettings())
	}
	ledger.Reconcile(initial, s.prefix)
	s.current = initial
	return s
}

// OnCommit registers h to run after every successful Mutate.
func (s *Store) OnCommit(h CommitHook) {
	s.mu.Lock()
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()
}

// Current returns the committed snapshot. It is never mutated after commit,
// so callers may hold on to it, but must not modify it.
func (s *Store) Current() *model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Mutate applies fn to a private clone of the state. When fn returns an
// error the clone is discarded and the error returned unchanged.
func (s *Store) Mutate(fn func(st *model.State) error) error {
	s.mu.Lock()
	next := s.current.Clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = next
	hooks := append([]CommitHook(nil), s.hooks...)
	s.mu.Unlock()

	for _, h := range hooks {
		h(next)
	}
	return nil
}

// Replace swaps in a whole new state (snapshot import). Its ledger is
// reconciled the same way New does.
func (s *Store) Replace(st *model.State) {
	ledger.Reconcile(st, s.prefix)
	s.mu.Lock()
	s.current = st
	hooks := append([]CommitHook(nil), s.hooks...)
	s.mu.Unlock()

	for _, h := range hooks {
		h(st)
	}
}
