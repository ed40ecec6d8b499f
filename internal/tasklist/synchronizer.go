// Package tasklist owns the task list snapshot for one session and drives
// the remote store through mutations.
//
// The snapshot is only ever replaced by a full successful fetch: after each
// accepted mutation the whole list is fetched again instead of being patched
// from the mutation's own response. At most one remote call is in flight per
// Synchronizer; a second trigger while one is pending fails with ErrBusy.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"pkt.systems/pslog"

	"gtodo/internal/credential"
	"gtodo/internal/guard"
	"gtodo/internal/service"
	"gtodo/internal/session"
)

// State is the lifecycle state of a Synchronizer.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Mutating
	// Unauthenticated is terminal: the credential was rejected and cleared.
	Unauthenticated
	// Closed is terminal: the view navigated away.
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Mutating:
		return "mutating"
	case Unauthenticated:
		return "unauthenticated"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNotConfirmed is returned by Start when the bootstrap did not confirm a credential.
	ErrNotConfirmed = errors.New("session not confirmed")
	// ErrNotReady is returned when an operation is issued before the first fetch completed.
	ErrNotReady = errors.New("task list not loaded")
	// ErrBusy is returned when another remote call is still in flight.
	ErrBusy = errors.New("another operation is in progress")
	// ErrUnauthenticated is returned once the session has been terminated.
	ErrUnauthenticated = errors.New("session ended: sign in again")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("task list closed")
	// ErrDiscarded is returned when a result arrived after Close and was dropped.
	ErrDiscarded = errors.New("result discarded after navigation")
)

// Synchronizer is the task list state machine for one session.
type Synchronizer struct {
	svc      service.Service
	store    credential.Store
	onUnauth func(target string)

	mu    sync.Mutex
	state State
	epoch uint64
	user  string
	tasks []service.Task
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// OnUnauthenticated registers a hook invoked with the sign-in path once the
// remote API rejects the credential.
func OnUnauthenticated(fn func(target string)) Option {
	return func(s *Synchronizer) { s.onUnauth = fn }
}

// New creates a Synchronizer in the Uninitialized state.
func New(svc service.Service, store credential.Store, opts ...Option) *Synchronizer {
	s := &Synchronizer{svc: svc, store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tasks returns a copy of the current snapshot.
func (s *Synchronizer) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Task returns the snapshot entry for id.
func (s *Synchronizer) Task(id int) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// UserName returns the name of the signed-in user from the last fetch.
func (s *Synchronizer) UserName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Start issues the initial fetch. It refuses to fetch unless the bootstrap
// outcome confirmed a credential on a protected page.
func (s *Synchronizer) Start(ctx context.Context, outcome session.Outcome) error {
	if !outcome.Confirmed() {
		return ErrNotConfirmed
	}
	epoch, err := s.acquire(Loading, Uninitialized)
	if err != nil {
		return err
	}
	return s.fetch(ctx, epoch, Uninitialized)
}

// Refresh re-fetches the full list from Ready.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	epoch, err := s.acquire(Loading, Ready)
	if err != nil {
		return err
	}
	return s.fetch(ctx, epoch, Ready)
}

// Create adds a task. text must be non-empty after trimming.
func (s *Synchronizer) Create(ctx context.Context, text string) error {
	if err := ValidateText(text); err != nil {
		return err
	}
	return s.mutate(ctx, "create", func(ctx context.Context) error {
		_, err := s.svc.CreateTask(ctx, text)
		return err
	})
}

// Toggle flips the completion flag of id.
func (s *Synchronizer) Toggle(ctx context.Context, id int) error {
	return s.mutate(ctx, "toggle", func(ctx context.Context) error {
		_, err := s.svc.ToggleTask(ctx, id)
		return err
	})
}

// Lookup loads a single task from the remote store without touching the
// snapshot. An authentication failure ends the session like any other call.
func (s *Synchronizer) Lookup(ctx context.Context, id int) (service.Task, error) {
	s.mu.Lock()
	state, epoch := s.state, s.epoch
	s.mu.Unlock()
	switch state {
	case Unauthenticated:
		return service.Task{}, ErrUnauthenticated
	case Closed:
		return service.Task{}, ErrClosed
	case Uninitialized:
		return service.Task{}, ErrNotReady
	}

	t, err := s.svc.Task(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrAuthentication) {
			return service.Task{}, s.endSession(ctx, epoch, err)
		}
		if !s.current(epoch) {
			return service.Task{}, ErrDiscarded
		}
		return service.Task{}, err
	}
	if !s.current(epoch) {
		return service.Task{}, ErrDiscarded
	}
	return t, nil
}

// Rename replaces the text of id. text must be non-empty after trimming.
func (s *Synchronizer) Rename(ctx context.Context, id int, text string) error {
	if err := ValidateText(text); err != nil {
		return err
	}
	return s.mutate(ctx, "rename", func(ctx context.Context) error {
		_, err := s.svc.RenameTask(ctx, id, text)
		return err
	})
}

// Delete removes id. Deleting an already deleted id surfaces the rejection.
func (s *Synchronizer) Delete(ctx context.Context, id int) error {
	return s.mutate(ctx, "delete", func(ctx context.Context) error {
		_, err := s.svc.DeleteTask(ctx, id)
		return err
	})
}

// Close abandons the session view. Results of calls still in flight are
// discarded when they settle.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unauthenticated {
		return
	}
	s.epoch++
	s.state = Closed
	s.tasks = nil
}

// ValidateText rejects text that is empty after trimming.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: task cannot be empty", service.ErrValidation)
	}
	return nil
}

func (s *Synchronizer) mutate(ctx context.Context, name string, call func(context.Context) error) error {
	epoch, err := s.acquire(Mutating, Ready)
	if err != nil {
		return err
	}
	pslog.Ctx(ctx).Debug("task mutation", "op", name)
	if err := call(ctx); err != nil {
		return s.settleError(ctx, epoch, Ready, err)
	}
	if !s.current(epoch) {
		return ErrDiscarded
	}
	return s.fetch(ctx, epoch, Ready)
}

// current reports whether no Close or session end happened since epoch.
func (s *Synchronizer) current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return epoch == s.epoch
}

// acquire moves from one of the allowed states into next and returns the
// epoch the caller must present when settling.
func (s *Synchronizer) acquire(next State, from State) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case from:
		s.state = next
		return s.epoch, nil
	case Loading, Mutating:
		return 0, ErrBusy
	case Unauthenticated:
		return 0, ErrUnauthenticated
	case Closed:
		return 0, ErrClosed
	case Uninitialized:
		return 0, ErrNotReady
	default:
		return 0, fmt.Errorf("cannot start from %s", s.state)
	}
}

func (s *Synchronizer) fetch(ctx context.Context, epoch uint64, fallback State) error {
	user, err := s.svc.CurrentUser(ctx)
	if err != nil {
		return s.settleError(ctx, epoch, fallback, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return ErrDiscarded
	}
	tasks := make([]service.Task, len(user.Tasks))
	copy(tasks, user.Tasks)
	s.tasks = tasks
	s.user = user.Name
	s.state = Ready
	return nil
}

// settleError returns to fallback on ordinary failures, leaving the snapshot
// untouched, and ends the session on authentication failures.
func (s *Synchronizer) settleError(ctx context.Context, epoch uint64, fallback State, err error) error {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return ErrDiscarded
	}
	if !errors.Is(err, service.ErrAuthentication) {
		s.state = fallback
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	return s.endSession(ctx, epoch, err)
}

// endSession clears the credential and moves to Unauthenticated.
func (s *Synchronizer) endSession(ctx context.Context, epoch uint64, err error) error {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return ErrDiscarded
	}
	s.state = Unauthenticated
	s.tasks = nil
	s.epoch++
	hook := s.onUnauth
	s.mu.Unlock()

	log := pslog.Ctx(ctx)
	log.Info("credential rejected; ending session", "err", err)
	if s.store != nil {
		if cerr := s.store.Clear(); cerr != nil {
			log.Warn("failed to clear credential", "err", cerr)
		}
	}
	if hook != nil {
		hook(guard.SignInPath)
	}
	return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
}
