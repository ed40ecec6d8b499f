// Package editintent tracks the single in-progress inline edit of a task.
package editintent

import (
	"context"
	"errors"
	"sync"

	"gtodo/internal/service"
	"gtodo/internal/tasklist"
)

// ErrNoIntent is returned by Commit when no edit is in progress.
var ErrNoIntent = errors.New("no edit in progress")

// Intent is the user's pending rename of one task.
type Intent struct {
	TaskID int
	Draft  string
}

// Renamer commits a rename. *tasklist.Synchronizer implements it.
type Renamer interface {
	Rename(ctx context.Context, id int, text string) error
}

// Loader fetches a single task by id. service.Service implements it.
type Loader interface {
	Task(ctx context.Context, id int) (service.Task, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, id int) (service.Task, error)

// Task implements Loader.
func (f LoaderFunc) Task(ctx context.Context, id int) (service.Task, error) {
	return f(ctx, id)
}

// Reconciler holds at most one Intent. Draft changes are local; only Commit
// reaches the remote store.
type Reconciler struct {
	renamer Renamer

	mu     sync.Mutex
	intent *Intent
}

// New creates a Reconciler that commits through r.
func New(r Renamer) *Reconciler {
	return &Reconciler{renamer: r}
}

// Begin starts editing id with text as the initial draft. Any other intent
// is abandoned without a remote call.
func (r *Reconciler) Begin(id int, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intent = &Intent{TaskID: id, Draft: text}
}

// BeginFromRemote loads id and begins an intent seeded with its current text.
func (r *Reconciler) BeginFromRemote(ctx context.Context, l Loader, id int) (service.Task, error) {
	t, err := l.Task(ctx, id)
	if err != nil {
		return service.Task{}, err
	}
	r.Begin(t.ID, t.Text)
	return t, nil
}

// UpdateDraft replaces the draft text. It is a no-op without an intent.
func (r *Reconciler) UpdateDraft(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intent != nil {
		r.intent.Draft = text
	}
}

// Cancel drops the intent.
func (r *Reconciler) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intent = nil
}

// Active returns the current intent.
func (r *Reconciler) Active() (Intent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intent == nil {
		return Intent{}, false
	}
	return *r.intent, true
}

// Editing reports whether id is the task under edit.
func (r *Reconciler) Editing(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.intent != nil && r.intent.TaskID == id
}

// Commit renames the task under edit to the draft. On success the intent
// is cleared; on any failure the intent and its draft are kept so the user
// can retry or cancel.
func (r *Reconciler) Commit(ctx context.Context) error {
	intent, ok := r.Active()
	if !ok {
		return ErrNoIntent
	}
	if err := tasklist.ValidateText(intent.Draft); err != nil {
		return err
	}
	if err := r.renamer.Rename(ctx, intent.TaskID, intent.Draft); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// A new Begin during the round-trip owns the slot now.
	if r.intent != nil && *r.intent == intent {
		r.intent = nil
	}
	return nil
}
