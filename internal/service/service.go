// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for remote to-do operations.
// All GraphQL calls go through this interface.
// Commands, the synchronizer and the views never build queries directly.
type Service interface {
	// CurrentUser returns the signed-in user together with the full task list.
	CurrentUser(ctx context.Context) (User, error)

	// Task returns a single task by identifier.
	Task(ctx context.Context, id int) (Task, error)

	// CreateTask creates a new task and returns the identifier assigned by the store.
	CreateTask(ctx context.Context, text string) (int, error)

	// ToggleTask flips the completion flag of a task.
	ToggleTask(ctx context.Context, id int) (Task, error)

	// RenameTask replaces the text of a task.
	RenameTask(ctx context.Context, id int, text string) (Task, error)

	// DeleteTask deletes a task and returns its identifier.
	// Deleting an identifier that no longer exists is rejected.
	DeleteTask(ctx context.Context, id int) (int, error)

	// SignIn exchanges email and password for a session credential.
	SignIn(ctx context.Context, email, password string) (string, error)

	// SignUp registers a new user and returns a session credential.
	SignUp(ctx context.Context, name, email, password string) (string, error)
}
