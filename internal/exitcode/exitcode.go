// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, empty text, unknown task).
	UserError = 1

	// AuthError indicates the session is missing or was rejected; the user
	// must sign in again.
	AuthError = 2

	// BackendError indicates a remote API or network failure.
	BackendError = 3
)
