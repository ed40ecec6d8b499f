package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gtodo/internal/exitcode"
	"gtodo/internal/output"
	"gtodo/internal/service"
	"gtodo/internal/tasklist"
)

// openList starts a synchronizer for the signed-in profile.
func openList(ctx context.Context, env *Env, errOut io.Writer) (*tasklist.Synchronizer, int) {
	s := tasklist.New(env.Service, env.Credentials)
	if err := s.Start(ctx, env.Outcome); err != nil {
		return nil, reportError(errOut, err)
	}
	return s, exitcode.Success
}

// mutateAndPrint opens the list, applies op and prints the refreshed list.
func mutateAndPrint(ctx context.Context, env *Env, out, errOut io.Writer, op func(*tasklist.Synchronizer) error) int {
	s, code := openList(ctx, env, errOut)
	if code != exitcode.Success {
		return code
	}
	defer s.Close()

	if err := op(s); err != nil {
		return reportError(errOut, err)
	}
	if !env.Config.Quiet {
		output.FormatList(out, s.UserName(), s.Tasks())
	}
	return exitcode.Success
}

// reportError prints err and maps it to an exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, tasklist.ErrNotConfirmed),
		errors.Is(err, tasklist.ErrUnauthenticated),
		errors.Is(err, service.ErrAuthentication):
		fmt.Fprintln(errOut, "error: not signed in (run: gtodo signin)")
		return exitcode.AuthError
	case errors.Is(err, service.ErrValidation):
		fmt.Fprintln(errOut, "error: task cannot be empty")
		return exitcode.UserError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrRejected):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v (try again)\n", err)
		return exitcode.BackendError
	}
}
