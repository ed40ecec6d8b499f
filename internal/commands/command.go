// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"gtodo/internal/config"
	"gtodo/internal/credential"
	"gtodo/internal/service"
	"gtodo/internal/session"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Route returns the page the invocation renders, given its positional
	// args. The dispatcher runs the route guard and session bootstrap on it
	// before Run. An empty route is not a page and is never guarded.
	Route(args []string) string

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Env carries everything a command needs besides its arguments.
type Env struct {
	// Config is always provided (config dir, endpoint, flags).
	Config *config.Config

	// Service talks to the remote API with the profile's credential.
	Service service.Service

	// Services builds a service bound to another credential store, such as
	// a per-request store on the HTTP front.
	Services func(store credential.Reader) service.Service

	// Credentials is the profile's credential store.
	Credentials credential.Store

	// Outcome is the session bootstrap result for the command's route.
	Outcome session.Outcome

	// Stdin is the process input, read by signin and signup with
	// --password-stdin.
	Stdin io.Reader
}
