package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"pkt.systems/pslog"

	"gtodo/internal/commands"
	"gtodo/internal/config"
	"gtodo/internal/credential"
	"gtodo/internal/exitcode"
	"gtodo/internal/guard"
	"gtodo/internal/service"
	"gtodo/internal/session"
)

// ServiceFactory creates a Service that authenticates with the credential
// in store. Used to inject the backend during dispatch.
type ServiceFactory func(cfg *config.Config, store credential.Reader) service.Service

// StoreFactory opens the profile's credential store.
type StoreFactory func(cfg *config.Config) credential.Store

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	stores   StoreFactory
	stdin    io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
// The credential store defaults to token.json in the config directory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		stores: func(cfg *config.Config) credential.Store {
			return credential.NewFile(cfg.TokenPath())
		},
		stdin: os.Stdin,
	}
}

// WithStores replaces the credential store factory.
func (d *Dispatcher) WithStores(stores StoreFactory) *Dispatcher {
	d.stores = stores
	return d
}

// WithStdin replaces the input commands read from.
func (d *Dispatcher) WithStdin(r io.Reader) *Dispatcher {
	d.stdin = r
	return d
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return reportFlagError(errOut, err)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	if debug {
		logger := pslog.NewWithOptions(errOut, pslog.Options{
			Mode:     pslog.ModeConsole,
			MinLevel: pslog.DebugLevel,
		})
		ctx = pslog.ContextWithLogger(ctx, logger)
	}
	log := pslog.Ctx(ctx).With("cmd", cmd.Name())

	store := d.stores(cfg)
	env := &commands.Env{
		Config:      cfg,
		Credentials: store,
		Stdin:       d.stdin,
	}
	if d.factory != nil {
		env.Service = d.factory(cfg, store)
		env.Services = func(s credential.Reader) service.Service {
			return d.factory(cfg, s)
		}
	}

	route := cmd.Route(positionalArgs)
	if route == "" {
		return cmd.Run(ctx, env, positionalArgs, out, errOut)
	}

	_, has := store.Get()
	if decision := guard.Decide(route, has); !decision.Allow {
		log.Debug("guard redirect", "route", route, "target", decision.Target)
		fmt.Fprintln(errOut, "error: not signed in (run: gtodo signin)")
		return exitcode.AuthError
	}

	env.Outcome = session.Bootstrap(route, store)
	switch {
	case env.Outcome.Kind == session.Redirect && env.Outcome.Target == guard.SignInPath:
		fmt.Fprintln(errOut, "error: not signed in (run: gtodo signin)")
		return exitcode.AuthError
	case env.Outcome.Kind == session.Redirect:
		// Signed-in users land on the list instead of the sign-in pages.
		log.Debug("bootstrap redirect", "route", route, "target", env.Outcome.Target)
		landing, ok := d.registry.Find("list")
		if !ok {
			fmt.Fprintln(errOut, "error: unknown command: list")
			return exitcode.UserError
		}
		env.Outcome = session.Bootstrap(env.Outcome.Target, store)
		return landing.Run(ctx, env, nil, out, errOut)
	}

	log.Debug("dispatch", "route", route, "protected", env.Outcome.Protected)
	return cmd.Run(ctx, env, positionalArgs, out, errOut)
}

func reportFlagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.Contains(errStr, "needs a value") || strings.Contains(errStr, "flag needs an argument") {
		parts := strings.Split(errStr, ":")
		flagPart := strings.TrimSpace(parts[len(parts)-1])
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagPart)
		return exitcode.UserError
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
