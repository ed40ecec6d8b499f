package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gtodo/internal/exitcode"
	"gtodo/internal/guard"
	"gtodo/internal/tasklist"
	"gtodo/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd opens the interactive list view.
type UICmd struct{}

func (c *UICmd) Name() string               { return "ui" }
func (c *UICmd) Aliases() []string          { return []string{"tui"} }
func (c *UICmd) Synopsis() string           { return "Open the interactive list" }
func (c *UICmd) Usage() string              { return "gtodo ui" }
func (c *UICmd) Route(args []string) string { return guard.ListPath }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	list := tasklist.New(env.Service, env.Credentials)
	res, err := tui.Run(ctx, list, env.Credentials, env.Outcome)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	switch {
	case res.SignedOut:
		if !env.Config.Quiet {
			fmt.Fprintln(out, "signed out")
		}
	case res.Redirect == guard.SignInPath:
		fmt.Fprintln(errOut, "error: not signed in (run: gtodo signin)")
		return exitcode.AuthError
	}
	return exitcode.Success
}
