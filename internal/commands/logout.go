package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gtodo/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string               { return "logout" }
func (c *LogoutCmd) Aliases() []string          { return []string{"signout"} }
func (c *LogoutCmd) Synopsis() string           { return "Remove the stored credential" }
func (c *LogoutCmd) Usage() string              { return "gtodo logout" }
func (c *LogoutCmd) Route(args []string) string { return "" }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if _, ok := env.Credentials.Get(); !ok {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "not signed in")
		}
		return exitcode.Success
	}

	if err := env.Credentials.Clear(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove credential: %v\n", err)
		return exitcode.AuthError
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
