package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gtodo/internal/exitcode"
	"gtodo/internal/guard"
	"gtodo/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command. It is also what `gtodo` with no
// args runs, and where a signed-in user lands from the sign-in pages.
type ListCmd struct{}

func (c *ListCmd) Name() string               { return "list" }
func (c *ListCmd) Aliases() []string          { return []string{"ls"} }
func (c *ListCmd) Synopsis() string           { return "List tasks" }
func (c *ListCmd) Usage() string              { return "gtodo list" }
func (c *ListCmd) Route(args []string) string { return guard.ListPath }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	s, code := openList(ctx, env, errOut)
	if code != exitcode.Success {
		return code
	}
	defer s.Close()

	output.FormatList(out, s.UserName(), s.Tasks())
	return exitcode.Success
}
