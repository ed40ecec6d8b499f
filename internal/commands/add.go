package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"gtodo/internal/exitcode"
	"gtodo/internal/guard"
	"gtodo/internal/tasklist"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string               { return "add" }
func (c *AddCmd) Aliases() []string          { return []string{"create"} }
func (c *AddCmd) Synopsis() string           { return "Create a task" }
func (c *AddCmd) Usage() string              { return "gtodo add <text...>" }
func (c *AddCmd) Route(args []string) string { return guard.ListPath }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	text := strings.Join(args, " ")
	// Checked before opening the list so an empty add costs no round-trip.
	if err := tasklist.ValidateText(text); err != nil {
		fmt.Fprintln(errOut, "error: task cannot be empty")
		return exitcode.UserError
	}

	return mutateAndPrint(ctx, env, out, errOut, func(s *tasklist.Synchronizer) error {
		return s.Create(ctx, text)
	})
}
