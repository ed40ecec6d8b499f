package commands

import (
	"context"
	"flag"
	"io"

	"gtodo/internal/guard"
	"gtodo/internal/tasklist"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command. Removing an id that is already gone
// reports the remote rejection.
type RmCmd struct{}

func (c *RmCmd) Name() string               { return "rm" }
func (c *RmCmd) Aliases() []string          { return []string{"delete"} }
func (c *RmCmd) Synopsis() string           { return "Delete a task" }
func (c *RmCmd) Usage() string              { return "gtodo rm <id>" }
func (c *RmCmd) Route(args []string) string { return guard.ListPath }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, code := taskIDArg(args, errOut)
	if id == 0 {
		return code
	}
	return mutateAndPrint(ctx, env, out, errOut, func(s *tasklist.Synchronizer) error {
		return s.Delete(ctx, id)
	})
}
