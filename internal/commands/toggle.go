package commands

import (
	"context"
	"flag"
	"io"

	"gtodo/internal/guard"
	"gtodo/internal/tasklist"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string               { return "toggle" }
func (c *ToggleCmd) Aliases() []string          { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string           { return "Flip a task between open and done" }
func (c *ToggleCmd) Usage() string              { return "gtodo toggle <id>" }
func (c *ToggleCmd) Route(args []string) string { return guard.ListPath }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, code := taskIDArg(args, errOut)
	if id == 0 {
		return code
	}
	return mutateAndPrint(ctx, env, out, errOut, func(s *tasklist.Synchronizer) error {
		return s.Toggle(ctx, id)
	})
}
