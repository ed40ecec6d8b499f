package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"gtodo/internal/editintent"
	"gtodo/internal/exitcode"
	"gtodo/internal/guard"
	"gtodo/internal/service"
	"gtodo/internal/tasklist"
)

func init() {
	Register(&RenameCmd{})
}

// RenameCmd implements the rename command.
type RenameCmd struct{}

func (c *RenameCmd) Name() string               { return "rename" }
func (c *RenameCmd) Aliases() []string          { return nil }
func (c *RenameCmd) Synopsis() string           { return "Change the text of a task" }
func (c *RenameCmd) Usage() string              { return "gtodo rename <id> <text...>" }
func (c *RenameCmd) Route(args []string) string { return guard.ListPath }

func (c *RenameCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RenameCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, code := taskIDArg(args, errOut)
	if id == 0 {
		return code
	}
	text := strings.Join(args[1:], " ")
	if err := tasklist.ValidateText(text); err != nil {
		fmt.Fprintln(errOut, "error: task cannot be empty")
		return exitcode.UserError
	}

	return mutateAndPrint(ctx, env, out, errOut, func(s *tasklist.Synchronizer) error {
		task, ok := s.Task(id)
		if !ok {
			return fmt.Errorf("%w: task %d", service.ErrNotFound, id)
		}
		r := editintent.New(s)
		r.Begin(task.ID, task.Text)
		r.UpdateDraft(text)
		return r.Commit(ctx)
	})
}

// taskIDArg parses the leading task id. It returns 0 and the exit code on error.
func taskIDArg(args []string, errOut io.Writer) (int, int) {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 0, exitcode.UserError
	}
	return id, exitcode.Success
}
