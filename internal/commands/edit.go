package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"gtodo/internal/editintent"
	"gtodo/internal/exitcode"
	"gtodo/internal/guard"
	"gtodo/internal/output"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the single-task view. With only an id it shows the
// task as the remote store has it; with text it commits a rename.
type EditCmd struct{}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"show"} }
func (c *EditCmd) Synopsis() string  { return "Show or rewrite a single task" }
func (c *EditCmd) Usage() string     { return "gtodo edit <id> [text...]" }

func (c *EditCmd) Route(args []string) string {
	if id, err := ParseTaskID(args); err == nil {
		return guard.TaskPath(id)
	}
	return guard.ListPath
}

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, code := taskIDArg(args, errOut)
	if id == 0 {
		return code
	}

	s, code := openList(ctx, env, errOut)
	if code != exitcode.Success {
		return code
	}
	defer s.Close()

	r := editintent.New(s)
	task, err := r.BeginFromRemote(ctx, editintent.LoaderFunc(s.Lookup), id)
	if err != nil {
		return reportError(errOut, err)
	}
	if len(args) == 1 {
		output.FormatTask(out, task)
		return exitcode.Success
	}

	r.UpdateDraft(strings.Join(args[1:], " "))
	if err := r.Commit(ctx); err != nil {
		return reportError(errOut, err)
	}
	if updated, ok := s.Task(id); ok && !env.Config.Quiet {
		output.FormatTask(out, updated)
	}
	return exitcode.Success
}
