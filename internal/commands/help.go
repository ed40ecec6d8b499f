package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"gtodo/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string               { return "help" }
func (c *HelpCmd) Aliases() []string          { return nil }
func (c *HelpCmd) Synopsis() string           { return "Print usage" }
func (c *HelpCmd) Usage() string              { return "gtodo help" }
func (c *HelpCmd) Route(args []string) string { return "" }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, HelpText(DefaultRegistry))
	return exitcode.Success
}

// HelpText renders the usage summary for every command in r.
func HelpText(r *Registry) string {
	var b strings.Builder
	b.WriteString("Usage:\n")
	fmt.Fprintf(&b, "  %-58s %s\n", "gtodo", "List tasks (same as gtodo list)")
	for _, cmd := range r.All() {
		usage := cmd.Usage()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			usage += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(&b, "  %-58s %s\n", usage, cmd.Synopsis())
	}
	b.WriteString(commonFlags)
	return b.String()
}

const commonFlags = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Commands that show tasks need a stored credential; without one they exit 2.
`
