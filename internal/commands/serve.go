package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"pkt.systems/pslog"

	"gtodo/internal/exitcode"
	"gtodo/internal/web"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the HTTP front. Each request carries its own credential in
// the token cookie, so the command itself is not guarded.
type ServeCmd struct {
	addr   string
	secure bool
}

func (c *ServeCmd) Name() string               { return "serve" }
func (c *ServeCmd) Aliases() []string          { return nil }
func (c *ServeCmd) Synopsis() string           { return "Serve the task list over HTTP" }
func (c *ServeCmd) Usage() string              { return "gtodo serve [--addr <host:port>] [--secure-cookies]" }
func (c *ServeCmd) Route(args []string) string { return "" }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
	fs.BoolVar(&c.secure, "secure-cookies", false, "")
}

func (c *ServeCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	addr := c.addr
	if addr == "" {
		addr = env.Config.HTTPAddr
	}
	if env.Services == nil {
		fmt.Fprintln(errOut, "error: no backend configured")
		return exitcode.BackendError
	}

	srv := web.NewServer(env.Services,
		web.WithLogger(pslog.Ctx(ctx)),
		web.WithSecureCookies(c.secure),
	)
	if !env.Config.Quiet {
		fmt.Fprintf(out, "listening on http://%s\n", addr)
	}
	if err := srv.Run(ctx, addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
