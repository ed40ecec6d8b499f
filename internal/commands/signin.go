package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"pkt.systems/pslog"

	"gtodo/internal/exitcode"
	"gtodo/internal/guard"
	"gtodo/internal/service"
	"gtodo/internal/session"
)

func init() {
	Register(&SignInCmd{})
	Register(&SignUpCmd{})
}

// PasswordEnv supplies the password to signin and signup when no
// --password flag is given.
const PasswordEnv = "GTODO_PASSWORD"

// SignInCmd implements the signin command.
type SignInCmd struct {
	email         string
	password      string
	passwordStdin bool
}

// SetCredentials sets the email and password (for testing).
func (c *SignInCmd) SetCredentials(email, password string) {
	c.email = email
	c.password = password
}

func (c *SignInCmd) Name() string               { return "signin" }
func (c *SignInCmd) Aliases() []string          { return []string{"login"} }
func (c *SignInCmd) Synopsis() string           { return "Sign in with email and password" }
func (c *SignInCmd) Usage() string {
	return "gtodo signin --email <email> [--password <password> | --password-stdin]"
}
func (c *SignInCmd) Route(args []string) string { return guard.SignInPath }

func (c *SignInCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "")
}

func (c *SignInCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	password, err := resolvePassword(c.password, c.passwordStdin, env.Stdin)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if strings.TrimSpace(c.email) == "" || password == "" {
		fmt.Fprintln(errOut, "error: --email and --password required")
		return exitcode.UserError
	}

	token, err := env.Service.SignIn(ctx, strings.TrimSpace(c.email), password)
	if err != nil {
		return reportSignInError(errOut, "sign in", err)
	}
	return establish(ctx, env, token, out, errOut)
}

// SignUpCmd implements the signup command.
type SignUpCmd struct {
	name          string
	email         string
	password      string
	passwordStdin bool
}

// SetCredentials sets the name, email and password (for testing).
func (c *SignUpCmd) SetCredentials(name, email, password string) {
	c.name = name
	c.email = email
	c.password = password
}

func (c *SignUpCmd) Name() string               { return "signup" }
func (c *SignUpCmd) Aliases() []string          { return []string{"register"} }
func (c *SignUpCmd) Synopsis() string           { return "Create an account and sign in" }
func (c *SignUpCmd) Usage() string {
	return "gtodo signup --name <name> --email <email> [--password <password> | --password-stdin]"
}
func (c *SignUpCmd) Route(args []string) string { return guard.SignUpPath }

func (c *SignUpCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "")
}

func (c *SignUpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	password, err := resolvePassword(c.password, c.passwordStdin, env.Stdin)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if strings.TrimSpace(c.name) == "" || strings.TrimSpace(c.email) == "" || password == "" {
		fmt.Fprintln(errOut, "error: --name, --email and --password required")
		return exitcode.UserError
	}

	token, err := env.Service.SignUp(ctx, strings.TrimSpace(c.name), strings.TrimSpace(c.email), password)
	if err != nil {
		return reportSignInError(errOut, "sign up", err)
	}
	return establish(ctx, env, token, out, errOut)
}

// resolvePassword picks the password from the flag, then stdin when asked,
// then PasswordEnv. An empty result means none was given.
func resolvePassword(flagValue string, fromStdin bool, stdin io.Reader) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if fromStdin {
		if stdin == nil {
			return "", errors.New("--password-stdin: no input")
		}
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("--password-stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	return os.Getenv(PasswordEnv), nil
}

// reportSignInError reports a refused sign-in as a user error; transport
// failures keep their usual mapping.
func reportSignInError(errOut io.Writer, action string, err error) int {
	if errors.Is(err, service.ErrRejected) || errors.Is(err, service.ErrAuthentication) || errors.Is(err, service.ErrValidation) {
		fmt.Fprintf(errOut, "error: %s failed: %v\n", action, err)
		return exitcode.UserError
	}
	return reportError(errOut, err)
}

// establish stores a freshly issued credential and lands on the list page.
func establish(ctx context.Context, env *Env, token string, out, errOut io.Writer) int {
	if err := env.Credentials.Set(token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save credential: %v\n", err)
		return exitcode.AuthError
	}
	pslog.Ctx(ctx).Info("signed in")

	if env.Config.Quiet {
		return exitcode.Success
	}
	landing := *env
	landing.Outcome = session.Bootstrap(guard.ListPath, env.Credentials)
	return (&ListCmd{}).Run(ctx, &landing, nil, out, errOut)
}
