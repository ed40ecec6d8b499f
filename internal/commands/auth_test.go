package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gtodo/internal/commands"
	"gtodo/internal/credential"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
	"gtodo/internal/testutil"
)

// TestSignInCommand verifies a successful sign-in stores the credential and
// lands on the list.
func TestSignInCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Name = "Ada"
	svc.AddUser("Ada", "ada@example.com", "secret")
	svc.AddTask("Buy milk", false)
	store := credential.NewMemory("")

	cmd := &commands.SignInCmd{}
	cmd.SetCredentials("ada@example.com", "secret")
	stdout, stderr, code := runCommand(t, cmd, svc, store, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if token, ok := store.Get(); !ok || token != testutil.DefaultToken {
		t.Errorf("expected stored credential, got %q", token)
	}
	if !strings.HasPrefix(stdout, "Hello, Ada!\n") || !strings.Contains(stdout, "Buy milk") {
		t.Errorf("expected list after sign-in, got %q", stdout)
	}
}

// TestSignInCommand_Rejected verifies bad credentials leave the store empty.
func TestSignInCommand_Rejected(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Ada", "ada@example.com", "secret")
	store := credential.NewMemory("")

	cmd := &commands.SignInCmd{}
	cmd.SetCredentials("ada@example.com", "wrong")
	_, stderr, code := runCommand(t, cmd, svc, store, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: sign in failed:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if _, ok := store.Get(); ok {
		t.Error("expected no stored credential")
	}
}

// TestSignInCommand_MissingFlags verifies the remote is not called without input.
func TestSignInCommand_MissingFlags(t *testing.T) {
	t.Setenv(commands.PasswordEnv, "")
	svc := testutil.NewFakeService()

	cmd := &commands.SignInCmd{}
	cmd.SetCredentials("", "")
	_, stderr, code := runCommand(t, cmd, svc, credential.NewMemory(""), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: --email and --password required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Errorf("expected no remote calls, got %d", svc.TotalCalls())
	}
}

// TestSignInCommand_Transport verifies network failures map to the backend code.
func TestSignInCommand_Transport(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SignInErr = service.ErrTransport

	cmd := &commands.SignInCmd{}
	cmd.SetCredentials("ada@example.com", "secret")
	_, _, code := runCommand(t, cmd, svc, credential.NewMemory(""), nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
}

// TestSignUpCommand verifies sign-up stores the issued credential.
func TestSignUpCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	store := credential.NewMemory("")

	cmd := &commands.SignUpCmd{}
	cmd.SetCredentials("Grace", "grace@example.com", "hopper")
	stdout, _, code := runCommand(t, cmd, svc, store, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if _, ok := store.Get(); !ok {
		t.Error("expected stored credential")
	}
	if !strings.HasPrefix(stdout, "Hello, Grace!") {
		t.Errorf("expected greeting for new user, got %q", stdout)
	}

	// Same email again is refused.
	_, stderr, code := runCommand(t, cmd, svc, credential.NewMemory(""), nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: sign up failed:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// TestSignInCommand_PersistsToFile verifies the credential survives the process.
func TestSignInCommand_PersistsToFile(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("Ada", "ada@example.com", "secret")
	path := filepath.Join(t.TempDir(), "token.json")
	store := credential.NewFile(path)

	cmd := &commands.SignInCmd{}
	cmd.SetCredentials("ada@example.com", "secret")
	_, _, code := runCommand(t, cmd, svc, store, nil, true)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected token file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}
	if token, ok := credential.NewFile(path).Get(); !ok || token != testutil.DefaultToken {
		t.Errorf("expected credential readable by a new store, got %q", token)
	}
}

// TestLogoutCommand_NotSignedIn verifies logout without a credential is a no-op.
func TestLogoutCommand_NotSignedIn(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, nil, credential.NewMemory(""), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "not signed in\n" {
		t.Errorf("expected 'not signed in', got %q", stdout)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
}

// TestLogoutCommand verifies logout clears the credential.
func TestLogoutCommand(t *testing.T) {
	store := credential.NewMemory(testutil.DefaultToken)

	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, nil, store, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if _, ok := store.Get(); ok {
		t.Error("expected credential cleared")
	}
}
