package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"notifier/internal/cli"
	"notifier/internal/commands"
	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/service"
	"notifier/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

func failingFactory(err error) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, err
	}
}

func run(t *testing.T, factory cli.ServiceFactory, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, testFactory(testutil.NewFakeService()), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, stderr, code := run(t, nil, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "notifier 0.1.0\n" {
		t.Errorf("expected 'notifier 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsValue(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), "list", "--page")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -page\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsShowsDashboard(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddItem("aaaa-0001", "Buy milk", false, 0)

	stdout, stderr, code := run(t, testFactory(svc))

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	for _, want := range []string{"Today is ", "Now is ", "Pending (1)", "   1  Buy milk", "Completed (0)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("dashboard missing %q:\n%s", want, stdout)
		}
	}
}

func TestDispatcher_DashStaysPositional(t *testing.T) {
	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), "show", "-")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: invalid entry reference: -\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_BrokenConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte("backend = ["), 0600); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := run(t, testFactory(testutil.NewFakeService()), "list", "--config", dir)

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if !strings.HasPrefix(stderr, "error: loading ") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		stderr string
	}{
		{
			name:   "invalid config",
			err:    fmt.Errorf("%w: remote url not set (NOTIFIER_URL)", config.ErrInvalid),
			code:   exitcode.ConfigError,
			stderr: "error: invalid configuration: remote url not set (NOTIFIER_URL)\n",
		},
		{
			name:   "unauthorized",
			err:    fmt.Errorf("%w (HTTP 401)", service.ErrUnauthorized),
			code:   exitcode.ConfigError,
			stderr: "error: auth error: " + service.ErrUnauthorized.Error() + " (HTTP 401)\n",
		},
		{
			name:   "backend",
			err:    errors.New("disk I/O error"),
			code:   exitcode.BackendError,
			stderr: "error: backend error: disk I/O error\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := run(t, failingFactory(tt.err), "list")
			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if stderr != tt.stderr {
				t.Errorf("expected %q, got %q", tt.stderr, stderr)
			}
		})
	}
}

func TestDispatcher_NilFactory(t *testing.T) {
	_, stderr, code := run(t, nil, "list")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if stderr != "error: no backend available for list\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestServiceFactory_RemoteNeedsURL(t *testing.T) {
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, err = cli.NewServiceFactory(io.Discard)(context.Background(), cfg)
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestServiceFactory_SQLiteEndToEnd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notifier")
	t.Setenv("NOTIFIER_BACKEND", config.BackendSQLite)
	factory := cli.NewServiceFactory(io.Discard)

	stdout, stderr, code := run(t, factory, "add", "--config", dir, "--due", "2023-06-05", "Buy milk")
	if code != exitcode.Success {
		t.Fatalf("add failed with %d: %s", code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("unexpected add output %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, config.DefaultDBFile)); err != nil {
		t.Errorf("expected database file: %v", err)
	}

	stdout, stderr, code = run(t, factory, "done", "--config", dir, "1")
	if code != exitcode.Success {
		t.Fatalf("done failed with %d: %s", code, stderr)
	}

	stdout, stderr, code = run(t, factory, "list", "--config", dir, "--completed")
	if code != exitcode.Success {
		t.Fatalf("list failed with %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "  c1  Buy milk (due 2023-06-05)\n") {
		t.Errorf("expected the completed entry, got:\n%s", stdout)
	}

	stdout, _, code = run(t, factory, "status", "--config", dir)
	if code != exitcode.Success {
		t.Fatalf("status failed with %d", code)
	}
	for _, want := range []string{"backend:   sqlite", "namespace: notifier", "pending:   0", "completed: 1"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("status missing %q:\n%s", want, stdout)
		}
	}
}
