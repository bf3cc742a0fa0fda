package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"notifier/internal/board"
	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/logging"
	"notifier/internal/service"
	"notifier/internal/tui"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd runs the live terminal dashboard.
type WatchCmd struct {
	perPage int
}

func (c *WatchCmd) Name() string       { return "watch" }
func (c *WatchCmd) Aliases() []string  { return []string{"ui"} }
func (c *WatchCmd) Synopsis() string   { return "Live dashboard" }
func (c *WatchCmd) Usage() string      { return "notifier watch [--per-page <n>]" }
func (c *WatchCmd) NeedsService() bool { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.perPage, "per-page", 0, "")
}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	perPage, err := pageOptions(cfg, 1, c.perPage)
	if err != nil {
		return fail(errOut, err)
	}
	if !tui.IsTTY(out) {
		fmt.Fprintln(errOut, "error: watch requires a terminal")
		return exitcode.UserError
	}

	// The dashboard owns the screen; log only when debugging.
	logger := logging.Discard()
	if cfg.Debug {
		logger = logging.ForConfig(errOut, cfg)
	}
	b := board.New(svc, board.WithLogger(logger), board.WithClock(cfg.Clock))
	if err := b.Refresh(ctx); err != nil {
		return fail(errOut, err)
	}

	opts := []tui.Option{tui.WithClock(cfg.Clock), tui.WithPerPage(perPage)}
	err = tui.Run(ctx, b, opts, tea.WithOutput(out))
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
