package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"notifier/internal/board"
	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	completed bool
	page      int
	perPage   int
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List pending or completed entries" }
func (c *ListCmd) Usage() string      { return "notifier list [--completed] [--page <n>] [--per-page <n>]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.completed, "completed", false, "")
	fs.IntVar(&c.page, "page", 1, "")
	fs.IntVar(&c.perPage, "per-page", 0, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	perPage, err := pageOptions(cfg, c.page, c.perPage)
	if err != nil {
		return fail(errOut, err)
	}

	b, code := loadBoard(ctx, cfg, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	if c.completed {
		p := board.Paginate(b.Completed(), c.page, perPage)
		printCompletedPage(out, p)
		if p.TotalItems == 0 && !cfg.Quiet {
			fmt.Fprintln(out, "no completed entries")
		}
		return exitcode.Success
	}

	p := board.Paginate(b.Pending(), c.page, perPage)
	printPendingPage(out, p)
	if p.TotalItems == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no pending entries")
	}
	return exitcode.Success
}
