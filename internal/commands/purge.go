package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/service"
)

func init() {
	Register(&PurgeCmd{})
}

// PurgeCmd deletes every completed entry.
type PurgeCmd struct {
	force bool
}

func (c *PurgeCmd) Name() string       { return "purge" }
func (c *PurgeCmd) Aliases() []string  { return nil }
func (c *PurgeCmd) Synopsis() string   { return "Delete all completed entries" }
func (c *PurgeCmd) Usage() string      { return "notifier purge [--force]" }
func (c *PurgeCmd) NeedsService() bool { return true }

func (c *PurgeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
	fs.BoolVar(&c.force, "f", false, "")
}

func (c *PurgeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	b, code := loadBoard(ctx, cfg, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	n := len(b.Completed())
	if n == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no completed entries")
		}
		return exitcode.Success
	}
	if !c.force {
		fmt.Fprintf(errOut, "error: would delete %d completed entries (use --force)\n", n)
		return exitcode.UserError
	}

	deleted, err := b.PurgeCompleted(ctx)
	if !cfg.Quiet {
		fmt.Fprintf(out, "deleted %d\n", deleted)
	}
	if err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
