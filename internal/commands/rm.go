package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/output"
	"notifier/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	force bool
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete an entry" }
func (c *RmCmd) Usage() string      { return "notifier rm [--force] <ref>" }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
	fs.BoolVar(&c.force, "f", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, code := parseRef(args, errOut)
	if code != exitcode.Success {
		return code
	}
	b, code := loadBoard(ctx, cfg, svc, errOut)
	if code != exitcode.Success {
		return code
	}
	e, code := resolve(b, ref, errOut)
	if code != exitcode.Success {
		return code
	}

	if !c.force {
		fmt.Fprintf(errOut, "error: would delete %q (use --force)\n", output.DisplayTitle(e.Value.Title))
		return exitcode.UserError
	}

	if err := b.Delete(ctx, e.Key); err != nil {
		return fail(errOut, err)
	}
	printOK(cfg, out)
	return exitcode.Success
}
