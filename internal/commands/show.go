package commands

import (
	"context"
	"flag"
	"io"

	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/output"
	"notifier/internal/service"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints every field of one entry.
type ShowCmd struct{}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return nil }
func (c *ShowCmd) Synopsis() string   { return "Show entry details" }
func (c *ShowCmd) Usage() string      { return "notifier show <ref>" }
func (c *ShowCmd) NeedsService() bool { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
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
	// The detail view reads the entry again so it is never older than the
	// listing it was resolved from.
	fresh, err := svc.GetEntry(ctx, e.Key)
	if err != nil {
		return fail(errOut, err)
	}
	output.FormatDetail(out, fresh, cfg.Clock().Location())
	return exitcode.Success
}
