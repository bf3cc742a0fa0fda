package commands

import (
	"context"
	"flag"
	"io"

	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&ReviveCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark an entry completed" }
func (c *DoneCmd) Usage() string      { return "notifier done <ref>" }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runToggle(ctx, cfg, svc, args, true, out, errOut)
}

// ReviveCmd moves a completed entry back to pending.
type ReviveCmd struct{}

func (c *ReviveCmd) Name() string       { return "revive" }
func (c *ReviveCmd) Aliases() []string  { return []string{"undo"} }
func (c *ReviveCmd) Synopsis() string   { return "Mark an entry pending again" }
func (c *ReviveCmd) Usage() string      { return "notifier revive <ref>" }
func (c *ReviveCmd) NeedsService() bool { return true }

func (c *ReviveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ReviveCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runToggle(ctx, cfg, svc, args, false, out, errOut)
}

// runToggle is the shared implementation for done and revive.
func runToggle(ctx context.Context, cfg *config.Config, svc service.Service, args []string, complete bool, out, errOut io.Writer) int {
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

	var err error
	if complete {
		err = b.Complete(ctx, e.Key)
	} else {
		err = b.Revive(ctx, e.Key)
	}
	if err != nil {
		return fail(errOut, err)
	}
	printOK(cfg, out)
	return exitcode.Success
}
