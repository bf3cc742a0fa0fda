package commands

import (
	"context"
	"flag"
	"io"

	"notifier/internal/board"
	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// optionalString is a string flag that remembers whether it was given,
// so --due "" can clear a field.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optionalString
	description optionalString
	due         optionalString
}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return nil }
func (c *EditCmd) Synopsis() string   { return "Change an entry" }
func (c *EditCmd) NeedsService() bool { return true }
func (c *EditCmd) Usage() string {
	return "notifier edit [--title <text>] [--description <text>] [--due <YYYY-MM-DD>] <ref>"
}

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description, c.due = optionalString{}, optionalString{}, optionalString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := checkFlagOrder(args, "entry reference", "title", "description", "d", "due"); err != nil {
		return fail(errOut, err)
	}
	patch := board.Patch{
		Title:       c.title.ptr(),
		Description: c.description.ptr(),
		DueDate:     c.due.ptr(),
	}
	if patch.IsEmpty() {
		return fail(errOut, board.ErrEmptyPatch)
	}
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

	if _, err := b.Edit(ctx, e.Key, patch); err != nil {
		return fail(errOut, err)
	}
	printOK(cfg, out)
	return exitcode.Success
}
