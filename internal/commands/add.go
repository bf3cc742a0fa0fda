package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"notifier/internal/board"
	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	due         string
	done        bool
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create an entry" }
func (c *AddCmd) NeedsService() bool { return true }
func (c *AddCmd) Usage() string {
	return "notifier add [--description <text>] [--due <YYYY-MM-DD>] [--done] <title...>"
}

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.BoolVar(&c.done, "done", false, "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := checkFlagOrder(args, "title", "description", "d", "due", "done"); err != nil {
		return fail(errOut, err)
	}
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return fail(errOut, board.ErrTitleRequired)
	}
	if !service.ValidDueDate(strings.TrimSpace(c.due)) {
		return fail(errOut, board.ErrInvalidDueDate)
	}

	b, code := loadBoard(ctx, cfg, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	_, err := b.Add(ctx, board.Draft{
		Title:       title,
		Description: c.description,
		DueDate:     c.due,
		Completed:   c.done,
	})
	if err != nil {
		return fail(errOut, err)
	}

	printOK(cfg, out)
	return exitcode.Success
}
