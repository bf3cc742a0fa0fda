package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"notifier/internal/board"
	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/output"
	"notifier/internal/service"
)

func init() {
	Register(&DashboardCmd{})
}

// DashboardCmd implements the dashboard command.
// Handles both `notifier` (no args) and `notifier dashboard`.
type DashboardCmd struct {
	page          int
	completedPage int
	perPage       int
}

func (c *DashboardCmd) Name() string       { return "dashboard" }
func (c *DashboardCmd) Aliases() []string  { return nil }
func (c *DashboardCmd) Synopsis() string   { return "Show today's overview" }
func (c *DashboardCmd) NeedsService() bool { return true }
func (c *DashboardCmd) Usage() string {
	return "notifier dashboard [--page <n>] [--completed-page <n>] [--per-page <n>]"
}

func (c *DashboardCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 1, "")
	fs.IntVar(&c.completedPage, "completed-page", 1, "")
	fs.IntVar(&c.perPage, "per-page", 0, "")
}

func (c *DashboardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	perPage, err := pageOptions(cfg, c.page, c.perPage)
	if err == nil {
		_, err = pageOptions(cfg, c.completedPage, c.perPage)
	}
	if err != nil {
		return fail(errOut, err)
	}

	b, code := loadBoard(ctx, cfg, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	dash := b.Dashboard(cfg.Clock(), c.page, c.completedPage, perPage)

	fmt.Fprintln(out, output.FormatDate(dash.Now))
	fmt.Fprintln(out, output.FormatClock(dash.Now))

	if len(dash.DueToday) > 0 {
		refs := pendingRefs(b)
		output.FormatSectionHeader(out, "Due today", len(dash.DueToday))
		for _, e := range dash.DueToday {
			output.FormatEntry(out, output.PendingRef(refs[e.Key]), e)
		}
	}

	printPendingPage(out, dash.Pending)
	printCompletedPage(out, dash.Completed)
	return exitcode.Success
}

func printPendingPage(out io.Writer, p board.Page[service.Entry]) {
	output.FormatSectionHeader(out, "Pending", p.TotalItems)
	for i, e := range p.Items {
		output.FormatEntry(out, output.PendingRef(p.Offset+i+1), e)
	}
	output.FormatPageFooter(out, p.Number, p.TotalPages)
}

func printCompletedPage(out io.Writer, p board.Page[service.Entry]) {
	output.FormatSectionHeader(out, "Completed", p.TotalItems)
	for i, e := range p.Items {
		output.FormatEntry(out, output.CompletedRef(p.Offset+i+1), e)
	}
	output.FormatPageFooter(out, p.Number, p.TotalPages)
}

// pendingRefs maps each pending key to its 1-based reference number.
func pendingRefs(b *board.Board) map[string]int {
	pending := b.Pending()
	refs := make(map[string]int, len(pending))
	for i, e := range pending {
		refs[e.Key] = i + 1
	}
	return refs
}
