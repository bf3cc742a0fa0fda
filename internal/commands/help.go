package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/service"
)

func init() {
	Register(&HelpCmd{registry: DefaultRegistry})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "notifier help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText(c.registry))
	return exitcode.Success
}

func helpText(r *Registry) string {
	if r == nil {
		r = DefaultRegistry
	}
	var b strings.Builder
	b.WriteString("Usage:\n")
	fmt.Fprintf(&b, "  %-66s %s\n", "notifier", "Show today's overview")
	for _, cmd := range r.All() {
		line := cmd.Usage()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(&b, "  %-66s %s\n", line, cmd.Synopsis())
	}
	b.WriteString(commonHelp)
	return b.String()
}

const commonHelp = `
Entry references:
  3                Third pending entry
  c3               Third completed entry
  5f0c             Entry whose key starts with 5f0c

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Settings are read from config.toml in the config directory, then from
NOTIFIER_* environment variables.
`
