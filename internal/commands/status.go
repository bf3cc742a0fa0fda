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
	Register(&StatusCmd{})
}

// describer is implemented by backends that can name where they store data.
type describer interface {
	Endpoint() string
	Namespace() string
}

// StatusCmd fetches the namespace and reports where it lives.
type StatusCmd struct{}

func (c *StatusCmd) Name() string       { return "status" }
func (c *StatusCmd) Aliases() []string  { return nil }
func (c *StatusCmd) Synopsis() string   { return "Check the store connection" }
func (c *StatusCmd) Usage() string      { return "notifier status" }
func (c *StatusCmd) NeedsService() bool { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	b, code := loadBoard(ctx, cfg, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	fmt.Fprintf(out, "backend:   %s\n", cfg.Backend)
	if d, ok := svc.(describer); ok {
		fmt.Fprintf(out, "endpoint:  %s\n", d.Endpoint())
		fmt.Fprintf(out, "namespace: %s\n", d.Namespace())
	}
	fmt.Fprintf(out, "fetched:   %s\n", b.FetchedAt().In(cfg.Clock().Location()).Format(output.TimestampLayout))
	fmt.Fprintf(out, "pending:   %d\n", len(b.Pending()))
	fmt.Fprintf(out, "completed: %d\n", len(b.Completed()))
	return exitcode.Success
}
