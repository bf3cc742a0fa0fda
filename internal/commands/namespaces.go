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
	Register(&NamespacesCmd{})
}

// NamespacesCmd implements the namespaces command.
type NamespacesCmd struct{}

func (c *NamespacesCmd) Name() string       { return "namespaces" }
func (c *NamespacesCmd) Aliases() []string  { return []string{"ns"} }
func (c *NamespacesCmd) Synopsis() string   { return "Print the namespaces of the store" }
func (c *NamespacesCmd) Usage() string      { return "notifier namespaces" }
func (c *NamespacesCmd) NeedsService() bool { return true }

func (c *NamespacesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *NamespacesCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	lister, ok := svc.(service.NamespaceLister)
	if !ok {
		fmt.Fprintln(errOut, "error: backend cannot list namespaces")
		return exitcode.UserError
	}

	names, err := lister.ListNamespaces(ctx)
	if err != nil {
		return fail(errOut, err)
	}

	// The active namespace is marked even before its first entry exists.
	active := cfg.Namespace()
	if d, ok := svc.(describer); ok {
		active = d.Namespace()
	}
	for _, name := range names {
		marker := " "
		if name == active {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, name)
	}
	return exitcode.Success
}
