package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/service"
	"notifier/internal/transfer"
)

func init() {
	Register(&ImportCmd{})
	Register(&ExportCmd{})
}

// ImportCmd loads entries from an export document.
type ImportCmd struct {
	replace bool
	stdin   io.Reader
}

// SetStdin sets the reader used for "-" (for testing).
func (c *ImportCmd) SetStdin(r io.Reader) {
	c.stdin = r
}

func (c *ImportCmd) Name() string       { return "import" }
func (c *ImportCmd) Aliases() []string  { return nil }
func (c *ImportCmd) Synopsis() string   { return "Import entries from JSON" }
func (c *ImportCmd) Usage() string      { return "notifier import [--replace] <file|->" }
func (c *ImportCmd) NeedsService() bool { return true }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.replace, "replace", false, "")
}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: input file required (use - for stdin)")
		return exitcode.UserError
	}

	entries, err := c.read(args[0])
	if err != nil {
		var invalid *transfer.InvalidError
		if errors.As(err, &invalid) {
			for _, p := range invalid.Problems {
				fmt.Fprintf(errOut, "error: %s: %s\n", args[0], p)
			}
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	b, code := loadBoard(ctx, cfg, svc, errOut)
	if code != exitcode.Success {
		return code
	}

	res, err := b.Import(ctx, entries, c.replace)
	if !cfg.Quiet {
		fmt.Fprintf(out, "created %d, updated %d, skipped %d\n", res.Created, res.Updated, res.Skipped)
	}
	if err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}

func (c *ImportCmd) read(name string) ([]service.Entry, error) {
	if name == "-" {
		in := c.stdin
		if in == nil {
			in = os.Stdin
		}
		return transfer.Decode(in)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return transfer.Decode(f)
}

// ExportCmd writes every entry as JSON to stdout.
type ExportCmd struct{}

func (c *ExportCmd) Name() string       { return "export" }
func (c *ExportCmd) Aliases() []string  { return nil }
func (c *ExportCmd) Synopsis() string   { return "Export entries as JSON" }
func (c *ExportCmd) Usage() string      { return "notifier export" }
func (c *ExportCmd) NeedsService() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	b, code := loadBoard(ctx, cfg, svc, errOut)
	if code != exitcode.Success {
		return code
	}
	entries := append(b.Pending(), b.Completed()...)
	if err := transfer.Export(out, entries); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
