package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"notifier/internal/board"
	"notifier/internal/config"
	"notifier/internal/exitcode"
	"notifier/internal/logging"
	"notifier/internal/service"
)

// loadBoard builds a board over svc and fetches the namespace.
// On failure the error is reported on errOut and a non-zero code returned.
func loadBoard(ctx context.Context, cfg *config.Config, svc service.Service, errOut io.Writer) (*board.Board, int) {
	b := board.New(svc,
		board.WithLogger(logging.ForConfig(errOut, cfg)),
		board.WithClock(cfg.Clock),
	)
	if err := b.Refresh(ctx); err != nil {
		return nil, fail(errOut, err)
	}
	return b, exitcode.Success
}

// parseRef parses an entry reference from args, reporting failures.
func parseRef(args []string, errOut io.Writer) (EntryRef, int) {
	ref, err := ParseEntryRef(args)
	if err != nil {
		return EntryRef{}, fail(errOut, err)
	}
	return ref, exitcode.Success
}

// resolve looks ref up on b, reporting failures.
func resolve(b *board.Board, ref EntryRef, errOut io.Writer) (service.Entry, int) {
	e, err := ResolveEntry(b, ref)
	if err != nil {
		return service.Entry{}, fail(errOut, err)
	}
	return e, exitcode.Success
}

// fail prints err as an "error: ..." line and returns its exit code.
func fail(errOut io.Writer, err error) int {
	code := exitFor(err)
	switch {
	case code == exitcode.BackendError:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return code
}

var userErrors = []error{
	ErrEntryRefRequired,
	ErrOutOfRange,
	ErrUnknownEntry,
	ErrInvalidRef,
	errInvalidPage,
	errFlagAfterArgs,
	board.ErrTitleRequired,
	board.ErrInvalidDueDate,
	board.ErrEmptyPatch,
	board.ErrAlreadyCompleted,
	board.ErrNotCompleted,
	board.ErrAmbiguousKey,
}

func exitFor(err error) int {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitcode.UserError
		}
	}
	return exitcode.FromError(err)
}

var errInvalidPage = errors.New("invalid page")

// pageOptions validates --page and --per-page values.
func pageOptions(cfg *config.Config, page, perPage int) (int, error) {
	if page < 1 {
		return 0, fmt.Errorf("%w number: %d", errInvalidPage, page)
	}
	if perPage < 0 {
		return 0, fmt.Errorf("%w size: %d", errInvalidPage, perPage)
	}
	if perPage == 0 {
		perPage = cfg.PageSize()
	}
	return perPage, nil
}

func printOK(cfg *config.Config, out io.Writer) {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
}

var errFlagAfterArgs = errors.New("flag after arguments")

// dispatchFlags are registered on every command by the dispatcher.
var dispatchFlags = []string{"config", "quiet", "debug"}

// checkFlagOrder rejects args that spell one of the command's flags. Flag
// parsing stops at the first positional, so a flag written after it would
// otherwise be taken as text. what names the positional, e.g. "title".
func checkFlagOrder(args []string, what string, names ...string) error {
	for _, arg := range args {
		name, ok := strings.CutPrefix(arg, "-")
		if !ok {
			continue
		}
		name = strings.TrimPrefix(name, "-")
		name, _, _ = strings.Cut(name, "=")
		if slices.Contains(names, name) || slices.Contains(dispatchFlags, name) {
			return fmt.Errorf("%w: %s (put flags before the %s)", errFlagAfterArgs, arg, what)
		}
	}
	return nil
}
