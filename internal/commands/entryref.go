package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"notifier/internal/board"
	"notifier/internal/service"
)

// Section selects which list a numeric reference counts in.
type Section int

const (
	// SectionPending numbers pending entries: "3" or "p3".
	SectionPending Section = iota
	// SectionCompleted numbers completed entries: "c3".
	SectionCompleted
	// SectionKey addresses an entry by key or key prefix.
	SectionKey
)

// minKeyPrefix is the shortest accepted key prefix.
const minKeyPrefix = 4

// EntryRef represents a parsed entry reference.
type EntryRef struct {
	Section Section
	Num     int    // 1-based position, for the numbered sections
	Key     string // key or key prefix, for SectionKey
}

func (r EntryRef) String() string {
	switch r.Section {
	case SectionCompleted:
		return "c" + strconv.Itoa(r.Num)
	case SectionKey:
		return r.Key
	default:
		return strconv.Itoa(r.Num)
	}
}

var (
	// ErrEntryRefRequired indicates no entry reference was provided.
	ErrEntryRefRequired = errors.New("entry reference required")

	// ErrInvalidRef indicates an argument that is not an entry reference.
	ErrInvalidRef = errors.New("invalid entry reference")

	// ErrOutOfRange indicates a numeric reference past the end of its list.
	ErrOutOfRange = errors.New("entry number out of range")

	// ErrUnknownEntry indicates no entry matches a key reference.
	ErrUnknownEntry = errors.New("entry not found")
)

// ParseEntryRef parses an entry reference from args.
//
// Parsing rules:
// 1. All digits → nth pending entry
// 2. p<digits> or c<digits> → nth pending or completed entry
// 3. p or c followed by a digits arg → separated form (c 3)
// 4. p or c with no second arg → error: entry reference required
// 5. At least four letters, digits, dashes or underscores → key or key prefix
// 6. Otherwise → error: invalid entry reference: <ref>
func ParseEntryRef(args []string) (EntryRef, error) {
	if len(args) == 0 {
		return EntryRef{}, ErrEntryRefRequired
	}

	first := args[0]

	if isAllDigits(first) {
		num, err := strconv.Atoi(first)
		if err != nil {
			return EntryRef{}, fmt.Errorf("%w: %s", ErrInvalidRef, first)
		}
		return EntryRef{Section: SectionPending, Num: num}, nil
	}

	if section, ok := sectionLetter(first); ok {
		if len(first) > 1 && isAllDigits(first[1:]) {
			num, err := strconv.Atoi(first[1:])
			if err != nil {
				return EntryRef{}, fmt.Errorf("%w: %s", ErrInvalidRef, first)
			}
			return EntryRef{Section: section, Num: num}, nil
		}

		if len(first) == 1 {
			if len(args) < 2 {
				return EntryRef{}, ErrEntryRefRequired
			}
			if isAllDigits(args[1]) {
				num, err := strconv.Atoi(args[1])
				if err != nil {
					return EntryRef{}, fmt.Errorf("%w: %s", ErrInvalidRef, args[1])
				}
				return EntryRef{Section: section, Num: num}, nil
			}
			return EntryRef{}, fmt.Errorf("%w: %s", ErrInvalidRef, first)
		}
	}

	if isKeyLike(first) {
		return EntryRef{Section: SectionKey, Key: first}, nil
	}

	return EntryRef{}, fmt.Errorf("%w: %s", ErrInvalidRef, first)
}

// ResolveEntry finds the entry ref points at in the board's snapshot.
func ResolveEntry(b *board.Board, ref EntryRef) (service.Entry, error) {
	switch ref.Section {
	case SectionKey:
		e, err := b.FindPrefix(ref.Key)
		if errors.Is(err, service.ErrNotFound) {
			return service.Entry{}, fmt.Errorf("%w: %s", ErrUnknownEntry, ref.Key)
		}
		return e, err
	case SectionCompleted:
		return nth(b.Completed(), ref)
	default:
		return nth(b.Pending(), ref)
	}
}

func nth(entries []service.Entry, ref EntryRef) (service.Entry, error) {
	if ref.Num < 1 || ref.Num > len(entries) {
		return service.Entry{}, fmt.Errorf("%w: %s", ErrOutOfRange, ref)
	}
	return entries[ref.Num-1], nil
}

func sectionLetter(s string) (Section, bool) {
	if s == "" {
		return 0, false
	}
	switch s[0] {
	case 'p', 'P':
		return SectionPending, true
	case 'c', 'C':
		return SectionCompleted, true
	}
	return 0, false
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isKeyLike(s string) bool {
	if len(s) < minKeyPrefix {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
