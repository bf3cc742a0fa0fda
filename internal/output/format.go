// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"notifier/internal/service"
)

const (
	// Separator is the separator line for sections.
	Separator = "------------"

	// DateLayout renders the dashboard date line, e.g. "Fri Jun 02 2023".
	DateLayout = "Mon Jan 02 2006"

	// ClockLayout renders the dashboard time line, e.g. "3:04:05 PM".
	ClockLayout = "3:04:05 PM"

	// TimestampLayout renders created and last-updated times.
	TimestampLayout = "2006-01-02 15:04"
)

// FormatDate returns the dashboard date line.
func FormatDate(t time.Time) string {
	return "Today is " + t.Format(DateLayout)
}

// FormatClock returns the dashboard time line.
func FormatClock(t time.Time) string {
	return "Now is " + t.Format(ClockLayout)
}

// PendingRef is the reference of the nth pending entry.
func PendingRef(n int) string {
	return strconv.Itoa(n)
}

// CompletedRef is the reference of the nth completed entry.
func CompletedRef(n int) string {
	return "c" + strconv.Itoa(n)
}

// FormatEntry formats an entry line.
// Format: "{REF:>4}  {TITLE}[ (due YYYY-MM-DD)]\n"
func FormatEntry(w io.Writer, ref string, e service.Entry) {
	fmt.Fprintf(w, "%4s  %s%s\n", ref, DisplayTitle(e.Value.Title), dueSuffix(e.Value.DueDate))
}

// FormatSectionHeader formats a section header with its entry count.
func FormatSectionHeader(w io.Writer, title string, count int) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintf(w, "%s (%d)\n", title, count)
	fmt.Fprintln(w, Separator)
}

// FormatPageFooter prints "page N/M" when there is more than one page.
func FormatPageFooter(w io.Writer, number, total int) {
	if total <= 1 {
		return
	}
	fmt.Fprintf(w, "page %d/%d\n", number, total)
}

// FormatDetail prints every field of an entry. Times are shown in loc.
func FormatDetail(w io.Writer, e service.Entry, loc *time.Location) {
	item := e.Value
	fmt.Fprintf(w, "Title:        %s\n", DisplayTitle(item.Title))
	if desc := strings.TrimSpace(item.Description); desc != "" {
		lines := strings.Split(strings.ReplaceAll(desc, "\r\n", "\n"), "\n")
		fmt.Fprintf(w, "Description:  %s\n", lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(w, "              %s\n", line)
		}
	}
	fmt.Fprintf(w, "Status:       %s\n", e.Status())
	if item.DueDate != "" {
		fmt.Fprintf(w, "Due:          %s\n", item.DueDate)
	}
	fmt.Fprintf(w, "Created:      %s\n", formatTimestamp(item.Created, loc))
	fmt.Fprintf(w, "Last updated: %s\n", formatTimestamp(item.LastUpdated, loc))
	fmt.Fprintf(w, "Key:          %s\n", e.Key)
}

// DisplayTitle normalizes an entry title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func DisplayTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func dueSuffix(due string) string {
	if due == "" {
		return ""
	}
	return " (due " + due + ")"
}

func formatTimestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(TimestampLayout)
}
