package tui

import (
	"fmt"
	"strings"

	"notifier/internal/output"
	"notifier/internal/service"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(output.FormatDate(m.clock)) + "\n")
	b.WriteString(output.FormatClock(m.clock) + "\n\n")

	if due := m.board.DueToday(m.clock); len(due) > 0 {
		titles := make([]string, len(due))
		for i, e := range due {
			titles[i] = output.DisplayTitle(e.Value.Title)
		}
		b.WriteString(dueStyle.Render("Due today: "+strings.Join(titles, ", ")) + "\n\n")
	}

	m.writePane(&b, panePending, "Pending")
	b.WriteString("\n")
	m.writePane(&b, paneCompleted, "Completed")

	switch m.mode {
	case modeAdd, modeEdit:
		label := "Add entry"
		if m.mode == modeEdit {
			label = "Edit entry"
		}
		b.WriteString("\n" + inputBarStyle.Render(label+"\n"+m.input.View()) + "\n")
	case modeConfirmDelete:
		prompt := fmt.Sprintf("Delete %q? (y/n)", output.DisplayTitle(m.target.Value.Title))
		b.WriteString("\n" + errorStyle.Render(prompt) + "\n")
	}

	if m.status != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}

	b.WriteString("\n" + m.helpLine() + "\n")
	return b.String()
}

func (m *Model) writePane(b *strings.Builder, p pane, title string) {
	pg := m.pageOf(p)
	header := fmt.Sprintf("%s (%d)", title, pg.TotalItems)
	if p == m.pane {
		b.WriteString(activeStyle.Render(header) + "\n")
	} else {
		b.WriteString(titleStyle.Render(header) + "\n")
	}

	if len(pg.Items) == 0 {
		b.WriteString(mutedStyle.Render("  nothing here") + "\n")
	}
	for i, e := range pg.Items {
		ref := output.PendingRef(pg.Offset + i + 1)
		if p == paneCompleted {
			ref = output.CompletedRef(pg.Offset + i + 1)
		}
		prefix := "  "
		if p == m.pane && i == m.cursor[p] {
			prefix = selectedStyle.Render("> ")
		}
		b.WriteString(prefix + fmt.Sprintf("%4s  ", ref) + renderTitle(e) + "\n")
	}
	if pg.TotalPages > 1 {
		prev, next := "  ", ""
		if pg.HasPrev() {
			prev = "‹ "
		}
		if pg.HasNext() {
			next = " ›"
		}
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %spage %d/%d%s", prev, pg.Number, pg.TotalPages, next)) + "\n")
	}
}

func renderTitle(e service.Entry) string {
	title := output.DisplayTitle(e.Value.Title)
	if e.Value.Completed {
		title = doneStyle.Render(title)
	}
	if e.Value.DueDate != "" {
		title += " " + dueStyle.Render("(due "+e.Value.DueDate+")")
	}
	return title
}

func (m *Model) helpLine() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, k := range m.keys.help() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return mutedStyle.Render(strings.Join(parts, " • "))
}
