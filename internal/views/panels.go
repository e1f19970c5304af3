package views

import (
	"fmt"
	"strings"
)

type AgendaRowData struct {
	ID       string
	Time     string
	Kind     string
	Repeat   string
	Title    string
	Done     bool
	Selected bool
}

type TasksPanelData struct {
	Day          string
	Rows         []AgendaRowData
	QuickAddView string
	Adding       bool
}

type CalendarPanelData struct {
	FocusDate string
	TableView string
	Selected  *AgendaRowData
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tasks for %s:\n", data.Day)
	if data.Adding {
		b.WriteString(data.QuickAddView + "\n")
	}
	if len(data.Rows) == 0 {
		b.WriteString("(nothing scheduled)\n")
	}
	for _, row := range data.Rows {
		b.WriteString(renderAgendaRow(row) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderCalendarPanel(data CalendarPanelData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "calendar | focus: %s\n", data.FocusDate)
	b.WriteString(data.TableView + "\n")
	if data.Selected != nil {
		b.WriteString("\nselected:\n")
		fmt.Fprintf(&b, "id: %s\n", data.Selected.ID)
		fmt.Fprintf(&b, "kind: %s\n", data.Selected.Kind)
		if data.Selected.Repeat != "" && data.Selected.Repeat != "NONE" {
			fmt.Fprintf(&b, "repeats: %s\n", data.Selected.Repeat)
		}
		if data.Selected.Time != "" {
			fmt.Fprintf(&b, "at: %s\n", data.Selected.Time)
		}
	}
	return strings.TrimSpace(b.String())
}

func renderAgendaRow(row AgendaRowData) string {
	cursor := " "
	if row.Selected {
		cursor = ">"
	}
	box := "[ ]"
	if row.Done {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %s", box, row.Title)
	if row.Time != "" {
		line += " @" + row.Time
	}
	if row.Repeat != "" && row.Repeat != "NONE" {
		line += " (" + strings.ToLower(row.Repeat) + ")"
	}
	if row.Done {
		line = doneStyle.Render(line)
	}
	return cursor + " " + line
}

const helpMarkdown = `# Keys

| Key | Action |
| --- | --- |
| 1 / 2 | tasks / calendar view |
| a | quick add (enter saves, esc cancels) |
| j / k | move selection |
| x | toggle done for the shown day |
| D | delete selected task |
| h / l | previous / next day (calendar) |
| t | jump to today |
| ? | toggle this help |
| q | quit |

Quick add understands extra tokens after the title:
` + "`@2026-03-01`" + ` date, ` + "`@09:30`" + ` time,
` + "`+daily` `+weekly` `+monthly`" + ` repeat, ` + "`!note` `!remind`" + ` kind.
`

func RenderHelpPanel() string {
	return RenderMarkdown(helpMarkdown)
}

func RenderNotification(title, body, at string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("%s | %s (%s)", title, body, at)
}
