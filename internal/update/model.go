// Package update is the Bubble Tea state machine: it translates key
// presses into service calls and service results back into view state.
package update

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"

	"dailytask/internal/agenda"
	"dailytask/internal/model"
	"dailytask/internal/tasks"
	"dailytask/internal/timer"
)

type View string

const (
	ViewTasks    View = "Tasks"
	ViewCalendar View = "Calendar"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks    string
	Calendar string
	Add      string
	Toggle   string
	Delete   string
	Help     string
	Quit     string
}

type Model struct {
	CurrentView View
	FocusDay    time.Time
	Items       []agenda.Item
	Cursor      int
	Status      StatusBar
	HelpVisible bool
	Quitting    bool
	LastFiring  *timer.Firing
	Keys        GlobalKeyMap

	svc     *tasks.Service
	firings <-chan timer.Firing
	now     func() time.Time

	adding      bool
	quickAdd    textinput.Model
	agendaTable table.Model
}

type dayLoadedMsg struct {
	day   time.Time
	items []agenda.Item
}

type taskSavedMsg struct {
	title string
}

type mutationDoneMsg struct {
	note string
}

type errMsg struct {
	err error
}

type reminderFiredMsg struct {
	firing timer.Firing
}

func NewModel(svc *tasks.Service, firings <-chan timer.Firing) Model {
	m := Model{
		CurrentView: ViewTasks,
		svc:         svc,
		firings:     firings,
		now:         time.Now,
		Keys: GlobalKeyMap{
			Tasks:    "1",
			Calendar: "2",
			Add:      "a",
			Toggle:   "x",
			Delete:   "D",
			Help:     "?",
			Quit:     "q",
		},
	}
	m.FocusDay = model.NormalizeDay(m.now())

	m.quickAdd = textinput.New()
	m.quickAdd.Prompt = "add> "
	m.quickAdd.CharLimit = 256
	m.quickAdd.Width = 48

	cols := []table.Column{
		{Title: "Time", Width: 7},
		{Title: "Kind", Width: 10},
		{Title: "Repeat", Width: 9},
		{Title: "Title", Width: 28},
	}
	m.agendaTable = table.New(table.WithColumns(cols), table.WithRows(nil), table.WithFocused(true), table.WithHeight(10))
	return m
}

func (m *Model) syncComponents() {
	rows := make([]table.Row, 0, len(m.Items))
	for _, item := range m.Items {
		rows = append(rows, table.Row{
			clockLabel(item.Task.TimeOfDay),
			string(item.Task.Kind),
			string(item.Task.Repeat),
			item.Task.Title,
		})
	}
	m.agendaTable.SetRows(rows)
	if len(rows) > 0 && m.Cursor < len(rows) {
		m.agendaTable.SetCursor(m.Cursor)
	}
	if m.adding {
		m.quickAdd.Focus()
	}
}

func (m *Model) clampCursor() {
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor >= len(m.Items) && len(m.Items) > 0 {
		m.Cursor = len(m.Items) - 1
	}
	if len(m.Items) == 0 {
		m.Cursor = 0
	}
}

func (m Model) currentItem() (agenda.Item, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Items) {
		return agenda.Item{}, false
	}
	return m.Items[m.Cursor], true
}

func clockLabel(clock *time.Time) string {
	if clock == nil {
		return ""
	}
	return clock.Format("15:04")
}
