package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dailytask/internal/agenda"
	"dailytask/internal/model"
	"dailytask/internal/timer"
	"dailytask/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadDayCmd(m.FocusDay), waitForFiringCmd(m.firings))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.adding {
			return m.handleQuickAddKey(typed)
		}
		return m.handleKey(typed)

	case dayLoadedMsg:
		m.FocusDay = typed.day
		m.Items = typed.items
		m.clampCursor()
		return m, nil

	case taskSavedMsg:
		m.Status = StatusBar{Text: fmt.Sprintf("added: %s", typed.title)}
		return m, m.loadDayCmd(m.FocusDay)

	case mutationDoneMsg:
		m.Status = StatusBar{Text: typed.note}
		return m, m.loadDayCmd(m.FocusDay)

	case errMsg:
		m.Status = StatusBar{Text: typed.err.Error(), IsError: true}
		return m, nil

	case reminderFiredMsg:
		firing := typed.firing
		m.LastFiring = &firing
		m.Status = StatusBar{Text: fmt.Sprintf("reminder due: %s", firing.Payload.Title)}
		return m, tea.Batch(m.loadDayCmd(m.FocusDay), waitForFiringCmd(m.firings))
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Tasks:
		m.CurrentView = ViewTasks
		return m, m.loadDayCmd(model.NormalizeDay(m.now()))
	case m.Keys.Calendar:
		m.CurrentView = ViewCalendar
		return m, nil
	case m.Keys.Add:
		m.adding = true
		m.quickAdd.SetValue("")
		m.quickAdd.Focus()
		return m, nil
	case "j", "down":
		m.Cursor++
		m.clampCursor()
		return m, nil
	case "k", "up":
		m.Cursor--
		m.clampCursor()
		return m, nil
	case m.Keys.Toggle, " ":
		if item, ok := m.currentItem(); ok {
			return m, m.toggleCmd(item)
		}
		return m, nil
	case m.Keys.Delete:
		if item, ok := m.currentItem(); ok {
			return m, m.deleteCmd(item.Task.ID, item.Task.Title)
		}
		return m, nil
	case "h", "left":
		if m.CurrentView == ViewCalendar {
			return m, m.loadDayCmd(m.FocusDay.AddDate(0, 0, -1))
		}
		return m, nil
	case "l", "right":
		if m.CurrentView == ViewCalendar {
			return m, m.loadDayCmd(m.FocusDay.AddDate(0, 0, 1))
		}
		return m, nil
	case "t":
		return m, m.loadDayCmd(model.NormalizeDay(m.now()))
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.quickAdd.Blur()
		return m, nil
	case "enter":
		raw := m.quickAdd.Value()
		m.adding = false
		m.quickAdd.Blur()
		return m, m.quickAddCmd(raw)
	}
	var cmd tea.Cmd
	m.quickAdd, cmd = m.quickAdd.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	m.syncComponents()

	status := m.Status.Text
	if m.Status.IsError {
		status = "error: " + status
	}

	mainPane := ""
	switch m.CurrentView {
	case ViewCalendar:
		mainPane = views.RenderCalendarPanel(views.CalendarPanelData{
			FocusDate: m.FocusDay.Format("2006-01-02"),
			TableView: m.agendaTable.View(),
			Selected:  m.selectedRowData(),
		})
	default:
		mainPane = views.RenderTasksPanel(views.TasksPanelData{
			Day:          m.FocusDay.Format("Mon 2006-01-02"),
			Rows:         m.rowData(),
			QuickAddView: m.quickAdd.View(),
			Adding:       m.adding,
		})
	}

	sidePane := ""
	if m.HelpVisible {
		sidePane = views.RenderHelpPanel()
	}

	notification := ""
	if m.LastFiring != nil {
		notification = views.RenderNotification(
			"Reminder",
			m.LastFiring.Payload.Title,
			m.LastFiring.TriggerAt.Format("15:04:05"),
		)
	}

	return views.RenderApp(views.AppData{
		Header:        fmt.Sprintf("dailytask | view: %s", m.CurrentView),
		MainPane:      mainPane,
		SidePane:      sidePane,
		StatusLine:    status,
		StatusIsError: m.Status.IsError,
		Notification:  notification,
		Footer: fmt.Sprintf("keys: %s tasks | %s calendar | %s add | %s done | %s delete | %s help | %s quit",
			m.Keys.Tasks, m.Keys.Calendar, m.Keys.Add, m.Keys.Toggle, m.Keys.Delete, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) rowData() []views.AgendaRowData {
	rows := make([]views.AgendaRowData, 0, len(m.Items))
	for i, item := range m.Items {
		rows = append(rows, views.AgendaRowData{
			ID:       item.Task.ID,
			Time:     clockLabel(item.Task.TimeOfDay),
			Kind:     string(item.Task.Kind),
			Repeat:   string(item.Task.Repeat),
			Title:    item.Task.Title,
			Done:     item.Completed,
			Selected: i == m.Cursor,
		})
	}
	return rows
}

func (m Model) selectedRowData() *views.AgendaRowData {
	item, ok := m.currentItem()
	if !ok {
		return nil
	}
	return &views.AgendaRowData{
		ID:     item.Task.ID,
		Time:   clockLabel(item.Task.TimeOfDay),
		Kind:   string(item.Task.Kind),
		Repeat: string(item.Task.Repeat),
		Title:  item.Task.Title,
		Done:   item.Completed,
	}
}

func (m Model) loadDayCmd(day time.Time) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		items, err := svc.DayView(context.Background(), day)
		if err != nil {
			return errMsg{err: err}
		}
		return dayLoadedMsg{day: day, items: items}
	}
}

func (m Model) quickAddCmd(raw string) tea.Cmd {
	svc := m.svc
	now := m.now()
	return func() tea.Msg {
		in, err := parseQuickAdd(raw, now)
		if err != nil {
			return errMsg{err: err}
		}
		task, err := svc.Create(context.Background(), in)
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{title: task.Title}
	}
}

func (m Model) toggleCmd(item agenda.Item) tea.Cmd {
	svc := m.svc
	day := m.FocusDay
	return func() tea.Msg {
		if err := svc.ToggleCompletion(context.Background(), item.Task.ID, day, !item.Completed); err != nil {
			return errMsg{err: err}
		}
		if item.Completed {
			return mutationDoneMsg{note: fmt.Sprintf("reopened: %s", item.Task.Title)}
		}
		return mutationDoneMsg{note: fmt.Sprintf("done: %s", item.Task.Title)}
	}
}

func (m Model) deleteCmd(taskID, title string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.Delete(context.Background(), taskID); err != nil {
			return errMsg{err: err}
		}
		return mutationDoneMsg{note: fmt.Sprintf("deleted: %s", title)}
	}
}

func waitForFiringCmd(ch <-chan timer.Firing) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		firing, ok := <-ch
		if !ok {
			return nil
		}
		return reminderFiredMsg{firing: firing}
	}
}
