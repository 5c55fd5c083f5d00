package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/habitr/internal/export"
	"github.com/sadopc/habitr/internal/reminder"
	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
	"github.com/sadopc/habitr/internal/timer"
)

// Options configures the interactive app.
type Options struct {
	OwnerID     string
	IdleTimeout time.Duration
	Location    *time.Location
	Logger      *zap.Logger
	// ExportDir receives exported files; defaults to the home directory.
	ExportDir string
	Now       func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	store   *store.Store
	ownerID string
	logger  *zap.Logger
	clock   func() time.Time
	width   int
	height  int

	exportDir string

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	tasks     tasksModel
	reports   reportsModel
	reminders remindersModel

	// lastReminderCheck is the minute ("2006-01-02 15:04") last checked for due reminders.
	lastReminderCheck string

	help   help.Model
	status string
	isErr  bool
}

func NewApp(s *store.Store, opts Options) App {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	clock := func() time.Time { return now().In(loc) }
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	idle := opts.IdleTimeout
	if idle == 0 {
		idle = defaultIdleTimeout
	}

	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		ownerID:    opts.OwnerID,
		logger:     logger,
		clock:      clock,
		exportDir:  opts.ExportDir,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(s, opts.OwnerID, idle, clock),
		tasks:      newTasksModel(s, opts.OwnerID),
		reports:    newReportsModel(s, opts.OwnerID, clock),
		reminders:  newRemindersModel(s, opts.OwnerID, clock),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.reminders.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child view capturing input (form or picker) sees keys first.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewTasks)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewReports)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewReminders)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

		// Timer keys work from every view. Starting may open the task
		// picker, which lives on the dashboard.
		if key.Matches(msg, keys.Start, keys.Stop, keys.Pause) && a.activeView != viewDashboard {
			if key.Matches(msg, keys.Start) {
				a.activeView = viewDashboard
			}
			var cmd tea.Cmd
			a.dashboard, cmd = a.dashboard.update(msg)
			return a, cmd
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if minute := a.clock().Format("2006-01-02 15:04"); minute != a.lastReminderCheck {
			a.lastReminderCheck = minute
			cmds = append(cmds, a.checkReminders(minute))
		}
		return a, tea.Batch(cmds...)

	case dashboardDataMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd

	case taskSavedMsg, taskDeletedMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, tea.Batch(cmd, a.dashboard.loadData())

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		if msg.isError {
			a.logger.Warn("tui error", zap.String("status", msg.text))
		}
		return a, nil

	case timerStartedMsg:
		a.setStatus("Started " + msg.task.Name)
		return a, nil

	case timerStoppedMsg:
		if msg.discarded {
			a.setStatus("Session under 1 minute discarded")
		} else {
			a.setStatus(fmt.Sprintf("Saved %s on %s", formatMinutes(msg.record.DurationMinutes), msg.record.TaskName))
			a.logger.Info("record saved",
				zap.String("task", msg.record.TaskName),
				zap.Int("minutes", msg.record.DurationMinutes),
			)
		}
		return a, a.refreshCurrentView()

	case remindersDueMsg:
		if len(msg.reminders) == 0 {
			return a, nil
		}
		names := make([]string, len(msg.reminders))
		for i, r := range msg.reminders {
			names[i] = r.TaskName
		}
		a.setStatus("⏰ Reminder: " + strings.Join(names, ", "))
		a.logger.Info("reminders due", zap.String("minute", msg.minute), zap.Strings("tasks", names))
		return a, ringBell

	case exportDoneMsg:
		a.setStatus("Exported to " + msg.path)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string) {
	a.status = text
	a.isErr = false
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

// quit saves a running session before exiting.
func (a App) quit() (tea.Model, tea.Cmd) {
	if a.dashboard.isRunning() {
		now := a.clock()
		task := a.dashboard.timer.task()
		rec, err := a.dashboard.timer.stop(now)
		switch {
		case err != nil:
			a.logger.Error("session lost on quit",
				zap.Error(err),
				zap.String("task", task.Name),
				zap.Time("started", a.dashboard.timer.session.StartedAt()),
				zap.Duration("elapsed", a.dashboard.timer.elapsed(now)),
			)
		case rec != nil:
			a.logger.Info("record saved on quit", zap.String("task", rec.TaskName), zap.Int("minutes", rec.DurationMinutes))
		}
	}
	return a, tea.Quit
}

// ringBell writes BEL to stderr; the renderer owns stdout.
func ringBell() tea.Msg {
	_, _ = os.Stderr.WriteString("\a")
	return nil
}

func (a App) checkReminders(minute string) tea.Cmd {
	return func() tea.Msg {
		rems, err := a.store.ListReminders(context.Background(), a.ownerID)
		if err != nil {
			return errStatus("Reminder error", err)
		}
		return remindersDueMsg{minute: minute, reminders: reminder.Due(rems, a.clock())}
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewReminders:
		a.reminders, cmd = a.reminders.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.picking
	case viewTasks:
		return a.tasks.formActive
	case viewReminders:
		return a.reminders.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewTasks:
		return a.tasks.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewReminders:
		return a.reminders.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewTasks:
		content = a.tasks.view()
	case viewReports:
		content = a.reports.view()
	case viewReminders:
		content = a.reminders.view()
	}

	contentHeight := a.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("habitr")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.isErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	timerInfo := ""
	if a.dashboard.isRunning() {
		elapsed := a.dashboard.elapsed()
		timerInfo = successStyle.Render(" ● " + timer.FormatDuration(elapsed))
		if a.dashboard.isPaused() {
			timerInfo = warningStyle.Render(" ⏸ " + timer.FormatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	return func() tea.Msg {
		records, err := a.store.ListRecords(context.Background(), a.ownerID, store.RecordFilter{})
		if err != nil {
			return errStatus("Export error", err)
		}

		dir := a.exportDir
		if dir == "" {
			if dir, err = os.UserHomeDir(); err != nil {
				return errStatus("Export error", err)
			}
		}
		path := filepath.Join(dir, fmt.Sprintf("habitr-export-%s%s", stats.DateOf(a.clock()), f.Ext()))
		if err := export.ToFile(f, records, path); err != nil {
			return errStatus(strings.ToUpper(string(f))+" error", err)
		}
		return exportDoneMsg{path: path}
	}
}
