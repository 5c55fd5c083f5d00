package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/habitr/internal/stats"
	"github.com/sadopc/habitr/internal/store"
	"github.com/sadopc/habitr/internal/timer"
)

type dashboardModel struct {
	store   *store.Store
	ownerID string
	clock   func() time.Time
	timer   timerModel
	bar     progress.Model
	width   int
	height  int

	tasks []store.Task
	today stats.Today

	// Task picker state
	picking      bool
	pickerCursor int
}

func newDashboardModel(s *store.Store, ownerID string, idleTimeout time.Duration, clock func() time.Time) dashboardModel {
	return dashboardModel{
		store:   s,
		ownerID: ownerID,
		clock:   clock,
		timer:   newTimerModel(s, ownerID, idleTimeout),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.bar.Width = max(10, w-20)
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.elapsed(d.clock())
}

type dashboardDataMsg struct {
	tasks []store.Task
	today stats.Today
	err   error
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		now := d.clock()
		date := stats.DateOf(now)

		tasks, err := d.store.ListTasks(ctx, d.ownerID)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		records, err := d.store.ListRecords(ctx, d.ownerID, store.RecordFilter{From: date, To: date})
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		return dashboardDataMsg{tasks: tasks, today: stats.TodayGroups(records, now)}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.err != nil {
			return d, func() tea.Msg { return errStatus("Load error", msg.err) }
		}
		d.tasks = msg.tasks
		d.today = msg.today
		if d.pickerCursor >= len(d.tasks) {
			d.pickerCursor = max(0, len(d.tasks)-1)
		}
		return d, nil

	case tickMsg:
		wasIdle := d.timer.isIdle
		d.timer.tick(d.clock())
		if d.timer.isIdle && !wasIdle {
			return d, func() tea.Msg { return statusMsg{text: "Idle: timer paused"} }
		}
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity(d.clock())

		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, func() tea.Msg {
					return statusMsg{text: "A timer is already running. Press x to stop it first.", isError: true}
				}
			}
			if len(d.tasks) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No tasks yet. Press 2 to go to Tasks and create one.", isError: true}
				}
			}
			if len(d.tasks) == 1 {
				return d.startTimer(d.tasks[0])
			}
			d.picking = true
			return d, nil

		case key.Matches(msg, keys.Stop):
			return d.stopTimer()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle(d.clock())
			return d, nil
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.tasks)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		if d.pickerCursor < len(d.tasks) {
			return d.startTimer(d.tasks[d.pickerCursor])
		}
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startTimer(task store.Task) (dashboardModel, tea.Cmd) {
	d.timer.start(task, d.clock())
	return d, func() tea.Msg { return timerStartedMsg{task: task} }
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	if !d.timer.running() {
		return d, func() tea.Msg { return statusMsg{text: "No timer running"} }
	}
	rec, err := d.timer.stop(d.clock())
	if err != nil {
		return d, func() tea.Msg { return errStatus("Save failed, timer still running (x to retry)", err) }
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{record: rec, discarded: rec == nil} },
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4
	timerPanel := d.renderTimerPanel(contentWidth)
	todayPanel := d.renderTodayPanel(contentWidth)
	if d.picking {
		return lipgloss.JoinVertical(lipgloss.Left, timerPanel, d.renderTaskPicker(contentWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, todayPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if !d.timer.running() {
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(w-6).Render("00:00:00"),
			mutedStyle.Render("■  STOPPED"),
			mutedStyle.Render("Press s to start a task"),
		)
		return panelStyle.Width(w).Render(content)
	}

	now := d.clock()
	task := d.timer.task()
	timeStr := formatDuration(d.timer.elapsed(now))

	var timeDisplay, indicator string
	if d.timer.paused() {
		timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
		label := "PAUSED"
		if d.timer.isIdle {
			label = "IDLE"
		}
		indicator = warningStyle.Render(fmt.Sprintf("⏸  %s %s", label, timer.FormatDuration(d.timer.pausedFor(now))))
	} else {
		timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
		indicator = successStyle.Render("●  RUNNING")
	}

	taskLine := colorDot(task.Color) + " " + highlightStyle.Render(task.Name)
	target := mutedStyle.Render(fmt.Sprintf("%s of %s target",
		formatMinutes(int(d.timer.elapsed(now)/time.Minute)), formatMinutes(task.TargetMinutes)))

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		taskLine,
		d.bar.ViewAs(d.timer.progress(now)),
		target,
	)
	return activePanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	header := fmt.Sprintf("%s  %s", titleStyle.Render("Today"), highlightStyle.Render(formatMinutes(d.today.TotalMinutes)))

	if len(d.today.Groups) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No sessions today"),
		))
	}

	rows := []string{header}
	for _, g := range d.today.Groups {
		rows = append(rows, fmt.Sprintf("  %s %-20s %8s  (%d sessions)",
			colorDot(g.TaskColor), g.TaskName, formatMinutes(g.TotalMinutes), len(g.Sessions)))
		for _, s := range g.Sessions {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("      %s–%s  %s",
				s.StartTime.In(d.clock().Location()).Format("15:04"),
				s.EndTime.In(d.clock().Location()).Format("15:04"),
				formatMinutes(s.DurationMinutes))))
		}
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderTaskPicker(w int) string {
	rows := []string{titleStyle.Render("Select Task")}
	for i, t := range d.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, colorDot(t.Color), t.Name))+
			mutedStyle.Render(fmt.Sprintf("  target %s", formatMinutes(t.TargetMinutes))))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: start  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
