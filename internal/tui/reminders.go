package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/habitr/internal/reminder"
	"github.com/sadopc/habitr/internal/store"
)

// remindersModel lists every task with its reminder, if any.
type remindersModel struct {
	store   *store.Store
	ownerID string
	clock   func() time.Time
	width   int
	height  int

	tasks     []store.Task
	reminders map[string]store.Reminder // by task ID
	cursor    int

	formActive bool
	form       *huh.Form
	editingID  string

	// Form values as pointers (survive value copies)
	formTime   *string
	formRepeat *string
}

func newRemindersModel(s *store.Store, ownerID string, clock func() time.Time) remindersModel {
	t, r := reminder.Default.Time, string(reminder.Default.Repeat)
	return remindersModel{
		store:      s,
		ownerID:    ownerID,
		clock:      clock,
		reminders:  map[string]store.Reminder{},
		formTime:   &t,
		formRepeat: &r,
	}
}

func (r *remindersModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type remindersDataMsg struct {
	tasks     []store.Task
	reminders []store.Reminder
	err       error
}

func (r remindersModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		tasks, err := r.store.ListTasks(ctx, r.ownerID)
		if err != nil {
			return remindersDataMsg{err: err}
		}
		rems, err := r.store.ListReminders(ctx, r.ownerID)
		return remindersDataMsg{tasks: tasks, reminders: rems, err: err}
	}
}

func (r remindersModel) update(msg tea.Msg) (remindersModel, tea.Cmd) {
	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case remindersDataMsg:
		if msg.err != nil {
			return r, func() tea.Msg { return errStatus("Load error", msg.err) }
		}
		r.tasks = msg.tasks
		r.reminders = make(map[string]store.Reminder, len(msg.reminders))
		for _, rem := range msg.reminders {
			r.reminders[rem.TaskID] = rem
		}
		if r.cursor >= len(r.tasks) {
			r.cursor = max(0, len(r.tasks)-1)
		}
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Down):
			if r.cursor < len(r.tasks)-1 {
				r.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if len(r.tasks) > 0 {
				return r, tea.Sequence(r.toggle(r.tasks[r.cursor]), r.refresh())
			}
		case key.Matches(msg, keys.Enter):
			if len(r.tasks) == 0 {
				return r, nil
			}
			rem, ok := r.reminders[r.tasks[r.cursor].ID]
			if !ok {
				return r, func() tea.Msg { return statusMsg{text: "No reminder for this task. Press t to add one."} }
			}
			return r.showForm(rem)
		}
	}
	return r, nil
}

// toggle removes the task's reminder or creates one at the configured
// default time.
func (r remindersModel) toggle(task store.Task) tea.Cmd {
	_, exists := r.reminders[task.ID]
	return func() tea.Msg {
		ctx := context.Background()
		if exists {
			if _, err := r.store.DeleteRemindersByTask(ctx, r.ownerID, task.ID); err != nil {
				return errStatus("Reminder error", err)
			}
			return statusMsg{text: "Reminder removed for " + task.Name}
		}

		at, err := r.store.GetSetting(ctx, store.SettingReminderDefaultTime)
		if err != nil {
			at = reminder.Default.Time
		}
		rem, err := r.store.CreateReminder(ctx, r.ownerID, store.ReminderInput{
			TaskID: task.ID,
			Time:   at,
			Repeat: reminder.Default.Repeat,
		})
		if err != nil {
			return errStatus("Reminder error", err)
		}
		return statusMsg{text: fmt.Sprintf("Reminder set for %s at %s", task.Name, reminder.Describe(*rem))}
	}
}

func validateClock(s string) error {
	_, _, err := reminder.ParseClock(s)
	return err
}

func (r remindersModel) showForm(rem store.Reminder) (remindersModel, tea.Cmd) {
	*r.formTime = rem.Time
	*r.formRepeat = string(rem.Repeat)
	r.editingID = rem.ID

	opts := make([]huh.Option[string], len(reminder.Repeats))
	for i, rp := range reminder.Repeats {
		opts[i] = huh.NewOption(string(rp), string(rp))
	}

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Time (HH:MM)").Value(r.formTime).Validate(validateClock),
			huh.NewSelect[string]().Title("Repeat").Options(opts...).Value(r.formRepeat),
		).Title(rem.TaskName),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r remindersModel) updateForm(msg tea.Msg) (remindersModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		return r, tea.Sequence(r.saveSchedule(), r.refresh())
	}
	return r, cmd
}

func (r remindersModel) saveSchedule() tea.Cmd {
	clock, id := *r.formTime, r.editingID
	repeat, err := reminder.ParseRepeat(*r.formRepeat)
	return func() tea.Msg {
		if err != nil {
			return errStatus("Reminder error", err)
		}
		up := store.ReminderUpdate{Time: clock, Repeat: repeat}
		if _, err := r.store.UpdateReminder(context.Background(), r.ownerID, id, up); err != nil {
			return errStatus("Reminder error", err)
		}
		return statusMsg{text: "Reminder updated"}
	}
}

func (r remindersModel) view() string {
	w := r.width - 4

	if r.formActive && r.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Edit Reminder"), "", r.form.View()),
		)
	}

	title := titleStyle.Render("Reminders")
	if len(r.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No tasks yet. Press 2 to go to Tasks and create one."),
		))
	}

	now := r.clock()
	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-18s %s", "", "Task", "Schedule", "Next")))
	for i, task := range r.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		schedule, next := "off", ""
		if rem, ok := r.reminders[task.ID]; ok {
			schedule = reminder.Describe(rem)
			if at := reminder.Next(rem, now); !at.IsZero() {
				next = at.Format("Mon Jan 02 15:04")
			}
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %-18s", cursor, colorDot(task.Color), task.Name, schedule))+
			mutedStyle.Render(next))
	}

	rows = append(rows, "", mutedStyle.Render("  t: toggle reminder  enter: edit schedule"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
