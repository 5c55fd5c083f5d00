package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/habitr/internal/store"
)

const defaultTargetMinutes = 30

type tasksModel struct {
	store   *store.Store
	ownerID string
	width   int
	height  int

	tasks  []store.Task
	cursor int

	formActive bool
	form       *huh.Form
	editingID  string // empty when creating

	// Form field pointers (survive value copies)
	formName   *string
	formTarget *string
	formColor  *string
}

func newTasksModel(s *store.Store, ownerID string) tasksModel {
	name, target, color := "", strconv.Itoa(defaultTargetMinutes), string(store.DefaultColor)
	return tasksModel{
		store:      s,
		ownerID:    ownerID,
		formName:   &name,
		formTarget: &target,
		formColor:  &color,
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type tasksDataMsg struct {
	tasks []store.Task
	err   error
}

type taskSavedMsg struct {
	task    *store.Task
	created bool
}

type taskDeletedMsg struct {
	id string
}

func (t tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, err := t.store.ListTasks(context.Background(), t.ownerID)
		return tasksDataMsg{tasks: tasks, err: err}
	}
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		if msg.err != nil {
			return t, func() tea.Msg { return errStatus("Load error", msg.err) }
		}
		t.tasks = msg.tasks
		if t.cursor >= len(t.tasks) {
			t.cursor = max(0, len(t.tasks)-1)
		}
		return t, nil

	case taskSavedMsg:
		verb := "updated"
		if msg.created {
			verb = "created"
		}
		return t, tea.Batch(t.refresh(), func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Task %q %s", msg.task.Name, verb)}
		})

	case taskDeletedMsg:
		return t, tea.Batch(t.refresh(), func() tea.Msg { return statusMsg{text: "Task deleted"} })

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.tasks)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.New):
			return t.showForm(nil)
		case key.Matches(msg, keys.Enter):
			if len(t.tasks) > 0 {
				task := t.tasks[t.cursor]
				return t.showForm(&task)
			}
		case key.Matches(msg, keys.Delete):
			if len(t.tasks) > 0 {
				return t, t.deleteTask(t.tasks[t.cursor])
			}
		}
	}
	return t, nil
}

func (t tasksModel) deleteTask(task store.Task) tea.Cmd {
	return func() tea.Msg {
		if err := t.store.DeleteTask(context.Background(), t.ownerID, task.ID); err != nil {
			return errStatus("Delete error", err)
		}
		return taskDeletedMsg{id: task.ID}
	}
}

func colorOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(store.Colors))
	for i, c := range store.Colors {
		opts[i] = huh.NewOption(fmt.Sprintf("%s %s", colorDot(c), c), string(c))
	}
	return opts
}

func validateTarget(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("target must be a positive number of minutes")
	}
	return nil
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// showForm opens the task form, prefilled when editing.
func (t tasksModel) showForm(task *store.Task) (tasksModel, tea.Cmd) {
	*t.formName = ""
	*t.formTarget = strconv.Itoa(defaultTargetMinutes)
	*t.formColor = string(store.DefaultColor)
	t.editingID = ""
	if task != nil {
		*t.formName = task.Name
		*t.formTarget = strconv.Itoa(task.TargetMinutes)
		*t.formColor = string(task.Color)
		t.editingID = task.ID
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Name").Value(t.formName).Validate(validateName),
			huh.NewInput().Title("Daily Target (minutes)").Value(t.formTarget).Validate(validateTarget),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(t.formColor).Height(8),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		return t, t.save()
	}
	return t, cmd
}

func (t tasksModel) save() tea.Cmd {
	target, _ := strconv.Atoi(strings.TrimSpace(*t.formTarget))
	in := store.TaskInput{
		Name:          *t.formName,
		TargetMinutes: target,
		Color:         store.Color(*t.formColor),
	}
	id := t.editingID
	return func() tea.Msg {
		ctx := context.Background()
		if id == "" {
			task, err := t.store.CreateTask(ctx, t.ownerID, in)
			if err != nil {
				return errStatus("Save error", err)
			}
			return taskSavedMsg{task: task, created: true}
		}
		task, err := t.store.UpdateTask(ctx, t.ownerID, id, in)
		if err != nil {
			return errStatus("Save error", err)
		}
		return taskSavedMsg{task: task}
	}
}

func (t tasksModel) view() string {
	w := t.width - 4
	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Task")
		if t.editingID != "" {
			title = titleStyle.Render("Edit Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Tasks")
	if len(t.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-10s %-12s", "", "Name", "Target", "Color")))

	for i, task := range t.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %-10s %-12s",
			cursor, colorDot(task.Color), task.Name, formatMinutes(task.TargetMinutes), task.Color)))
	}

	rows = append(rows, "", mutedStyle.Render("  n: new  enter: edit  d: delete"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
