// Package tui — терминальный клиент списка задач на Bubble Tea.
//
// Model держит всё состояние экрана: список, флаг загрузки, ошибку и поле ввода.
// После любой успешной мутации список перезапрашивается целиком.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todo-list/internal/todos"
)

// API — то, что экрану нужно от сервера. *client.Client ему удовлетворяет.
type API interface {
	List(ctx context.Context) ([]todos.Todo, error)
	Create(ctx context.Context, text string) error
	Delete(ctx context.Context, id string) error
	SetCompleted(ctx context.Context, id string, completed bool) error
}

type (
	todosLoadedMsg struct{ todos []todos.Todo }
	loadFailedMsg  struct{ err error }
	addedMsg       struct{}
	mutatedMsg     struct{}
	mutateFailMsg  struct{ err error }
)

// Model — view-model единственного экрана.
type Model struct {
	api API

	todos   []todos.Todo
	loading bool
	err     error

	cursor int
	adding bool
	input  textinput.Model

	spinner spinner.Model
	keys    keyMap
	help    help.Model
}

// New создаёт модель в состоянии загрузки; Init запускает первый запрос списка.
func New(api API) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Add a new task..."
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		api:     api,
		loading: true,
		input:   ti,
		spinner: sp,
		keys:    defaultKeys(),
		help:    help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchTodos(m.api))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		// Вне загрузки спиннер не виден: тик гасим, чтобы не перерисовывать экран впустую.
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case todosLoadedMsg:
		m.todos = msg.todos
		m.loading = false
		m.err = nil
		m.clampCursor()
		return m, nil

	case loadFailedMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case addedMsg:
		m.input.SetValue("")
		return m.refetch()

	case mutatedMsg:
		return m.refetch()

	case mutateFailMsg:
		// Список не перезапрашиваем: он остаётся устаревшим до следующего fetch.
		// Режим ввода закрываем, иначе r/q уйдут в скрытое поле.
		m.err = msg.err
		m.adding = false
		m.input.Blur()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.adding {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.adding {
		switch {
		case key.Matches(msg, m.keys.Submit):
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			return m, addTodo(m.api, text)
		case key.Matches(msg, m.keys.Cancel):
			m.adding = false
			m.input.SetValue("")
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}
	if m.err != nil {
		if key.Matches(msg, m.keys.Refresh) {
			return m.refetch()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.input.SetValue("")
		// Мигание курсора не запускаем: статичный курсор виден и так.
		m.input.Focus()
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		if id, ok := m.selectedID(); ok {
			return m.toggle(id)
		}
	case key.Matches(msg, m.keys.Delete):
		if id, ok := m.selectedID(); ok {
			return m, deleteTodo(m.api, id)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m.refetch()
	}
	return m, nil
}

// toggle отправляет инвертированное значение completed.
// Если задачи нет в локальном списке — ничего не делает.
func (m Model) toggle(id string) (tea.Model, tea.Cmd) {
	for _, t := range m.todos {
		if t.ID.Hex() == id {
			return m, setCompleted(m.api, id, !t.Completed)
		}
	}
	return m, nil
}

func (m Model) refetch() (tea.Model, tea.Cmd) {
	m.loading = true
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, fetchTodos(m.api))
}

func (m Model) selectedID() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.todos) {
		return "", false
	}
	return m.todos[m.cursor].ID.Hex(), true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.todos) {
		m.cursor = len(m.todos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	if m.loading {
		return panelStyle.Render(m.spinner.View() + " Loading tasks...")
	}
	if m.err != nil {
		return panelStyle.Render(errorStyle.Render("Error loading tasks: "+m.err.Error()) +
			"\n" + mutedStyle.Render("r retry • q quit"))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("My To-Do List"))
	done, pending := stats(m.todos)
	fmt.Fprintf(&b, "   %s %d  %s %d\n\n",
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
	)

	if len(m.todos) == 0 {
		b.WriteString(mutedStyle.Render("No tasks yet. Add some!"))
		b.WriteString("\n")
	}
	for i, t := range m.todos {
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render(">") + " "
		}
		box, text := mutedStyle.Render(boxUnchecked), t.Text
		if t.Completed {
			box, text = successStyle.Render(boxChecked), doneStyle.Render(t.Text)
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, box, text)
	}

	if m.adding {
		b.WriteString("\n" + panelStyle.Render("Add new task\n"+m.input.View()) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return panelStyle.Render(b.String())
}

func stats(items []todos.Todo) (done, pending int) {
	for _, t := range items {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

func fetchTodos(api API) tea.Cmd {
	return func() tea.Msg {
		items, err := api.List(context.Background())
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return todosLoadedMsg{todos: items}
	}
}

func addTodo(api API, text string) tea.Cmd {
	return func() tea.Msg {
		if err := api.Create(context.Background(), text); err != nil {
			return mutateFailMsg{err: err}
		}
		return addedMsg{}
	}
}

func deleteTodo(api API, id string) tea.Cmd {
	return func() tea.Msg {
		if err := api.Delete(context.Background(), id); err != nil {
			return mutateFailMsg{err: err}
		}
		return mutatedMsg{}
	}
}

func setCompleted(api API, id string, completed bool) tea.Cmd {
	return func() tea.Msg {
		if err := api.SetCompleted(context.Background(), id, completed); err != nil {
			return mutateFailMsg{err: err}
		}
		return mutatedMsg{}
	}
}
