package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"todo-list/internal/todos"
)

type call struct {
	op        string
	arg       string
	completed bool
}

// fakeAPI — сервер в памяти, записывающий все вызовы.
type fakeAPI struct {
	items   []todos.Todo
	calls   []call
	failOps map[string]error
}

func (f *fakeAPI) fail(op string) error {
	if f.failOps == nil {
		return nil
	}
	return f.failOps[op]
}

func (f *fakeAPI) List(ctx context.Context) ([]todos.Todo, error) {
	f.calls = append(f.calls, call{op: "list"})
	if err := f.fail("list"); err != nil {
		return nil, err
	}
	out := make([]todos.Todo, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeAPI) Create(ctx context.Context, text string) error {
	f.calls = append(f.calls, call{op: "create", arg: text})
	if err := f.fail("create"); err != nil {
		return err
	}
	f.items = append(f.items, todos.Todo{ID: primitive.NewObjectID(), Text: text})
	return nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.calls = append(f.calls, call{op: "delete", arg: id})
	if err := f.fail("delete"); err != nil {
		return err
	}
	for i := range f.items {
		if f.items[i].ID.Hex() == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) SetCompleted(ctx context.Context, id string, completed bool) error {
	f.calls = append(f.calls, call{op: "update", arg: id, completed: completed})
	if err := f.fail("update"); err != nil {
		return err
	}
	for i := range f.items {
		if f.items[i].ID.Hex() == id {
			f.items[i].Completed = completed
		}
	}
	return nil
}

func (f *fakeAPI) lastCall() call {
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

// run выполняет команды синхронно и скармливает сообщения модели,
// пока не закончатся команды. tea.BatchMsg раскрывается, тики спиннера
// отбрасываются: они спят между кадрами.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for i := 0; len(queue) > 0; i++ {
		if i > 20 {
			t.Fatalf("command chain did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg:
		default:
			updated, nextCmd := m.Update(msg)
			m = updated.(Model)
			queue = append(queue, nextCmd)
		}
	}
	return m
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return run(t, next.(Model), cmd)
}

func loaded(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	return run(t, New(api), fetchTodos(api))
}

func TestModel_InitialLoad(t *testing.T) {
	api := &fakeAPI{items: []todos.Todo{{ID: primitive.NewObjectID(), Text: "first"}}}
	m := New(api)

	if !m.loading {
		t.Fatalf("new model must start loading")
	}
	if !strings.Contains(m.View(), "Loading tasks...") {
		t.Fatalf("loading view expected, got %q", m.View())
	}

	m = run(t, m, fetchTodos(api))
	if m.loading || m.err != nil {
		t.Fatalf("unexpected state loading=%v err=%v", m.loading, m.err)
	}
	if len(m.todos) != 1 || !strings.Contains(m.View(), "first") {
		t.Fatalf("list not rendered: %q", m.View())
	}
}

func TestModel_LoadFailureShowsErrorOnly(t *testing.T) {
	api := &fakeAPI{
		items:   []todos.Todo{{ID: primitive.NewObjectID(), Text: "hidden"}},
		failOps: map[string]error{"list": errors.New("boom")},
	}
	m := loaded(t, api)

	if m.loading || m.err == nil {
		t.Fatalf("expected error state, got loading=%v err=%v", m.loading, m.err)
	}
	view := m.View()
	if !strings.Contains(view, "Error loading tasks: boom") || strings.Contains(view, "hidden") {
		t.Fatalf("error view must be exclusive: %q", view)
	}

	api.failOps = nil
	m = press(t, m, "r")
	if m.err != nil || len(m.todos) != 1 {
		t.Fatalf("retry did not recover: err=%v todos=%d", m.err, len(m.todos))
	}
}

func TestModel_EmptyState(t *testing.T) {
	m := loaded(t, &fakeAPI{})
	if !strings.Contains(m.View(), "No tasks yet. Add some!") {
		t.Fatalf("empty message expected: %q", m.View())
	}
}

func TestModel_AddTrimsClearsAndRefetches(t *testing.T) {
	api := &fakeAPI{}
	m := loaded(t, api)

	m = press(t, m, "a")
	if !m.adding {
		t.Fatalf("expected adding mode")
	}
	m.input.SetValue("  buy milk  ")
	m = press(t, m, "enter")

	if len(api.calls) < 2 || api.calls[len(api.calls)-2] != (call{op: "create", arg: "buy milk"}) {
		t.Fatalf("unexpected calls %#v", api.calls)
	}
	if api.lastCall().op != "list" {
		t.Fatalf("add must be followed by a full re-fetch, calls %#v", api.calls)
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", m.input.Value())
	}
	if len(m.todos) != 1 || m.todos[0].Text != "buy milk" {
		t.Fatalf("unexpected todos %#v", m.todos)
	}
}

func TestModel_AddIgnoresBlankInput(t *testing.T) {
	api := &fakeAPI{}
	m := loaded(t, api)
	before := len(api.calls)

	m = press(t, m, "a")
	m.input.SetValue("    ")
	m = press(t, m, "enter")

	if len(api.calls) != before {
		t.Fatalf("blank input must not reach the API, calls %#v", api.calls[before:])
	}
	if !m.adding {
		t.Fatalf("adding mode should stay active")
	}
}

func TestModel_AddFailureKeepsStaleList(t *testing.T) {
	api := &fakeAPI{failOps: map[string]error{"create": errors.New("HTTP error! status: 400")}}
	m := loaded(t, api)

	m = press(t, m, "a")
	m.input.SetValue("x")
	m = press(t, m, "enter")

	if m.err == nil {
		t.Fatalf("expected error state")
	}
	if api.lastCall().op != "create" {
		t.Fatalf("list must not be re-fetched after failure, calls %#v", api.calls)
	}
	if m.input.Value() != "x" {
		t.Fatalf("input must be kept on failure, got %q", m.input.Value())
	}
	if m.adding || m.input.Focused() {
		t.Fatalf("add mode must be closed after failure")
	}
}

func TestModel_AddFailureThenRetryAndQuit(t *testing.T) {
	api := &fakeAPI{failOps: map[string]error{"create": errors.New("HTTP error! status: 400")}}
	m := loaded(t, api)

	m = press(t, m, "a")
	m.input.SetValue("x")
	m = press(t, m, "enter")
	before := len(api.calls)

	m = press(t, m, "r")
	if len(api.calls) != before+1 || api.lastCall().op != "list" {
		t.Fatalf("r must re-fetch the list, calls %#v", api.calls[before:])
	}
	if m.err != nil {
		t.Fatalf("error not cleared after retry: %v", m.err)
	}
	if m.input.Value() != "x" {
		t.Fatalf("keys leaked into the input: %q", m.input.Value())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("q must quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q must quit")
	}
}

func TestModel_SpinnerTicksOnlyWhileLoading(t *testing.T) {
	api := &fakeAPI{}
	m := New(api)

	if _, cmd := m.Update(m.spinner.Tick()); cmd == nil {
		t.Fatalf("spinner must keep ticking while loading")
	}

	m = run(t, m, fetchTodos(api))
	if _, cmd := m.Update(m.spinner.Tick()); cmd != nil {
		t.Fatalf("idle model must drop spinner ticks")
	}
}

func TestModel_ToggleSendsNegatedValue(t *testing.T) {
	id := primitive.NewObjectID()
	api := &fakeAPI{items: []todos.Todo{{ID: id, Text: "walk", Completed: false}}}
	m := loaded(t, api)

	m = press(t, m, " ")
	var update call
	for _, c := range api.calls {
		if c.op == "update" {
			update = c
		}
	}
	if update.arg != id.Hex() || !update.completed {
		t.Fatalf("expected update(%s, true), got %#v", id.Hex(), update)
	}
	if !m.todos[0].Completed {
		t.Fatalf("re-fetched list should show completed todo")
	}

	m = press(t, m, "x")
	if api.lastCall().op != "list" || m.todos[0].Completed {
		t.Fatalf("second toggle should un-complete, todos %#v", m.todos)
	}
}

func TestModel_ToggleUnknownIDIsNoop(t *testing.T) {
	api := &fakeAPI{}
	m := loaded(t, api)
	before := len(api.calls)

	next, cmd := m.toggle(primitive.NewObjectID().Hex())
	if cmd != nil {
		t.Fatalf("toggle of unknown id must not issue a request")
	}
	_ = next
	if len(api.calls) != before {
		t.Fatalf("unexpected calls %#v", api.calls[before:])
	}
}

func TestModel_DeleteSelected(t *testing.T) {
	first, second := primitive.NewObjectID(), primitive.NewObjectID()
	api := &fakeAPI{items: []todos.Todo{{ID: first, Text: "one"}, {ID: second, Text: "two"}}}
	m := loaded(t, api)

	m = press(t, m, "j")
	m = press(t, m, "d")

	if len(m.todos) != 1 || m.todos[0].ID != first {
		t.Fatalf("wrong todo deleted: %#v", m.todos)
	}
	if m.cursor != 0 {
		t.Fatalf("cursor not clamped: %d", m.cursor)
	}
}

func TestModel_DeleteFailureShowsError(t *testing.T) {
	api := &fakeAPI{
		items:   []todos.Todo{{ID: primitive.NewObjectID(), Text: "stuck"}},
		failOps: map[string]error{"delete": errors.New("HTTP error! status: 400")},
	}
	m := loaded(t, api)

	m = press(t, m, "d")
	if m.err == nil || !strings.Contains(m.View(), "HTTP error! status: 400") {
		t.Fatalf("expected error view, got %q", m.View())
	}
}

func TestModel_CompletedRendersChecked(t *testing.T) {
	api := &fakeAPI{items: []todos.Todo{{ID: primitive.NewObjectID(), Text: "done", Completed: true}}}
	m := loaded(t, api)

	if !strings.Contains(m.View(), boxChecked) {
		t.Fatalf("completed todo should render checked box: %q", m.View())
	}
}
