// Handler — HTTP-слой модуля задач.
package todos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appMiddleware "todo-list/internal/middleware" // алиас, чтобы не путать с chi/middleware

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Ответы совпадают с тем, что отдавал исходный сервер, чтобы старые клиенты работали.
const (
	msgAdded   = "Todo added!"
	msgDeleted = "Todo deleted."
	msgUpdated = "Todo updated!"
)

// Handler — HTTP слой модуля задач.
//
// Здесь лежит всё, что относится к HTTP:
// роуты, парсинг JSON, коды ответов, middleware.
// Бизнес-логика живёт в Service: handler -> service -> store.
type Handler struct {
	svc      *Service
	validate *validator.Validate
	timeout  time.Duration
}

// NewHandler создаёт Handler. timeout — таймаут на каждый запрос к /api/todos (0 — без таймаута).
func NewHandler(svc *Service, timeout time.Duration) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		timeout:  timeout,
	}
}

// Router собирает HTTP-роутер для задач.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.hello)
	r.Get("/healthz", h.healthz)

	r.Route("/api/todos", func(r chi.Router) {
		r.Use(appMiddleware.JSONHeaderMiddleware)
		r.Use(appMiddleware.RequestTimeoutMiddleware(h.timeout))

		r.Get("/", h.listTodos)
		r.Post("/add", h.createTodo)
		r.Put("/update/{id}", h.updateTodo)
		r.Get("/{id}", h.getTodo)
		r.Delete("/{id}", h.deleteTodo)
	})
	return r
}

// hello — корневой маршрут, оставлен для совместимости с исходным сервером.
func (h *Handler) hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello from the backend!"))
}

// healthz проверяет доступность хранилища.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := h.svc.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode("Error: " + err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode("ok")
}

// listTodos обрабатывает GET /api/todos
func (h *Handler) listTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.svc.ListTodos(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// createTodo обрабатывает POST /api/todos/add
func (h *Handler) createTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "Error: invalid JSON")
		return
	}

	if _, err := h.svc.CreateTodo(r.Context(), req.Text); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgAdded)
}

// getTodo обрабатывает GET /api/todos/{id}
func (h *Handler) getTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := h.svc.GetTodo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// deleteTodo обрабатывает DELETE /api/todos/{id}
func (h *Handler) deleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTodo(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgDeleted)
}

// updateTodo обрабатывает PUT /api/todos/update/{id}
//
// Меняет только completed; text после создания неизменяем.
func (h *Handler) updateTodo(w http.ResponseWriter, r *http.Request) {
	var req UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "Error: invalid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, "Error: completed is required")
		return
	}

	if _, err := h.svc.SetCompleted(r.Context(), chi.URLParam(r, "id"), *req.Completed); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgUpdated)
}

// writeError отображает ошибки сервиса в HTTP-статусы:
// ErrNotFound -> 404, отмена/таймаут -> см. handleContextError, всё остальное -> 400.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if h.handleContextError(w, err) {
		return
	}
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Todo not found"})
		return
	}
	writeJSON(w, http.StatusBadRequest, "Error: "+err.Error())
}

// handleContextError обрабатывает отмену/таймаут запроса.
func (h *Handler) handleContextError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, context.Canceled):
		// Клиент ушёл или сервер делает graceful shutdown: отвечать уже некому.
		return true
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusRequestTimeout, "Error: request timeout") // 408
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
