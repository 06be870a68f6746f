package todos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service — слой бизнес-логики над Store.
//
// Состояния в памяти нет: каждый вызов идёт в хранилище, контекст протекает
// по цепочке handler -> service -> store.
type Service struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени (нужно тестам).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService создаёт сервис поверх хранилища.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTodos возвращает все задачи; пустой срез, если задач нет.
func (s *Service) ListTodos(ctx context.Context) ([]Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	todos, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []Todo{}
	}
	return todos, nil
}

// CreateTodo обрезает пробелы, валидирует и сохраняет новую задачу.
// Пустой после обрезки text -> ErrValidation, в хранилище ничего не пишется.
func (s *Service) CreateTodo(ctx context.Context, text string) (Todo, error) {
	if err := ctx.Err(); err != nil {
		return Todo{}, err
	}

	ts := s.timestamp()
	created := Todo{
		ID:        primitive.NewObjectID(),
		Text:      strings.TrimSpace(text),
		Completed: false,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.validate.Struct(created); err != nil {
		return Todo{}, fmt.Errorf("%w: text is required", ErrValidation)
	}

	if err := s.store.Insert(ctx, created); err != nil {
		return Todo{}, err
	}
	return created, nil
}

// GetTodo возвращает задачу по строковому id.
func (s *Service) GetTodo(ctx context.Context, rawID string) (Todo, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return Todo{}, err
	}
	if err := ctx.Err(); err != nil {
		return Todo{}, err
	}
	return s.store.FindByID(ctx, id)
}

// DeleteTodo удаляет задачу. Отсутствующая задача -> ErrNotFound.
func (s *Service) DeleteTodo(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteByID(ctx, id)
}

// SetCompleted загружает задачу, выставляет completed, обновляет updatedAt и сохраняет.
// Меняются только completed и updatedAt.
func (s *Service) SetCompleted(ctx context.Context, rawID string, completed bool) (Todo, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return Todo{}, err
	}
	if err := ctx.Err(); err != nil {
		return Todo{}, err
	}

	todo, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Todo{}, err
	}

	todo.Completed = completed
	ts := s.timestamp()
	if !ts.After(todo.UpdatedAt) {
		// updatedAt не должен идти назад даже при грубых часах.
		ts = todo.UpdatedAt.Add(time.Millisecond)
	}
	todo.UpdatedAt = ts

	if err := s.store.Save(ctx, todo); err != nil {
		return Todo{}, err
	}
	return todo, nil
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// timestamp — текущее время в UTC с точностью до миллисекунд (как хранит MongoDB).
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// ParseID разбирает hex-представление ObjectID.
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}
