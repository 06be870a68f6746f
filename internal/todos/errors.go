package todos

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation — некорректные данные задачи (например, пустой text).
	ErrValidation = errors.New("validation failed")
	// ErrNotFound — id корректный, но такой записи в хранилище нет.
	ErrNotFound = errors.New("todo not found")
	// ErrInvalidID — строка не похожа на ObjectID.
	ErrInvalidID = errors.New("invalid todo id")
)

// StoreError оборачивает сбой хранилища: нет соединения, ошибка запроса и т.п.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
