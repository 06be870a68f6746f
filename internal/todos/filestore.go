package todos

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileStore хранит задачи в одном JSON-файле.
//
// Каждая операция перечитывает файл целиком, поэтому в памяти процесса
// авторитетной копии нет. RWMutex защищает файл от параллельной записи.
type FileStore struct {
	mu       sync.RWMutex
	filename string
}

// NewFileStore создаёт файловое хранилище задач.
func NewFileStore(filename string) *FileStore {
	return &FileStore{filename: filename}
}

// FindAll читает файл и возвращает задачи в порядке записи.
func (fs *FileStore) FindAll(ctx context.Context) ([]Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	todos, err := fs.load()
	if err != nil {
		return nil, storeErr("find", err)
	}
	return todos, nil
}

// Insert дописывает задачу в конец массива.
func (fs *FileStore) Insert(ctx context.Context, t Todo) error {
	return fs.update(ctx, "insert", func(todos []Todo) ([]Todo, error) {
		return append(todos, t), nil
	})
}

// FindByID ищет задачу по id; нет такой -> ErrNotFound.
func (fs *FileStore) FindByID(ctx context.Context, id primitive.ObjectID) (Todo, error) {
	todos, err := fs.FindAll(ctx)
	if err != nil {
		return Todo{}, err
	}
	for _, t := range todos {
		if t.ID == id {
			return t, nil
		}
	}
	return Todo{}, ErrNotFound
}

// DeleteByID удаляет задачу из файла.
func (fs *FileStore) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	return fs.update(ctx, "delete", func(todos []Todo) ([]Todo, error) {
		idx := indexOf(todos, id)
		if idx == -1 {
			return nil, ErrNotFound
		}
		out := make([]Todo, 0, len(todos)-1)
		out = append(out, todos[:idx]...)
		return append(out, todos[idx+1:]...), nil
	})
}

// Save заменяет существующую задачу на месте.
func (fs *FileStore) Save(ctx context.Context, t Todo) error {
	return fs.update(ctx, "save", func(todos []Todo) ([]Todo, error) {
		idx := indexOf(todos, t.ID)
		if idx == -1 {
			return nil, ErrNotFound
		}
		todos[idx] = t
		return todos, nil
	})
}

// Ping проверяет, что каталог с файлом доступен.
func (fs *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Dir(fs.filename)); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// update выполняет read-modify-write под эксклюзивной блокировкой.
// Ошибка из fn (например, ErrNotFound) возвращается как есть.
func (fs *FileStore) update(ctx context.Context, op string, fn func([]Todo) ([]Todo, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	todos, err := fs.load()
	if err != nil {
		return storeErr(op, err)
	}
	next, err := fn(todos)
	if err != nil {
		return err
	}

	// Перед записью на диск ещё раз проверяем ctx: отменённый запрос ничего не меняет.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fs.write(next); err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (fs *FileStore) load() ([]Todo, error) {
	data, err := os.ReadFile(fs.filename)
	if err != nil {
		if os.IsNotExist(err) {
			// Файла нет — нормальная ситуация для первого запуска.
			return []Todo{}, nil
		}
		return nil, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return []Todo{}, nil
	}

	var todos []Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// write пишет во временный файл и переименовывает его, чтобы не оставить
// наполовину записанный JSON при падении.
func (fs *FileStore) write(todos []Todo) error {
	data, err := json.MarshalIndent(todos, "", "   ")
	if err != nil {
		return err
	}

	tmp := fs.filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, fs.filename)
}

func indexOf(todos []Todo, id primitive.ObjectID) int {
	for i := range todos {
		if todos[i].ID == id {
			return i
		}
	}
	return -1
}
