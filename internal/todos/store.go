package todos

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store — контракт документного хранилища.
//
// Реализации: MongoStore (основная), SQLStore (SQLite через gorm) и FileStore (JSON-файл).
// Отсутствующий id -> ErrNotFound, любой другой сбой -> *StoreError.
type Store interface {
	// FindAll возвращает все задачи в естественном порядке (порядке вставки).
	FindAll(ctx context.Context) ([]Todo, error)
	Insert(ctx context.Context, t Todo) error
	FindByID(ctx context.Context, id primitive.ObjectID) (Todo, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	// Save перезаписывает документ целиком по t.ID.
	Save(ctx context.Context, t Todo) error
	Ping(ctx context.Context) error
}
