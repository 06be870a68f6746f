package todos

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Todo — модель задачи.
//
// Одна и та же структура уходит в MongoDB (bson), в JSON-файл и в API (json).
// Имена JSON-полей совпадают с тем, что отдавал сервер на mongoose: _id, createdAt, updatedAt.
type Todo struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Text      string             `bson:"text" json:"text" validate:"required"`
	Completed bool               `bson:"completed" json:"completed"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateTodoRequest описывает контракт входящего JSON для POST /api/todos/add.
//
// Обрезка пробелов и проверка required делаются в Service, чтобы валидация
// записи жила в одном месте.
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest — тело PUT /api/todos/update/{id}.
// Указатель нужен, чтобы отличить "completed": false от отсутствующего поля.
type UpdateTodoRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}
