package todos

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Тест ходит в настоящую MongoDB, поэтому запускается только с MONGODB_TEST_URI.
func TestMongoStore_CRUD(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := "todo_test_" + primitive.NewObjectID().Hex()
	store, err := NewMongoStore(ctx, uri, db)
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	t.Cleanup(func() {
		_ = store.client.Database(db).Drop(context.Background())
		_ = store.Close(context.Background())
	})

	svc := NewService(store)

	created, err := svc.CreateTodo(ctx, " mongo ")
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if _, err := svc.SetCompleted(ctx, created.ID.Hex(), true); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}

	list, err := svc.ListTodos(ctx)
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if len(list) != 1 || list[0].Text != "mongo" || !list[0].Completed {
		t.Fatalf("unexpected list: %#v", list)
	}

	if err := svc.DeleteTodo(ctx, created.ID.Hex()); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	if _, err := svc.GetTodo(ctx, created.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.DeleteTodo(ctx, created.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDatabaseFromURI(t *testing.T) {
	if got := databaseFromURI("mongodb://localhost:27017/tasks"); got != "tasks" {
		t.Fatalf("want tasks, got %q", got)
	}
	if got := databaseFromURI("mongodb://localhost:27017"); got != defaultDatabase {
		t.Fatalf("want %q, got %q", defaultDatabase, got)
	}
	if got := databaseFromURI("::not a uri::"); got != defaultDatabase {
		t.Fatalf("want %q, got %q", defaultDatabase, got)
	}
}

func TestNewMongoStore_EmptyURI(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), "", ""); err == nil {
		t.Fatalf("expected error for empty uri")
	}
}
