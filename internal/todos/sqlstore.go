package todos

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// todoRecord — строка таблицы todos. ObjectID хранится как hex-строка.
type todoRecord struct {
	ID        string `gorm:"primaryKey;size:24"`
	Text      string `gorm:"not null"`
	Completed bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (todoRecord) TableName() string { return "todos" }

func recordFromTodo(t Todo) todoRecord {
	return todoRecord{
		ID:        t.ID.Hex(),
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (r todoRecord) todo() (Todo, error) {
	id, err := primitive.ObjectIDFromHex(r.ID)
	if err != nil {
		return Todo{}, fmt.Errorf("corrupt id %q: %w", r.ID, err)
	}
	return Todo{
		ID:        id,
		Text:      r.Text,
		Completed: r.Completed,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// SQLStore — встраиваемое хранилище на SQLite через gorm.
// Удобно для локального запуска без MongoDB и для тестов.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore открывает базу SQLite и прогоняет миграции.
func NewSQLStore(dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("sqlite: empty dsn")
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&todoRecord{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// FindAll возвращает все задачи в порядке вставки.
func (s *SQLStore) FindAll(ctx context.Context) ([]Todo, error) {
	var records []todoRecord
	// Порядок по rowid, а не по id: hex ObjectID начинается с секунд часов
	// конкретного процесса и порядок вставки не гарантирует.
	if err := s.db.WithContext(ctx).Order("rowid").Find(&records).Error; err != nil {
		return nil, storeErr("find", err)
	}

	todos := make([]Todo, 0, len(records))
	for _, r := range records {
		t, err := r.todo()
		if err != nil {
			return nil, storeErr("find", err)
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// Insert добавляет новую строку.
func (s *SQLStore) Insert(ctx context.Context, t Todo) error {
	rec := recordFromTodo(t)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return storeErr("insert", err)
	}
	return nil
}

// FindByID ищет задачу по id; нет строки -> ErrNotFound.
func (s *SQLStore) FindByID(ctx context.Context, id primitive.ObjectID) (Todo, error) {
	var rec todoRecord
	err := s.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Todo{}, ErrNotFound
	}
	if err != nil {
		return Todo{}, storeErr("find one", err)
	}

	t, err := rec.todo()
	if err != nil {
		return Todo{}, storeErr("find one", err)
	}
	return t, nil
}

// DeleteByID удаляет задачу; ни одна строка не затронута -> ErrNotFound.
func (s *SQLStore) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id.Hex()).Delete(&todoRecord{})
	if res.Error != nil {
		return storeErr("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Save перезаписывает поля существующей задачи.
func (s *SQLStore) Save(ctx context.Context, t Todo) error {
	rec := recordFromTodo(t)
	// Updates по карте, а не Save: Save делает upsert, а нам нужен ErrNotFound.
	res := s.db.WithContext(ctx).Model(&todoRecord{}).Where("id = ?", rec.ID).Updates(map[string]any{
		"text":       rec.Text,
		"completed":  rec.Completed,
		"created_at": rec.CreatedAt,
		"updated_at": rec.UpdatedAt,
	})
	if res.Error != nil {
		return storeErr("save", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping проверяет соединение с базой.
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storeErr("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ensureDirForSQLite создаёт родительский каталог файла базы, если нужно.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
