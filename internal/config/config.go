package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Поддерживаемые драйверы хранилища.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Config — настройки процесса сервера.
type Config struct {
	Port           string
	StoreDriver    string
	MongoURI       string
	MongoDatabase  string
	SQLitePath     string
	FilePath       string
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// Addr — адрес для http.Server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load читает конфигурацию из переменных окружения.
//
// Строка подключения к выбранному хранилищу обязательна: без неё сервер не стартует.
func Load() (Config, error) {
	cfg := Config{
		Port:          strings.TrimSpace(os.Getenv("PORT")),
		StoreDriver:   strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER"))),
		MongoURI:      strings.TrimSpace(os.Getenv("MONGODB_URI")),
		MongoDatabase: strings.TrimSpace(os.Getenv("MONGODB_DATABASE")),
		SQLitePath:    strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		FilePath:      strings.TrimSpace(os.Getenv("TODO_FILE")),
		CORSOrigins:   splitList(os.Getenv("CORS_ORIGINS")),
	}

	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = DriverMongo
	}

	timeout, err := parseTimeout(strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT")))
	if err != nil {
		return cfg, err
	}
	cfg.RequestTimeout = timeout

	switch cfg.StoreDriver {
	case DriverMongo:
		if cfg.MongoURI == "" {
			return cfg, fmt.Errorf("MONGODB_URI is required for store driver %q", cfg.StoreDriver)
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return cfg, fmt.Errorf("SQLITE_PATH is required for store driver %q", cfg.StoreDriver)
		}
	case DriverFile:
		if cfg.FilePath == "" {
			return cfg, fmt.Errorf("TODO_FILE is required for store driver %q", cfg.StoreDriver)
		}
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q (want mongo, sqlite or file)", cfg.StoreDriver)
	}

	return cfg, nil
}

func parseTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 5 * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be >= 0, got %s", d)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
