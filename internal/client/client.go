// Package client — типизированный HTTP-клиент для API задач.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"todo-list/internal/todos"
)

// DefaultBaseURL — адрес сервера по умолчанию.
const DefaultBaseURL = "http://localhost:5000"

// StatusError — ответ сервера с не-2xx статусом.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// Client ходит в /api/todos. Кэша нет: каждый вызов — отдельный запрос.
type Client struct {
	baseURL string
	http    *http.Client
}

// New создаёт клиента. Пустой baseURL заменяется на DefaultBaseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// List — GET /api/todos
func (c *Client) List(ctx context.Context) ([]todos.Todo, error) {
	var out []todos.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []todos.Todo{}
	}
	return out, nil
}

// Get — GET /api/todos/{id}
func (c *Client) Get(ctx context.Context, id string) (todos.Todo, error) {
	var out todos.Todo
	err := c.do(ctx, http.MethodGet, "/api/todos/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Create — POST /api/todos/add
func (c *Client) Create(ctx context.Context, text string) error {
	return c.do(ctx, http.MethodPost, "/api/todos/add", todos.CreateTodoRequest{Text: text}, nil)
}

// Delete — DELETE /api/todos/{id}
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, nil)
}

// SetCompleted — PUT /api/todos/update/{id}
func (c *Client) SetCompleted(ctx context.Context, id string, completed bool) error {
	body := todos.UpdateTodoRequest{Completed: &completed}
	return c.do(ctx, http.MethodPut, "/api/todos/update/"+url.PathEscape(id), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
