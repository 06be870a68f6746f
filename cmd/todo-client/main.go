package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"todo-list/internal/client"
	"todo-list/internal/tui"
)

func main() {
	defaultURL := strings.TrimSpace(os.Getenv("TODO_API_URL"))
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}

	apiURL := flag.String("api", defaultURL, "base URL of the todo server (env TODO_API_URL)")
	timeout := flag.Duration("timeout", 10*time.Second, "HTTP request timeout")
	flag.Parse()

	api, err := client.New(*apiURL, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "todo-client:", err)
		os.Exit(2)
	}

	p := tea.NewProgram(tui.New(api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "todo-client:", err)
		os.Exit(1)
	}
}
