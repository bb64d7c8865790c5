// Package notify delivers short user-visible messages ("toasts") produced by
// the booking and status workflows, and keeps a structured log of them.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// Notification Types
// ---------------------------------------------------------------------------

// Level is the visual variant of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a single message shown to the user.
type Notification struct {
	Level       Level     `json:"level"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier is implemented by every delivery channel.
type Notifier interface {
	Notify(n Notification)
}

// Success builds a success notification.
func Success(title, description string) Notification {
	return Notification{Level: LevelSuccess, Title: title, Description: description, CreatedAt: time.Now()}
}

// Info builds an informational notification.
func Info(title, description string) Notification {
	return Notification{Level: LevelInfo, Title: title, Description: description, CreatedAt: time.Now()}
}

// Error builds a destructive notification.
func Error(title, description string) Notification {
	return Notification{Level: LevelError, Title: title, Description: description, CreatedAt: time.Now()}
}

// ---------------------------------------------------------------------------
// Console
// ---------------------------------------------------------------------------

// Console prints notifications to a terminal and mirrors them to the logger.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	logger zerolog.Logger
}

// NewConsole creates a Console notifier writing to out.
func NewConsole(out io.Writer, logger zerolog.Logger) *Console {
	return &Console{out: out, logger: logger}
}

func (c *Console) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	marker := "*"
	switch n.Level {
	case LevelSuccess:
		marker = "+"
	case LevelError:
		marker = "!"
	}
	if n.Description != "" {
		fmt.Fprintf(c.out, "[%s] %s: %s\n", marker, n.Title, n.Description)
	} else {
		fmt.Fprintf(c.out, "[%s] %s\n", marker, n.Title)
	}

	evt := c.logger.Debug()
	if n.Level == LevelError {
		evt = c.logger.Warn()
	}
	evt.Str("kind", string(n.Level)).Str("title", n.Title).Str("description", n.Description).Msg("notification")
}

// ---------------------------------------------------------------------------
// Recorder
// ---------------------------------------------------------------------------

// Recorder keeps every notification in memory. Used by tests and by callers
// that render notifications themselves.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(Notification) {}
