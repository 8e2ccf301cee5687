package manager

import (
	"context"
	"log/slog"
	"sync"
)

// ErrorChannel keeps the last failed fetch or mutation until the user
// acknowledges it.
type ErrorChannel struct {
	mu  sync.Mutex
	err error
}

func NewErrorChannel() *ErrorChannel {
	return &ErrorChannel{}
}

func (c *ErrorChannel) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	slog.ErrorContext(
		ctx, "request failed",
		slog.String("error", err.Error()),
		slog.String("module", "manager"),
	)

	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *ErrorChannel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Message is the text shown in the notification, empty when there is none.
func (c *ErrorChannel) Message() string {
	err := c.Err()
	if err == nil {
		return ""
	}
	return err.Error()
}

func (c *ErrorChannel) Acknowledge() {
	c.mu.Lock()
	c.err = nil
	c.mu.Unlock()
}
