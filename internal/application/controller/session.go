package controller

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// LoadSession reads the logged-in identity from the key-value store.
// A missing key yields a nil session and no error.
func LoadSession(ctx context.Context, kv port.KeyValueStore) (*entity.Session, error) {
	if kv == nil {
		return nil, nil
	}

	raw, err := kv.GetItem(ctx, entity.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	var session entity.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
