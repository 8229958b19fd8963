package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Sentinel errors handlers map onto HTTP statuses. Anything else bubbles up
// as a 500.
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("access to this tenant is not allowed")
	ErrNotFound     = errors.New("record not found")
)

// ConfigError means a precondition configuration value is missing — the
// request was well-formed but the system is not set up to accept it yet.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// notFound translates gorm's record-not-found into the service sentinel so
// handlers never have to import gorm.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode with stub repositories).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
