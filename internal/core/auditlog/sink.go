// Package auditlog records inbound resolution requests. Sinks are collaborators
// of the resolver service: a failing sink never changes a resolution outcome.
package auditlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverNone   = "none"
)

var (
	ErrQueueFull = errors.New("audit queue is full")
	ErrClosed    = errors.New("audit sink is closed")
)

// Sink stores audit entries
type Sink interface {
	Record(ctx context.Context, e Entry) error
	Close() error
}

// Lister is implemented by sinks that can read back recent entries
type Lister interface {
	Recent(ctx context.Context, n int) ([]Entry, error)
}

// Nop discards every entry
type Nop struct{}

func (Nop) Record(context.Context, Entry) error {
	return nil
}

func (Nop) Close() error {
	return nil
}

// Open returns the sink for a driver name ("file", "sqlite" or "none")
func Open(driver, path string) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverFile, "":
		return NewFileSink(path), nil
	case DriverSQLite:
		return OpenSQLite(path)
	case DriverNone:
		return Nop{}, nil
	}
	return nil, fmt.Errorf("unknown audit driver %q (valid: file, sqlite, none)", driver)
}
