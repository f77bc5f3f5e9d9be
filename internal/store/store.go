// Package store provides the key/value slots the calculator persists into.
//
// Every backend stores opaque byte values under short string keys. Encoding
// of what goes into a slot is the caller's business.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has never been set or was
// deleted.
var ErrNotFound = errors.New("store: key not found")

// Store is a key/value slot backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// validateKey rejects keys that cannot be used as a file name or KV key.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("store: empty key")
	}
	if strings.ContainsAny(key, `/\ `) || key == "." || key == ".." {
		return fmt.Errorf("store: invalid key %q", key)
	}
	return nil
}
