// Package kv is the string key/value contract behind persisted learner state,
// with in-memory, Redis and Postgres backends.
package kv

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("kv: store closed")

// Store persists opaque string values. A missing key is reported with
// found == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
