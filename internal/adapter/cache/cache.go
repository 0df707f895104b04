// Package cache stores intermediate pipeline artifacts (the rent catalog and
// per-destination reachability sets) so repeated runs skip the network.
package cache

import (
	"context"
	"fmt"
)

// Store is a keyed blob store. Get reports a miss with ok == false and a nil
// error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
}

// Backend names accepted by New.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Dir        string
	SQLitePath string
	MemorySize int
}

// New builds the configured store. The returned close function is never nil.
// BackendNone yields a nil Store, which callers treat as caching disabled.
func New(opts Options) (Store, func() error, error) {
	noop := func() error { return nil }
	switch opts.Backend {
	case BackendFile, "":
		s, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case BackendSQLite:
		s, err := OpenSQLiteStore(opts.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case BackendMemory:
		size := opts.MemorySize
		if size <= 0 {
			size = 256
		}
		return NewMemoryStore(size), noop, nil
	case BackendNone:
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
