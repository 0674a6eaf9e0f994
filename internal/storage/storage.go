package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage tracks content digests of harvested snapshots so
// unchanged resources are not rewritten on every pass.

// Store records a digest per resource key with a TTL.
type Store interface {
	Close() error
	// UnchangedSnapshot reports whether the key already holds the given
	// digest and the entry has not expired.
	UnchangedSnapshot(key string, sum []byte) (bool, error)
	// RecordSnapshot stores the digest for the key, refreshing its TTL.
	RecordSnapshot(key string, sum []byte) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SnapshotTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSnapshotTTL     = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore never reports a snapshot as unchanged, so every pass rewrites.
type noopStore struct{}

func (noopStore) Close() error                                   { return nil }
func (noopStore) UnchangedSnapshot(string, []byte) (bool, error) { return false, nil }
func (noopStore) RecordSnapshot(string, []byte) error            { return nil }
