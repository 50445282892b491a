// Package cache persists resolved inventory snapshots between runs, keyed
// by a fingerprint of the configuration source. Two backends are provided:
// one JSON file per fingerprint, and a single SQLite database. Neither holds
// expiry logic; whether to consult or repopulate the cache is the resolution
// service's decision.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"akipsinv/internal/config"
	"akipsinv/internal/inventory"
)

// New returns the snapshot store selected by the cache configuration, or
// nil when caching is disabled.
func New(cfg config.CacheConfig) (inventory.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "file", "":
		return NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Fingerprint derives the cache key from the configuration source: the
// absolute path of the config file when one was used, otherwise the AKiPS
// host URL. Filter values deliberately do not contribute; changing filters
// without changing the source requires an explicit refresh.
func Fingerprint(source, host string) string {
	subject := source
	if subject != "" {
		if abs, err := filepath.Abs(subject); err == nil {
			subject = abs
		}
	} else {
		subject = "akips://" + host
	}
	sum := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:])
}
