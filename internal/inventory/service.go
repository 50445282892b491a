package inventory

import (
	"context"
	"fmt"
	"log"
)

// Store is the snapshot cache consulted before resolution. The boolean
// result of Get distinguishes a miss from an error; the store itself holds
// no expiry logic.
type Store interface {
	Get(key string) (*Snapshot, bool, error)
	Put(key string, snap *Snapshot) error
}

// ResolveOptions control cache interaction for one resolution run.
type ResolveOptions struct {
	// UseCache permits reading a previously stored snapshot
	UseCache bool

	// ForceRefresh bypasses the cache read, recomputes, and writes back
	ForceRefresh bool
}

// Service ties the resolver and the snapshot cache together. A nil store
// disables caching entirely.
type Service struct {
	resolver    *Resolver
	store       Store
	fingerprint string
}

// NewService creates the resolution service. The fingerprint is the cache
// key derived from the configuration source.
func NewService(resolver *Resolver, store Store, fingerprint string) *Service {
	return &Service{resolver: resolver, store: store, fingerprint: fingerprint}
}

// Fingerprint returns the cache key the service stores snapshots under.
func (s *Service) Fingerprint() string {
	return s.fingerprint
}

// Inventory returns the resolved snapshot. With UseCache set a stored
// snapshot is returned without touching the network; on a miss (or with
// ForceRefresh) the pipeline runs and the result is written back. A failed
// cache write is logged, never fatal: the freshly resolved snapshot is
// still valid.
func (s *Service) Inventory(ctx context.Context, opts ResolveOptions) (*Snapshot, error) {
	if s.store != nil && opts.UseCache && !opts.ForceRefresh {
		snap, ok, err := s.store.Get(s.fingerprint)
		if err != nil {
			return nil, fmt.Errorf("reading snapshot cache: %w", err)
		}
		if ok {
			return snap, nil
		}
	}

	snap, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	snap.Fingerprint = s.fingerprint

	if s.store != nil {
		if err := s.store.Put(s.fingerprint, snap); err != nil {
			log.Printf("warning: writing snapshot cache: %v", err)
		}
	}

	return snap, nil
}
