package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
)

// Store owns the in-memory credential cache and its durable mirror.
//
// Writes are last-write-wins. Every Update persists a snapshot of the whole
// cache in the background; snapshots are written one at a time so the
// durable copy always ends up equal to the latest cache state.
type Store struct {
	kv KV

	mu     sync.RWMutex
	tokens map[platform.Platform]Credential

	persistMu sync.Mutex
	pending   sync.WaitGroup
}

// NewStore returns an empty cache backed by kv.
func NewStore(kv KV) *Store {
	return &Store{
		kv:     kv,
		tokens: make(map[platform.Platform]Credential),
	}
}

// Update overwrites the cached credential for p and persists asynchronously.
func (s *Store) Update(p platform.Platform, cred Credential) {
	s.mu.Lock()
	s.tokens[p] = cred
	s.mu.Unlock()

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.persist(context.Background()); err != nil {
			log.Printf("Failed to persist %s tokens: %v", p, err)
		}
	}()
}

// Wait blocks until every background persist started so far has finished.
func (s *Store) Wait() {
	s.pending.Wait()
}

// Lookup returns the cached credential for p if it is complete. It never touches storage.
func (s *Store) Lookup(p platform.Platform) (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.tokens[p]
	if !ok || !c.Complete(p) {
		return Credential{}, false
	}
	return c, true
}

// Snapshot returns a copy of the whole cache.
func (s *Store) Snapshot() map[platform.Platform]Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[platform.Platform]Credential, len(s.tokens))
	for p, c := range s.tokens {
		out[p] = c
	}
	return out
}

// Load fills the cache from durable storage and reports whether anything was found.
//
// Platforms that already hold a complete credential in memory are left alone.
// When only the legacy single-platform key exists, its value is lifted into
// the twitter slot and written back under KeyAuthTokens.
func (s *Store) Load(ctx context.Context) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, KeyAuthTokens)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", KeyAuthTokens, err)
	}
	if ok {
		var stored map[platform.Platform]Credential
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return false, fmt.Errorf("failed to decode %s: %w", KeyAuthTokens, err)
		}
		s.merge(stored)
		return true, nil
	}

	raw, ok, err = s.kv.Get(ctx, KeyLegacyTwitter)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", KeyLegacyTwitter, err)
	}
	if !ok {
		return false, nil
	}
	var legacy Credential
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", KeyLegacyTwitter, err)
	}
	s.merge(map[platform.Platform]Credential{platform.Twitter: legacy})
	log.Printf("Migrated legacy %s into %s", KeyLegacyTwitter, KeyAuthTokens)
	if err := s.persist(ctx); err != nil {
		log.Printf("Failed to write migrated tokens: %v", err)
	}
	return true, nil
}

func (s *Store) merge(stored map[platform.Platform]Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p, c := range stored {
		if cur, ok := s.tokens[p]; ok && cur.Complete(p) {
			continue
		}
		s.tokens[p] = c
	}
}

func (s *Store) persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}
	return s.kv.Set(ctx, KeyAuthTokens, string(data))
}
