// Package promptstore serves the active system prompt with a short-lived
// in-process cache over the prompt repository.
package promptstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vibe_demo_server/internal/common"
	"vibe_demo_server/internal/types"
)

const DefaultCacheTTL = 60 * time.Second

// Repository is the persistence the store needs.
type Repository interface {
	Active(ctx context.Context) (*types.PromptVersion, error)
	List(ctx context.Context) ([]types.PromptVersion, error)
	Save(ctx context.Context, content string, label *string) (*types.PromptVersion, error)
	SeedIfEmpty(ctx context.Context, content string) (bool, error)
}

type Store struct {
	repo Repository
	ttl  time.Duration
	log  zerolog.Logger
	now  func() time.Time

	mu       sync.Mutex
	cached   string
	cachedAt time.Time
	hasCache bool
}

func New(repo Repository, ttl time.Duration, log zerolog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Store{
		repo: repo,
		ttl:  ttl,
		log:  log.With().Str("component", "promptstore").Logger(),
		now:  time.Now,
	}
}

// GetActive returns the active prompt content. ok is false when there is no
// active version or the read failed; callers fall back to the built-in prompt.
func (s *Store) GetActive(ctx context.Context) (string, bool) {
	s.mu.Lock()
	if s.hasCache && s.now().Sub(s.cachedAt) < s.ttl {
		content := s.cached
		s.mu.Unlock()
		return content, true
	}
	s.mu.Unlock()

	p, err := s.repo.Active(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Error().Err(err).Msg("failed to read active prompt")
		}
		return "", false
	}

	s.mu.Lock()
	s.cached = p.Content
	s.cachedAt = s.now()
	s.hasCache = true
	s.mu.Unlock()
	return p.Content, true
}

// ListAll returns every version, newest first.
func (s *Store) ListAll(ctx context.Context) ([]types.PromptVersion, error) {
	return s.repo.List(ctx)
}

// Save stores a new active version and drops the cache.
func (s *Store) Save(ctx context.Context, content string, label *string) (*types.PromptVersion, error) {
	p, err := s.repo.Save(ctx, content, label)
	if err != nil {
		return nil, err
	}
	s.Invalidate()
	s.log.Info().Int("version", p.Version).Msg("saved prompt version")
	return p, nil
}

// SeedIfEmpty stores defaultContent as version 1 when no versions exist.
func (s *Store) SeedIfEmpty(ctx context.Context, defaultContent string) error {
	seeded, err := s.repo.SeedIfEmpty(ctx, defaultContent)
	if err != nil {
		return err
	}
	if seeded {
		s.Invalidate()
		s.log.Info().Msg("seeded default prompt")
	}
	return nil
}

func (s *Store) Invalidate() {
	s.mu.Lock()
	s.hasCache = false
	s.cached = ""
	s.mu.Unlock()
}
