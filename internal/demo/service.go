// Package demo runs the page pipeline: rate limit, moderation, generation,
// image resolution and persistence, plus ownership checks on edits.
package demo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"vibe_demo_server/internal/ai"
	"vibe_demo_server/internal/common"
	"vibe_demo_server/internal/metrics"
	"vibe_demo_server/internal/ratelimit"
	"vibe_demo_server/internal/session"
	"vibe_demo_server/internal/types"
)

const (
	MaxPromptLength  = 600
	DefaultTTL       = 24 * time.Hour
	DefaultMaxTweaks = 3

	createAttempts = 3
)

// Generator produces pages and screens prompts.
type Generator interface {
	GenerateDemoPage(ctx context.Context, prompt, existingHTML string) (string, error)
	ModeratePrompt(ctx context.Context, text string) ai.ModerationResult
}

// Limiter gates generations per client.
type Limiter interface {
	Check(identifier string) ratelimit.Result
	Max() int
}

// Repository persists pages.
type Repository interface {
	Create(ctx context.Context, page *types.DemoPage) error
	Get(ctx context.Context, id string) (*types.DemoPage, error)
	UpdateAfterTweak(ctx context.Context, id, html, prompt string) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Options struct {
	TTL time.Duration
	// MaxTweaks caps accepted edits per page. 0 means unlimited.
	MaxTweaks int
	// RateLimitTweaks also counts edits against the generation limit.
	RateLimitTweaks bool
	PublicBaseURL   string
}

type Service struct {
	repo    Repository
	gen     Generator
	limiter Limiter
	opts    Options
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string
}

func NewService(repo Repository, gen Generator, limiter Limiter, opts Options, log zerolog.Logger) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxTweaks < 0 {
		opts.MaxTweaks = 0
	}
	return &Service{
		repo:    repo,
		gen:     gen,
		limiter: limiter,
		opts:    opts,
		log:     log.With().Str("component", "demo").Logger(),
		now:     time.Now,
		newID:   NewID,
	}
}

// ValidatePrompt trims p and checks its length.
func ValidatePrompt(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || utf8.RuneCountInString(p) > MaxPromptLength {
		return "", ErrInvalidPrompt
	}
	return p, nil
}

// Create generates and stores a new page for clientID.
func (s *Service) Create(ctx context.Context, clientID, prompt string) (*types.DemoPage, error) {
	prompt, err := ValidatePrompt(prompt)
	if err != nil {
		return nil, err
	}

	if err := s.checkRate(clientID); err != nil {
		return nil, err
	}

	if err := s.moderate(ctx, prompt); err != nil {
		return nil, err
	}

	html, err := s.gen.GenerateDemoPage(ctx, prompt, "")
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("generate page: %w", err)
	}

	now := s.now().UTC()
	page := &types.DemoPage{
		HTML:      html,
		Prompt:    prompt,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.TTL),
	}

	for attempt := 1; ; attempt++ {
		page.ID = s.newID()
		err = s.repo.Create(ctx, page)
		if err == nil {
			break
		}
		if !errors.Is(err, common.ErrorAlreadyExists) || attempt == createAttempts {
			metrics.GenerationsTotal.WithLabelValues("create", "error").Inc()
			return nil, fmt.Errorf("store page: %w", err)
		}
		s.log.Warn().Str("id", page.ID).Msg("page id collision, picking a new one")
	}

	metrics.GenerationsTotal.WithLabelValues("create", "ok").Inc()
	s.log.Info().Str("id", page.ID).Str("client", clientID).Msg("created demo page")
	return page, nil
}

// Tweak applies an edit to a page the caller owns. ownedIDs comes from the
// caller's session; an empty list means the session is gone.
func (s *Service) Tweak(ctx context.Context, clientID string, ownedIDs []string, id, prompt string) (*types.DemoPage, error) {
	prompt, err := ValidatePrompt(prompt)
	if err != nil {
		return nil, err
	}

	if len(ownedIDs) == 0 {
		return nil, ErrSessionExpired
	}

	page, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if page.Expired(s.now()) {
		return nil, ErrExpired
	}
	if !session.Owns(ownedIDs, id) {
		return nil, ErrNotOwner
	}
	if s.opts.MaxTweaks > 0 && page.IterationCount >= s.opts.MaxTweaks {
		return nil, ErrTweaksExhausted
	}

	if s.opts.RateLimitTweaks {
		if err := s.checkRate(clientID); err != nil {
			return nil, err
		}
	}

	if err := s.moderate(ctx, prompt); err != nil {
		return nil, err
	}

	html, err := s.gen.GenerateDemoPage(ctx, prompt, page.HTML)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("edit", "error").Inc()
		return nil, fmt.Errorf("generate page: %w", err)
	}

	count, err := s.repo.UpdateAfterTweak(ctx, id, html, prompt)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("edit", "error").Inc()
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update page: %w", err)
	}

	page.HTML = html
	page.Prompt = prompt
	page.IterationCount = count

	metrics.GenerationsTotal.WithLabelValues("edit", "ok").Inc()
	s.log.Info().Str("id", id).Int("iteration", count).Msg("tweaked demo page")
	return page, nil
}

// View is a page as seen by one caller.
type View struct {
	Page    *types.DemoPage
	CanEdit bool
	Expired bool
	// TweaksRemaining is nil when edits are unlimited.
	TweaksRemaining *int
	Share           Share
}

// View loads a page for display. An expired page is returned with Expired set
// and no content.
func (s *Service) View(ctx context.Context, ownedIDs []string, id string) (*View, error) {
	page, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if page.Expired(s.now()) {
		return &View{Page: &types.DemoPage{ID: page.ID, ExpiresAt: page.ExpiresAt}, Expired: true}, nil
	}

	v := &View{
		Page:    page,
		CanEdit: session.Owns(ownedIDs, id),
		Share:   buildShare(s.opts.PublicBaseURL, page.ID, page.Prompt, page.HTML),
	}
	if s.opts.MaxTweaks > 0 {
		left := max(s.opts.MaxTweaks-page.IterationCount, 0)
		v.TweaksRemaining = &left
	}
	return v, nil
}

// Sweep deletes every non-persisted page past its expiry.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep expired pages: %w", err)
	}
	metrics.PagesSweptTotal.Add(float64(n))
	s.log.Info().Int64("deleted", n).Msg("swept expired demo pages")
	return n, nil
}

func (s *Service) get(ctx context.Context, id string) (*types.DemoPage, error) {
	page, err := s.repo.Get(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	return page, nil
}

func (s *Service) checkRate(clientID string) error {
	if s.limiter == nil {
		return nil
	}
	res := s.limiter.Check(clientID)
	if res.Allowed {
		return nil
	}
	metrics.RateLimitedTotal.Inc()
	s.log.Info().Str("client", clientID).Int("reset_in_minutes", res.ResetInMinutes).Msg("rate limited")
	return &RateLimitError{ResetInMinutes: res.ResetInMinutes, Max: s.limiter.Max()}
}

func (s *Service) moderate(ctx context.Context, prompt string) error {
	res := s.gen.ModeratePrompt(ctx, prompt)
	if res.Safe {
		return nil
	}
	return &ModerationError{Reason: res.Reason}
}
