// Package images replaces {{image:keyword:WxH}} placeholders in generated
// markup with real photo URLs.
package images

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"vibe_demo_server/internal/metrics"
)

const (
	DefaultBatchSize = 5

	// Fallback images are clamped to this size.
	maxDimension = 5000
)

var (
	tokenPattern     = regexp.MustCompile(`(?i)\{\{\s*image\s*:\s*([^:{}]+?)\s*:\s*(\d+)\s*x\s*(\d+)\s*\}\}`)
	separatorPattern = regexp.MustCompile(`[\s_-]+`)
)

// PhotoSource finds photo URLs for a free-text query. It returns an empty
// slice on any failure.
type PhotoSource interface {
	Search(ctx context.Context, query string, count int) []string
}

type Resolver struct {
	source    PhotoSource
	batchSize int
	log       zerolog.Logger
}

func NewResolver(source PhotoSource, batchSize int, log zerolog.Logger) *Resolver {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Resolver{
		source:    source,
		batchSize: batchSize,
		log:       log.With().Str("component", "images").Logger(),
	}
}

type placeholder struct {
	keyword       string
	width, height int
}

// Resolve substitutes every placeholder in html. Each distinct keyword is
// searched once; repeated keywords cycle through the returned batch. Tokens
// without photos get a seeded fallback URL, so no placeholder survives.
func (r *Resolver) Resolve(ctx context.Context, html string) string {
	matches := tokenPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return html
	}

	keywords := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		kw := NormalizeKeyword(m[1])
		if !seen[kw] {
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}

	batches := r.search(ctx, keywords)

	used := make(map[string]int)
	return tokenPattern.ReplaceAllStringFunc(html, func(tok string) string {
		p := parse(tok)
		batch := batches[p.keyword]
		if len(batch) == 0 {
			metrics.ImageFallbacksTotal.Inc()
			return FallbackURL(p.keyword, p.width, p.height)
		}
		n := used[p.keyword]
		used[p.keyword] = n + 1
		return batch[n%len(batch)]
	})
}

func (r *Resolver) search(ctx context.Context, keywords []string) map[string][]string {
	var mu sync.Mutex
	batches := make(map[string][]string, len(keywords))
	if r.source == nil {
		return batches
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, kw := range keywords {
		kw := kw
		g.Go(func() error {
			query := strings.ReplaceAll(kw, "-", " ")
			urls := r.source.Search(gctx, query, r.batchSize)
			mu.Lock()
			batches[kw] = urls
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	r.log.Debug().Int("keywords", len(keywords)).Msg("resolved image placeholders")
	return batches
}

func parse(tok string) placeholder {
	m := tokenPattern.FindStringSubmatch(tok)
	return placeholder{keyword: NormalizeKeyword(m[1]), width: dimension(m[2]), height: dimension(m[3])}
}

// dimension parses a placeholder size into [1, maxDimension]. Values too
// large for an int clamp to maxDimension.
func dimension(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n > maxDimension {
		return maxDimension
	}
	return max(n, 1)
}

// NormalizeKeyword lowercases and trims kw and collapses runs of spaces,
// underscores and hyphens into one hyphen.
func NormalizeKeyword(kw string) string {
	kw = strings.ToLower(strings.TrimSpace(kw))
	kw = separatorPattern.ReplaceAllString(kw, "-")
	return strings.Trim(kw, "-")
}

func FallbackURL(keyword string, width, height int) string {
	if keyword == "" {
		keyword = "photo"
	}
	return fmt.Sprintf("https://picsum.photos/seed/%s/%d/%d", url.PathEscape(keyword), width, height)
}
