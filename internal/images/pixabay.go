package images

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"vibe_demo_server/internal/metrics"
)

const (
	DefaultPixabayURL = "https://pixabay.com/api/"

	// Pixabay rejects per_page outside [3, 200].
	pixabayMinPerPage = 3
	pixabayMaxPerPage = 200
)

type pixabayHit struct {
	LargeImageURL string `json:"largeImageURL"`
}

type pixabayResponse struct {
	Total     int          `json:"total"`
	TotalHits int          `json:"totalHits"`
	Hits      []pixabayHit `json:"hits"`
}

// Pixabay is a PhotoSource backed by the Pixabay search API.
type Pixabay struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	log     zerolog.Logger
}

// NewPixabay builds a client. An empty apiKey makes every search return no
// photos, so callers get fallback URLs.
func NewPixabay(apiKey, baseURL string, timeout time.Duration, log zerolog.Logger) *Pixabay {
	if baseURL == "" {
		baseURL = DefaultPixabayURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Pixabay{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log.With().Str("component", "pixabay").Logger(),
	}
}

// Search returns up to count large-image URLs for query. Any failure yields
// an empty slice.
func (p *Pixabay) Search(ctx context.Context, query string, count int) []string {
	if p.apiKey == "" || count <= 0 {
		return nil
	}

	perPage := min(max(count, pixabayMinPerPage), pixabayMaxPerPage)

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":         p.apiKey,
			"q":           query,
			"per_page":    fmt.Sprint(perPage),
			"orientation": "horizontal",
			"image_type":  "photo",
			"safesearch":  "true",
		}).
		Get(p.baseURL)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("pixabay", "transport").Inc()
		p.log.Warn().Err(err).Str("query", query).Msg("photo search failed")
		return nil
	}
	if resp.StatusCode() >= 400 {
		metrics.UpstreamErrorsTotal.WithLabelValues("pixabay", "status").Inc()
		p.log.Warn().Int("status", resp.StatusCode()).Str("query", query).Msg("photo search returned error status")
		return nil
	}

	var result pixabayResponse
	if err := json.Unmarshal(resp.Bytes(), &result); err != nil {
		p.log.Warn().Err(err).Str("query", query).Msg("failed to parse photo search response")
		return nil
	}

	urls := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		if h.LargeImageURL != "" {
			urls = append(urls, h.LargeImageURL)
		}
	}
	if len(urls) > count {
		urls = urls[:count]
	}
	return urls
}

func (p *Pixabay) Close() error {
	return p.client.Close()
}
