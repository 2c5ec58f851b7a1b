package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"vibe_demo_server/internal/ai/prompts"
	"vibe_demo_server/internal/ai/utils"
	"vibe_demo_server/internal/metrics"
)

var ErrEmptyPage = errors.New("model returned an empty page")

// GenerateDemoPage asks the model for a complete HTML page. With an empty
// existingHTML it builds a new page from the idea in prompt; otherwise it
// returns a full replacement of existingHTML with the requested change.
// LLM errors are returned wrapped and never retried.
func (g *Generator) GenerateDemoPage(ctx context.Context, prompt, existingHTML string) (string, error) {
	mode := "create"
	if existingHTML != "" {
		mode = "edit"
	}

	req := openai.ChatCompletionRequest{
		Model: g.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: g.systemPrompt(ctx)},
			{Role: openai.ChatMessageRoleUser, Content: prompts.UserMessage(prompt, existingHTML)},
		},
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	metrics.LLMDuration.WithLabelValues(g.opts.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		class := utils.ErrorClass(err)
		metrics.UpstreamErrorsTotal.WithLabelValues("openai", class).Inc()
		g.log.Error().Err(err).Str("mode", mode).Str("class", class).Msg("chat completion failed")
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		g.log.Warn().Str("mode", mode).Interface("usage", resp.Usage).Msg("no choices returned")
		return "", ErrEmptyPage
	}

	html := utils.StripFences(resp.Choices[0].Message.Content)
	if html == "" {
		g.log.Warn().Str("mode", mode).Str("finish_reason", string(resp.Choices[0].FinishReason)).Msg("empty page after cleanup")
		return "", ErrEmptyPage
	}

	if g.images != nil {
		html = g.images.Resolve(ctx, html)
	}

	g.log.Debug().
		Str("mode", mode).
		Int("bytes", len(html)).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("generated page")
	return html, nil
}

func (g *Generator) systemPrompt(ctx context.Context) string {
	if g.prompts != nil {
		if content, ok := g.prompts.GetActive(ctx); ok && content != "" {
			return content
		}
	}
	return prompts.DefaultSystemPrompt
}
