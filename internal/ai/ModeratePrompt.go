package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"vibe_demo_server/internal/ai/utils"
	"vibe_demo_server/internal/metrics"
)

type ModerationResult struct {
	Safe   bool
	Reason string
}

// ModeratePrompt screens user text. It fails open: when the moderation call
// errors the text is treated as safe.
func (g *Generator) ModeratePrompt(ctx context.Context, text string) ModerationResult {
	resp, err := g.client.Moderations(ctx, openai.ModerationRequest{
		Input: text,
		Model: openai.ModerationOmniLatest,
	})
	if err != nil {
		metrics.ModerationFailOpenTotal.Inc()
		metrics.UpstreamErrorsTotal.WithLabelValues("moderation", utils.ErrorClass(err)).Inc()
		g.log.Warn().Err(err).Msg("moderation failed, allowing prompt")
		return ModerationResult{Safe: true}
	}
	if len(resp.Results) == 0 {
		metrics.ModerationFailOpenTotal.Inc()
		g.log.Warn().Msg("moderation returned no results, allowing prompt")
		return ModerationResult{Safe: true}
	}

	out := resp.Results[0]
	if !out.Flagged {
		return ModerationResult{Safe: true}
	}

	category := FirstFlaggedCategory(out.Categories)
	metrics.ModerationRejectionsTotal.WithLabelValues(category).Inc()
	return ModerationResult{
		Safe:   false,
		Reason: fmt.Sprintf("Your prompt was flagged for: %s. Please try a different description.", category),
	}
}

// FirstFlaggedCategory names the first flagged category in API order, or
// "policy violation" when none is set.
func FirstFlaggedCategory(c openai.ResultCategories) string {
	ordered := []struct {
		name    string
		flagged bool
	}{
		{"hate", c.Hate},
		{"hate/threatening", c.HateThreatening},
		{"harassment", c.Harassment},
		{"harassment/threatening", c.HarassmentThreatening},
		{"self-harm", c.SelfHarm},
		{"self-harm/intent", c.SelfHarmIntent},
		{"self-harm/instructions", c.SelfHarmInstructions},
		{"sexual", c.Sexual},
		{"sexual/minors", c.SexualMinors},
		{"violence", c.Violence},
		{"violence/graphic", c.ViolenceGraphic},
	}
	for _, cat := range ordered {
		if cat.flagged {
			return cat.name
		}
	}
	return "policy violation"
}
