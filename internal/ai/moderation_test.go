package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestModeratePrompt_Unflagged(t *testing.T) {
	chat := &fakeChat{moderation: openai.ModerationResponse{Results: []openai.Result{{Flagged: false}}}}
	g := NewGenerator(chat, nil, nil, Options{}, zerolog.Nop())

	res := g.ModeratePrompt(context.Background(), "A bakery site")
	assert.True(t, res.Safe)
	assert.Empty(t, res.Reason)
}

func TestModeratePrompt_FlaggedNamesFirstCategory(t *testing.T) {
	chat := &fakeChat{moderation: openai.ModerationResponse{Results: []openai.Result{{
		Flagged:    true,
		Categories: openai.ResultCategories{Violence: true, Harassment: true},
	}}}}
	g := NewGenerator(chat, nil, nil, Options{}, zerolog.Nop())

	res := g.ModeratePrompt(context.Background(), "something nasty")
	assert.False(t, res.Safe)
	assert.Equal(t, "Your prompt was flagged for: harassment. Please try a different description.", res.Reason)
}

func TestModeratePrompt_FlaggedWithoutCategory(t *testing.T) {
	chat := &fakeChat{moderation: openai.ModerationResponse{Results: []openai.Result{{Flagged: true}}}}
	g := NewGenerator(chat, nil, nil, Options{}, zerolog.Nop())

	res := g.ModeratePrompt(context.Background(), "x")
	assert.False(t, res.Safe)
	assert.Contains(t, res.Reason, "policy violation")
}

func TestModeratePrompt_FailsOpen(t *testing.T) {
	chat := &fakeChat{moderationErr: errors.New("dial tcp: connection refused")}
	g := NewGenerator(chat, nil, nil, Options{}, zerolog.Nop())

	assert.True(t, g.ModeratePrompt(context.Background(), "x").Safe)

	chat = &fakeChat{}
	g = NewGenerator(chat, nil, nil, Options{}, zerolog.Nop())
	assert.True(t, g.ModeratePrompt(context.Background(), "x").Safe)
}

func TestFirstFlaggedCategory_Order(t *testing.T) {
	assert.Equal(t, "hate", FirstFlaggedCategory(openai.ResultCategories{Hate: true, ViolenceGraphic: true}))
	assert.Equal(t, "self-harm/intent", FirstFlaggedCategory(openai.ResultCategories{SelfHarmIntent: true, Sexual: true}))
	assert.Equal(t, "violence/graphic", FirstFlaggedCategory(openai.ResultCategories{ViolenceGraphic: true}))
}
