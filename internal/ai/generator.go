package ai

import (
	"context"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.7
)

// ChatClient is the part of the OpenAI client the generator uses.
// *openai.Client satisfies it.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	Moderations(ctx context.Context, req openai.ModerationRequest) (openai.ModerationResponse, error)
}

// PromptSource returns the active system prompt, if any.
type PromptSource interface {
	GetActive(ctx context.Context) (string, bool)
}

// ImageResolver swaps image placeholders for real URLs.
type ImageResolver interface {
	Resolve(ctx context.Context, html string) string
}

type Options struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

type Generator struct {
	client  ChatClient
	prompts PromptSource
	images  ImageResolver
	opts    Options
	log     zerolog.Logger
}

// NewGenerator wires the LLM client with the prompt store and the image
// resolver. prompts and images may be nil.
func NewGenerator(client ChatClient, prompts PromptSource, images ImageResolver, opts Options, log zerolog.Logger) *Generator {
	if opts.Model == "" {
		opts.Model = openai.GPT4o
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	return &Generator{
		client:  client,
		prompts: prompts,
		images:  images,
		opts:    opts,
		log:     log.With().Str("component", "generator").Logger(),
	}
}

// NewOpenAIClient builds the default client. baseURL overrides the API
// endpoint when set.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
