package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	openaigo "github.com/sashabaranov/go-openai"

	"contentforge/internal/domain"
)

// OpenAIOptions configures the OpenAI-backed generator.
type OpenAIOptions struct {
	APIKey       string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
}

// OpenAIGenerator produces text via chat completions, images via the image
// API and audio via the speech API. Video is not supported by the platform.
type OpenAIGenerator struct {
	client *openaigo.Client
}

const (
	defaultOpenAITextModel  = "gpt-4o-mini"
	defaultOpenAIImageModel = "dall-e-3"
	defaultOpenAIAudioModel = "tts-1"
)

func NewOpenAIGenerator(opts OpenAIOptions) (*OpenAIGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	cfg := openaigo.DefaultConfig(strings.TrimSpace(opts.APIKey))
	if baseURL := strings.TrimRight(opts.BaseURL, "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if opts.Organization != "" {
		cfg.OrgID = opts.Organization
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	return &OpenAIGenerator{client: openaigo.NewClientWithConfig(cfg)}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	switch req.ContentType {
	case domain.ContentTypeText:
		return g.generateText(ctx, req)
	case domain.ContentTypeImage:
		return g.generateImage(ctx, req)
	case domain.ContentTypeAudio:
		return g.generateAudio(ctx, req)
	default:
		return nil, fmt.Errorf("openai: content type %q not supported", req.ContentType)
	}
}

func (g *OpenAIGenerator) generateText(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	model := req.Model
	if model == "" {
		model = defaultOpenAITextModel
	}
	resp, err := g.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai chat completion: no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.New("openai chat completion: empty response")
	}
	return &GenerateResult{
		Text:             text,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (g *OpenAIGenerator) generateImage(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	model := req.Model
	if model == "" {
		model = defaultOpenAIImageModel
	}
	resp, err := g.client.CreateImage(ctx, openaigo.ImageRequest{
		Model:          model,
		Prompt:         req.Prompt,
		N:              1,
		ResponseFormat: openaigo.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai image generation: empty response")
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai image generation: decode payload: %w", err)
	}
	return &GenerateResult{Data: data, MIME: "image/png", Model: model}, nil
}

func (g *OpenAIGenerator) generateAudio(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	model := req.Model
	if model == "" {
		model = defaultOpenAIAudioModel
	}
	resp, err := g.client.CreateSpeech(ctx, openaigo.CreateSpeechRequest{
		Model: openaigo.SpeechModel(model),
		Input: req.Prompt,
		Voice: openaigo.VoiceAlloy,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech generation: %w", err)
	}
	defer func() {
		_ = resp.Close()
	}()
	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("openai speech generation: read payload: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("openai speech generation: empty payload")
	}
	return &GenerateResult{Data: data, MIME: "audio/mpeg", Model: model}, nil
}

var _ Generator = (*OpenAIGenerator)(nil)
