// Package imagegen turns a text prompt into image bytes for the blob store.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Generator produces PNG image bytes for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewOpenAIGenerator(apiKey, model string, timeout time.Duration, logger *zap.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate requests a single base64 image and decodes it. An empty response
// counts as a failure; callers decide how to surface it.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		g.logger.Error("Failed to generate image", zap.Error(err))
		return nil, fmt.Errorf("error generating image: %v", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errors.New("error generating image: empty response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("error decoding generated image: %v", err)
	}

	return data, nil
}
