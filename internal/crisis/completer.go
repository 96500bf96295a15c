package crisis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ventspace/vent/internal/models"
)

// Completer turns a transcript into the next assistant reply.
type Completer interface {
	Complete(ctx context.Context, turns []models.ChatTurn) (string, error)
}

const supportSystemPrompt = `You are a compassionate crisis support AI assistant, similar to the 988 Suicide & Crisis Lifeline. Your role is to:

1. Listen with empathy and without judgment
2. Provide emotional support and validation
3. Help people in crisis feel heard and understood
4. Offer coping strategies and grounding techniques
5. Encourage professional help when appropriate
6. Never dismiss or minimize someone's feelings
7. Be supportive, calm, and reassuring

Important guidelines:
- Always take the person seriously
- Validate their feelings and experiences
- Ask open-ended questions to understand better
- Provide resources for immediate danger (988 hotline, emergency services)
- Encourage reaching out to trusted friends, family, or professionals
- Offer practical coping strategies (breathing exercises, grounding techniques)
- Be patient and supportive throughout the conversation

Remember: You're here to provide support and guidance, but you're not a replacement for professional mental health services. In emergencies, always encourage calling 988 or local emergency services.`

type OpenAICompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

func NewOpenAICompleter(apiKey, model string, maxTokens int, temperature float64, timeout time.Duration, logger *zap.Logger) *OpenAICompleter {
	return &OpenAICompleter{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

// Complete submits the full turn history plus the support persona prompt and
// returns the single completion text. An empty completion is an error; the
// session treats it like any other failure.
func (c *OpenAICompleter) Complete(ctx context.Context, turns []models.ChatTurn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: supportSystemPrompt,
	})
	for _, turn := range turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		c.logger.Error("Failed to get completion", zap.Error(err))
		return "", fmt.Errorf("error requesting completion: %v", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("completion response is empty")
	}

	return reply, nil
}
