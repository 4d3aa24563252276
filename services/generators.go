package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"ragnotes/models"
)

// GeminiGenerator is the premium generation tier, available when a
// Gemini API key is configured.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

func (g *GeminiGenerator) Name() string { return g.model }

func (g *GeminiGenerator) Available() bool { return g.client != nil }

// Complete maps the message list onto Gemini's split shape: system
// messages become the system instruction, user messages the contents.
func (g *GeminiGenerator) Complete(ctx context.Context, messages []Message) (string, error) {
	var systemParts []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			systemParts = append(systemParts, m.Content)
		default:
			contents = append(contents, genai.Text(m.Content)...)
		}
	}

	config := &genai.GenerateContentConfig{}
	if len(systemParts) > 0 {
		if sys := genai.Text(strings.Join(systemParts, "\n\n")); len(sys) > 0 {
			config.SystemInstruction = sys[0]
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: gemini api call: %v", ErrGeneration, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned no candidates", ErrGeneration)
	}
	return text, nil
}

// OpenAIGenerator is the second tier, available when an OpenAI API key
// is configured.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	g := &OpenAIGenerator{model: model}
	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
	}
	return g
}

func (g *OpenAIGenerator) Name() string { return g.model }

func (g *OpenAIGenerator) Available() bool { return g.client != nil }

func (g *OpenAIGenerator) Complete(ctx context.Context, messages []Message) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: chatMessages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai api call: %v", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: openai returned no choices", ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}

// OllamaGenerator is the default tier: a locally hosted chat model that
// needs no credential, so it is always available.
type OllamaGenerator struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewOllamaGenerator(client *http.Client, baseURL, model string) *OllamaGenerator {
	return &OllamaGenerator{httpClient: client, baseURL: baseURL, model: model}
}

func (g *OllamaGenerator) Name() string { return g.model }

func (g *OllamaGenerator) Available() bool { return true }

func (g *OllamaGenerator) Complete(ctx context.Context, messages []Message) (string, error) {
	chatMessages := make([]models.OllamaChatMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, models.OllamaChatMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	reqBody, err := json.Marshal(models.OllamaChatRequest{
		Model:    g.model,
		Messages: chatMessages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal chat request: %v", ErrGeneration, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("%w: build chat request: %v", ErrGeneration, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: call chat api: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: chat api status %d: %s", ErrGeneration, resp.StatusCode, string(bodyBytes))
	}

	var chatResp models.OllamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decode chat response: %v", ErrGeneration, err)
	}
	return chatResp.Message.Content, nil
}
