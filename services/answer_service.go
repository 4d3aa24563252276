package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// systemPrompt is the fixed instruction appended to every prompt,
// context or not.
const systemPrompt = `When answering the question or responding, use the context provided, if it is provided and relevant.`

// Answer is a generated response plus the model that produced it, so
// callers can observe which provider tier served the request.
type Answer struct {
	Text  string
	Model string
}

// AnswerService assembles the prompt for a question and invokes the
// first available generation provider. Providers are tried in priority
// order (premium tiers first, the always-available default last); the
// choice is made once per call and a failure of the chosen provider is
// not retried against another.
type AnswerService struct {
	providers []Generator
	logger    *zap.Logger
}

func NewAnswerService(providers []Generator, logger *zap.Logger) *AnswerService {
	return &AnswerService{providers: providers, logger: logger}
}

// Generate answers question using contextNotes as grounding. With no
// context notes the model answers from general knowledge; the context
// message is simply omitted.
func (s *AnswerService) Generate(ctx context.Context, question string, contextNotes []string) (*Answer, error) {
	if question == "" {
		return nil, fmt.Errorf("%w: missing question", ErrInput)
	}

	provider := s.pickProvider()
	if provider == nil {
		return nil, fmt.Errorf("%w: no generation provider configured", ErrGeneration)
	}

	messages := assemblePrompt(question, contextNotes)

	text, err := provider.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s returned empty completion", ErrGeneration, provider.Name())
	}

	s.logger.Info("generated answer",
		zap.String("model", provider.Name()),
		zap.Int("context_notes", len(contextNotes)))
	return &Answer{Text: text, Model: provider.Name()}, nil
}

func (s *AnswerService) pickProvider() Generator {
	for _, p := range s.providers {
		if p.Available() {
			return p
		}
	}
	return nil
}

// assemblePrompt builds the message list in its fixed order: the
// optional context system message, the instruction system message, then
// the user question.
func assemblePrompt(question string, contextNotes []string) []Message {
	var messages []Message

	if len(contextNotes) > 0 {
		var b strings.Builder
		b.WriteString("Context:")
		for _, note := range contextNotes {
			b.WriteString("\n- ")
			b.WriteString(note)
		}
		messages = append(messages, Message{Role: RoleSystem, Content: b.String()})
	}

	messages = append(messages,
		Message{Role: RoleSystem, Content: systemPrompt},
		Message{Role: RoleUser, Content: question},
	)
	return messages
}
