package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"ragnotes/models"
)

// OllamaEmbedder generates embeddings through the Ollama HTTP API.
type OllamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
	logger     *zap.Logger
}

// NewOllamaEmbedder creates an embedder talking to the Ollama server at
// baseURL using the given embedding model.
func NewOllamaEmbedder(client *http.Client, baseURL, model string, logger *zap.Logger) *OllamaEmbedder {
	return &OllamaEmbedder{
		httpClient: client,
		baseURL:    baseURL,
		model:      model,
		logger:     logger,
	}
}

// Embed returns the fixed-length vector for one text. An empty input or
// an empty vector from the service is an ErrEmbedding.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrEmbedding)
	}

	reqBody, err := json.Marshal(models.OllamaEmbedRequest{
		Model:  e.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrEmbedding, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrEmbedding, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: call embedding api: %v", ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: embedding api status %d: %s", ErrEmbedding, resp.StatusCode, string(bodyBytes))
	}

	var embedResp models.OllamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrEmbedding, err)
	}
	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: service returned no vector", ErrEmbedding)
	}

	e.logger.Debug("embedded text", zap.Int("dimension", len(embedResp.Embedding)))
	return embedResp.Embedding, nil
}

// EmbedBatch embeds each text in order. The Ollama embeddings endpoint
// takes one prompt per call, so the batch is a sequential loop; a
// failure aborts the batch at that element.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("batch element %d: %w", i, err)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}
