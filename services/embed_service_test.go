package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ragnotes/models"
)

func newEmbedTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OllamaEmbedder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	embedder := NewOllamaEmbedder(server.Client(), server.URL, "test-embed-model", zap.NewNop())
	return server, embedder
}

func TestOllamaEmbedderEmbed(t *testing.T) {
	var gotReq models.OllamaEmbedRequest
	_, embedder := newEmbedTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(models.OllamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	})

	vec, err := embedder.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "test-embed-model", gotReq.Model)
	assert.Equal(t, "hello", gotReq.Prompt)
}

func TestOllamaEmbedderEmptyText(t *testing.T) {
	_, embedder := newEmbedTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty text")
	})

	_, err := embedder.Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmbedding)
}

func TestOllamaEmbedderNoVector(t *testing.T) {
	_, embedder := newEmbedTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.OllamaEmbedResponse{})
	})

	_, err := embedder.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmbedding)
}

func TestOllamaEmbedderServerError(t *testing.T) {
	_, embedder := newEmbedTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	})

	_, err := embedder.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEmbedding)
}

func TestOllamaEmbedderBatchOrder(t *testing.T) {
	_, embedder := newEmbedTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.OllamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(models.OllamaEmbedResponse{Embedding: []float32{float32(len(req.Prompt))}})
	})

	vectors, err := embedder.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, []float32{1}, vectors[0])
	assert.Equal(t, []float32{2}, vectors[1])
	assert.Equal(t, []float32{3}, vectors[2])
}
