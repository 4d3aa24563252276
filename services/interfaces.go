package services

import (
	"context"

	"ragnotes/models"
)

// VectorEntry pairs a note id (string form) with its embedding for an
// index upsert. The id must equal the owning note row's id; that shared
// key is the only join between the relational store and the index.
type VectorEntry struct {
	ID     string
	Vector []float32
}

// Match is one hit from a top-K similarity query, closest first.
type Match struct {
	ID    string
	Score float32
}

// Message is one provider-neutral prompt turn; each Generator maps it
// onto its own wire format.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Embedder converts text into fixed-length vectors via the external
// embedding service.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex wraps the external similarity index.
type VectorIndex interface {
	Upsert(ctx context.Context, entries []VectorEntry) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// NoteStore wraps the relational store holding note rows.
type NoteStore interface {
	Create(ctx context.Context, text, source string) (*models.Note, error)
	GetByID(ctx context.Context, id uint) (*models.Note, error)
	DeleteByID(ctx context.Context, id uint) error
	DeleteBySource(ctx context.Context, source string) ([]uint, error)
	List(ctx context.Context) ([]models.Note, error)
}

// Generator produces a text completion from an ordered message list.
// Available reports whether the provider's credential (or endpoint) is
// configured; the answer service picks the first available generator.
type Generator interface {
	Name() string
	Available() bool
	Complete(ctx context.Context, messages []Message) (string, error)
}
