package services

import (
	"context"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"go.uber.org/zap"
)

// ChromaIndex implements VectorIndex on a Chroma collection using the
// v2 API. Entry ids are note row ids in string form; the index itself
// enforces nothing about them.
type ChromaIndex struct {
	collection chromago.Collection
	logger     *zap.Logger
}

func NewChromaIndex(collection chromago.Collection, logger *zap.Logger) *ChromaIndex {
	return &ChromaIndex{collection: collection, logger: logger}
}

// Upsert writes one record per entry, overwriting any record that
// already carries the same id.
func (v *ChromaIndex) Upsert(ctx context.Context, entries []VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]chromago.DocumentID, 0, len(entries))
	vectors := make([]embeddings.Embedding, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, chromago.DocumentID(entry.ID))
		vectors = append(vectors, embeddings.NewEmbeddingFromFloat32(entry.Vector))
	}

	err := v.collection.Upsert(ctx,
		chromago.WithIDs(ids...),
		chromago.WithEmbeddings(vectors...),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert %d entries: %v", ErrIndexWrite, len(entries), err)
	}

	v.logger.Debug("upserted vector entries", zap.Int("count", len(entries)))
	return nil
}

// Query returns up to topK matches for the vector, closest first, in
// the order Chroma ranks them. Zero matches is a normal outcome.
func (v *ChromaIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 1
	}

	result, err := v.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query top %d: %v", ErrIndexRead, topK, err)
	}

	idGroups := result.GetIDGroups()
	distanceGroups := result.GetDistancesGroups()
	if len(idGroups) == 0 {
		return nil, nil
	}

	matches := make([]Match, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		match := Match{ID: string(id)}
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			match.Score = float32(distanceGroups[0][i])
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// DeleteByIDs removes the entries with the given ids. Ids with no entry
// are ignored, which keeps deletion idempotent.
func (v *ChromaIndex) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	docIDs := make([]chromago.DocumentID, 0, len(ids))
	for _, id := range ids {
		docIDs = append(docIDs, chromago.DocumentID(id))
	}

	if err := v.collection.Delete(ctx, chromago.WithIDsDelete(docIDs...)); err != nil {
		return fmt.Errorf("%w: delete %d entries: %v", ErrIndexWrite, len(ids), err)
	}
	return nil
}
