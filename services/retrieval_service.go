package services

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// RetrievalContext is the ordered context assembled for one question:
// note texts closest-first in the index's rank order, plus the ids of
// the notes that actually contributed.
type RetrievalContext struct {
	Texts      []string
	MatchedIDs []string
}

// RetrievalService turns a question into ranked note texts: embed the
// question, query the index, look each match's note up by id.
type RetrievalService struct {
	embedder Embedder
	index    VectorIndex
	notes    NoteStore
	logger   *zap.Logger
}

func NewRetrievalService(embedder Embedder, index VectorIndex, notes NoteStore, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		notes:    notes,
		logger:   logger,
	}
}

// Retrieve returns the context for question. Zero matches from the
// index is a normal outcome and yields an empty context; a matched id
// whose note row is missing is skipped rather than failing the request,
// since the two stores are only best-effort consistent. An embedding or
// index failure is propagated and no context is assembled.
func (s *RetrievalService) Retrieve(ctx context.Context, question string, topK int) (*RetrievalContext, error) {
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	matches, err := s.index.Query(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	result := &RetrievalContext{}
	if len(matches) == 0 {
		s.logger.Info("no matching vectors for question")
		return result, nil
	}

	for _, match := range matches {
		id, err := strconv.ParseUint(match.ID, 10, 64)
		if err != nil {
			s.logger.Warn("skipping non-numeric vector id", zap.String("id", match.ID))
			continue
		}

		note, err := s.notes.GetByID(ctx, uint(id))
		if err != nil {
			return nil, err
		}
		if note == nil {
			s.logger.Warn("matched vector has no note row", zap.String("id", match.ID))
			continue
		}

		result.Texts = append(result.Texts, note.Text)
		result.MatchedIDs = append(result.MatchedIDs, match.ID)
	}

	s.logger.Info("retrieved context",
		zap.Int("matches", len(matches)),
		zap.Int("notes", len(result.Texts)))
	return result, nil
}
