package services

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// IngestResult reports which chunks of one ingested text made it
// through both stores. NoteIDs holds the ids of fully indexed chunks in
// segment order; Warnings carries one entry per chunk that failed (and,
// when the compensating row delete also failed, the orphan it left).
type IngestResult struct {
	NoteIDs  []uint
	Warnings []string
}

// chunkUnit is the state one chunk carries through its three ingestion
// steps. Each loop iteration gets its own value so a chunk can never
// observe another chunk's row id or vector.
type chunkUnit struct {
	text   string
	noteID uint
	vector []float32
}

// IngestService coordinates the write path (chunk, insert row, embed,
// upsert vector) and the delete path (remove row and vector together).
type IngestService struct {
	chunker  *Chunker
	notes    NoteStore
	embedder Embedder
	index    VectorIndex
	logger   *zap.Logger
}

func NewIngestService(chunker *Chunker, notes NoteStore, embedder Embedder, index VectorIndex, logger *zap.Logger) *IngestService {
	return &IngestService{
		chunker:  chunker,
		notes:    notes,
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// Ingest splits rawText into chunks and persists each one as a note
// row plus a vector entry sharing the row's id. Chunks are processed
// strictly in order and one at a time; the loop stops at the first
// chunk whose unit fails, reporting the chunks that succeeded. When a
// chunk's embedding or upsert fails, the note row created for it is
// rolled back so the two stores stay paired.
//
// An empty rawText is ErrInput; text that splits into zero chunks
// returns an empty result without touching either store.
func (s *IngestService) Ingest(ctx context.Context, rawText, source string) (*IngestResult, error) {
	result := &IngestResult{}
	if rawText == "" {
		return result, fmt.Errorf("%w: missing text", ErrInput)
	}

	chunks, err := s.chunker.Split(rawText)
	if err != nil {
		return result, fmt.Errorf("%w: split text: %v", ErrInput, err)
	}
	if len(chunks) == 0 {
		s.logger.Info("nothing to ingest", zap.String("source", source))
		return result, nil
	}

	for i, chunk := range chunks {
		unit := chunkUnit{text: chunk}

		if err := s.processChunk(ctx, &unit, source); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("chunk %d: %v", i, err))
			s.logger.Warn("chunk ingestion failed",
				zap.Int("chunk", i),
				zap.Int("ingested", len(result.NoteIDs)),
				zap.Error(err))
			return result, err
		}

		result.NoteIDs = append(result.NoteIDs, unit.noteID)
	}

	s.logger.Info("ingested text",
		zap.Int("chunks", len(result.NoteIDs)),
		zap.String("source", source))
	return result, nil
}

// processChunk runs one chunk's three-step unit: insert the row, embed
// the text, upsert the vector under the row's id. On a step 2 or 3
// failure the row from step 1 is deleted again; if that compensating
// delete fails too, the orphan is reported through the returned error.
func (s *IngestService) processChunk(ctx context.Context, unit *chunkUnit, source string) error {
	note, err := s.notes.Create(ctx, unit.text, source)
	if err != nil {
		return err
	}
	unit.noteID = note.ID

	unit.vector, err = s.embedder.Embed(ctx, unit.text)
	if err != nil {
		return s.rollbackNote(ctx, unit.noteID, err)
	}

	entry := VectorEntry{ID: strconv.FormatUint(uint64(unit.noteID), 10), Vector: unit.vector}
	if err := s.index.Upsert(ctx, []VectorEntry{entry}); err != nil {
		return s.rollbackNote(ctx, unit.noteID, err)
	}

	return nil
}

func (s *IngestService) rollbackNote(ctx context.Context, noteID uint, cause error) error {
	if err := s.notes.DeleteByID(ctx, noteID); err != nil {
		return fmt.Errorf("%w (rollback of note %d failed, row orphaned: %v)", cause, noteID, err)
	}
	return cause
}

// Delete removes the note row and the vector entry sharing its id.
// Both deletes are attempted even when a target does not exist, so
// deleting the same id twice is a no-op the second time. If the index
// delete fails after the row delete succeeded, the dangling entry
// remains until the caller retries.
func (s *IngestService) Delete(ctx context.Context, id uint) error {
	if err := s.notes.DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := s.index.DeleteByIDs(ctx, []string{strconv.FormatUint(uint64(id), 10)}); err != nil {
		return err
	}
	s.logger.Info("deleted note", zap.Uint("id", id))
	return nil
}

// DeleteBySource removes every note ingested from the given file path,
// rows first, then their vector entries.
func (s *IngestService) DeleteBySource(ctx context.Context, source string) error {
	ids, err := s.notes.DeleteBySource(ctx, source)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	vectorIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		vectorIDs = append(vectorIDs, strconv.FormatUint(uint64(id), 10))
	}
	if err := s.index.DeleteByIDs(ctx, vectorIDs); err != nil {
		return err
	}

	s.logger.Info("deleted notes for source",
		zap.String("source", source),
		zap.Int("count", len(ids)))
	return nil
}
