package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ragnotes/models"
)

// NoteRepository implements NoteStore on a gorm-managed notes table.
type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a note row and returns it with its store-assigned id.
// source is the originating file path for watcher-ingested notes and
// empty for notes created through the API.
func (r *NoteRepository) Create(ctx context.Context, text, source string) (*models.Note, error) {
	note := &models.Note{Text: text, Source: source}
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, fmt.Errorf("%w: insert note: %v", ErrStorageWrite, err)
	}
	return note, nil
}

// GetByID returns the note with the given id, or nil when no row
// exists. A missing row is not an error: retrieval must tolerate
// index entries whose note has gone away.
func (r *NoteRepository) GetByID(ctx context.Context, id uint) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).First(&note, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select note %d: %v", ErrStorageRead, id, err)
	}
	return &note, nil
}

// DeleteByID removes the note row. Deleting a missing row is a no-op.
func (r *NoteRepository) DeleteByID(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Note{}, id).Error; err != nil {
		return fmt.Errorf("%w: delete note %d: %v", ErrStorageWrite, id, err)
	}
	return nil
}

// DeleteBySource removes every note row ingested from the given file
// path and returns the ids that were removed, so the caller can clear
// the matching vector entries.
func (r *NoteRepository) DeleteBySource(ctx context.Context, source string) ([]uint, error) {
	var notes []models.Note
	if err := r.db.WithContext(ctx).Select("id").Where("source = ?", source).Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("%w: select notes for source %q: %v", ErrStorageRead, source, err)
	}
	if len(notes) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	if err := r.db.WithContext(ctx).Where("source = ?", source).Delete(&models.Note{}).Error; err != nil {
		return nil, fmt.Errorf("%w: delete notes for source %q: %v", ErrStorageWrite, source, err)
	}
	return ids, nil
}

// List returns all note rows, newest first.
func (r *NoteRepository) List(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("%w: list notes: %v", ErrStorageRead, err)
	}
	return notes, nil
}
