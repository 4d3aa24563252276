package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockRepository(t *testing.T) (*NoteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return NewNoteRepository(gormDB), mock
}

func TestNoteRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	note, err := repo.Create(context.Background(), "The sky is blue", "")
	require.NoError(t, err)
	assert.Equal(t, uint(7), note.ID)
	assert.Equal(t, "The sky is blue", note.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryCreateFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "notes"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), "text", "")
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryGetByID(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text"}).AddRow(3, "stored text"))

	note, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "stored text", note.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryGetByIDMissing(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text"}))

	// A missing row is reported as nil note, nil error, not a failure.
	note, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryDeleteMissingIsNoOp(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "notes"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.NoError(t, repo.DeleteByID(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryDeleteBySource(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT "id" FROM "notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "notes"`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ids, err := repo.DeleteBySource(context.Background(), "/notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryDeleteBySourceNoRows(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT "id" FROM "notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := repo.DeleteBySource(context.Background(), "/notes/missing.md")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryList(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "notes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text"}).
			AddRow(2, "newer").
			AddRow(1, "older"))

	notes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "newer", notes[0].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}
