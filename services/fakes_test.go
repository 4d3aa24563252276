package services

import (
	"context"
	"fmt"
	"sync"

	"ragnotes/models"
)

// fakeEmbedder returns a vector derived from the text length so tests
// can tell which chunk produced which vector. failOn, when non-empty,
// makes that exact text fail.
type fakeEmbedder struct {
	failOn  string
	failAll bool
	calls   []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.failAll || (f.failOn != "" && text == f.failOn) {
		return nil, fmt.Errorf("%w: service returned no vector", ErrEmbedding)
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// fakeIndex keeps entries in a map and replays canned query matches.
type fakeIndex struct {
	mu        sync.Mutex
	entries   map[string][]float32
	matches   []Match
	upsertErr error
	queryErr  error
	deleteErr error
	deleted   []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: make(map[string][]float32)}
}

func (f *fakeIndex) Upsert(_ context.Context, entries []VectorEntry) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range entries {
		f.entries[e.ID] = e.Vector
	}
	return nil
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, topK int) ([]Match, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if topK < len(f.matches) {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeIndex) DeleteByIDs(_ context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.entries, id)
		f.deleted = append(f.deleted, id)
	}
	return nil
}

// fakeStore is an in-memory NoteStore with store-assigned sequential
// ids that are never reused.
type fakeStore struct {
	mu        sync.Mutex
	notes     map[uint]*models.Note
	nextID    uint
	createErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{notes: make(map[uint]*models.Note), nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, text, source string) (*models.Note, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	note := &models.Note{ID: f.nextID, Text: text, Source: source}
	f.notes[note.ID] = note
	f.nextID++
	return note, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uint) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notes[id], nil
}

func (f *fakeStore) DeleteByID(_ context.Context, id uint) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notes, id)
	return nil
}

func (f *fakeStore) DeleteBySource(_ context.Context, source string) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uint
	for id, n := range f.notes {
		if n.Source == source {
			ids = append(ids, id)
			delete(f.notes, id)
		}
	}
	return ids, nil
}

func (f *fakeStore) List(_ context.Context) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Note, 0, len(f.notes))
	for _, n := range f.notes {
		out = append(out, *n)
	}
	return out, nil
}

// fakeGenerator records the prompt it was handed and replies with a
// canned completion.
type fakeGenerator struct {
	name      string
	available bool
	reply     string
	err       error
	got       []Message
}

func (f *fakeGenerator) Name() string    { return f.name }
func (f *fakeGenerator) Available() bool { return f.available }

func (f *fakeGenerator) Complete(_ context.Context, messages []Message) (string, error) {
	f.got = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
