package models

// CreateNoteResponse reports what was persisted for one ingested text.
// ID and Text echo the first chunk's note row; NoteIDs lists every chunk
// that made it through both stores.
type CreateNoteResponse struct {
	ID       uint     `json:"id"`
	Text     string   `json:"text"`
	Indexed  bool     `json:"indexed"`
	NoteIDs  []uint   `json:"note_ids"`
	Warnings []string `json:"warnings,omitempty"`
}

// QueryResponse is the answer to a question, with the note ids whose
// text was supplied as context and the model that produced the answer.
type QueryResponse struct {
	Answer     string   `json:"answer"`
	MatchedIDs []string `json:"matched_ids"`
	Model      string   `json:"model"`
}

// ListNotesResponse is the structure for the response of GET /notes.
type ListNotesResponse struct {
	Count int    `json:"count"`
	Notes []Note `json:"notes"`
}
