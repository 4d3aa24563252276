package models

// CreateNoteRequest is the body of POST /api/v1/notes.
type CreateNoteRequest struct {
	Text string `json:"text"`
}

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}
