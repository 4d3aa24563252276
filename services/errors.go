package services

import "errors"

// Failure kinds for every collaborator the core orchestrates. Services
// wrap these with fmt.Errorf and %w so the controller can classify a
// failure with errors.Is without knowing which layer produced it.
var (
	// ErrInput marks missing or invalid caller input (client error).
	ErrInput = errors.New("invalid input")

	// ErrStorageWrite marks a failed insert or delete on the notes table.
	ErrStorageWrite = errors.New("note store write failed")

	// ErrStorageRead marks a failed read on the notes table.
	ErrStorageRead = errors.New("note store read failed")

	// ErrEmbedding marks an embedding call that returned no vector.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexWrite marks a failed upsert or delete on the vector index.
	ErrIndexWrite = errors.New("vector index write failed")

	// ErrIndexRead marks a failed query on the vector index.
	ErrIndexRead = errors.New("vector index read failed")

	// ErrGeneration marks a generation call that produced no usable text.
	ErrGeneration = errors.New("generation failed")
)
