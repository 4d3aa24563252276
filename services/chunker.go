package services

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker splits raw text into bounded, overlapping segments suitable
// for embedding. Splitting is deterministic and keeps segment order;
// the index never sees the unsplit document.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
	maxSize  int
}

// NewChunker builds a chunker with the given maximum segment size and
// overlap (both in characters). Non-positive values fall back to the
// defaults used for note ingestion.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 100
	}
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
		maxSize: chunkSize,
	}
}

// Split returns the ordered, non-empty segments of text. Empty or
// whitespace-only input yields no segments, which the ingestion
// coordinator treats as "nothing to ingest" rather than an error.
func (c *Chunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	segments, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	chunks := make([]string, 0, len(segments))
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			continue
		}
		chunks = append(chunks, s)
	}
	return chunks, nil
}
