// Package chunker provides fixed-size text chunking for ingestion.
package chunker

import (
	"strings"

	"github.com/custodia-labs/docquery/internal/core/domain"
)

// Splitter cuts page text into fixed-size overlapping chunks. Windows are
// measured in runes so multibyte text never splits mid-character.
type Splitter struct {
	size    int
	overlap int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithSize sets the chunk size in runes.
func WithSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.size = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in runes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		size:    domain.DefaultChunkSize,
		overlap: domain.DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.size {
		s.overlap = s.size / 4
	}

	return s
}

// Size returns the configured chunk size in runes.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap in runes.
func (s *Splitter) Overlap() int { return s.overlap }

// Split chunks every page in order and assigns each chunk its ordinal
// within the whole batch. Chunks never span pages; a chunk always cites
// exactly one page number. Pages with no visible text yield no chunks.
func (s *Splitter) Split(pages []domain.Page) []domain.PendingChunk {
	var chunks []domain.PendingChunk
	ordinal := 0

	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}

		runes := []rune(page.Text)
		stride := s.size - s.overlap

		for start := 0; start < len(runes); start += stride {
			end := start + s.size
			if end > len(runes) {
				end = len(runes)
			}

			content := string(runes[start:end])
			if strings.TrimSpace(content) == "" {
				continue
			}

			chunks = append(chunks, domain.PendingChunk{
				PageNumber: page.Number,
				ChunkIndex: ordinal,
				Content:    content,
			})
			ordinal++

			if end == len(runes) {
				break
			}
		}
	}

	return chunks
}
