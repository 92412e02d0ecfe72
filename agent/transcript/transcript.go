// Package transcript stores long meeting or call transcripts as CRM notes,
// splitting them into note-sized chunks when they exceed the CRM's note
// body limit.
package transcript

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/kingswood/clienthub/agent/contract"
	logx "github.com/kingswood/clienthub/pkg/logger"
)

// maxNoteChars is the CRM's note body ceiling. Each stored chunk, header
// included, must fit under it.
const maxNoteChars = 64000

// Splits prefer a newline boundary, but only past half the budget so a
// pathological line cannot shrink chunks arbitrarily.
const minSplitPoint = maxNoteChars / 2

// Split cuts content into chunks that each fit in one CRM note together
// with their "--- kind | date | Part i of n ---" header. Concatenating the
// chunk bodies reproduces content exactly.
func Split(kind, date, content string) []string {
	budget := maxNoteChars - headerOverhead(kind, date)
	pieces := splitRaw(content, budget)

	chunks := make([]string, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, header(kind, date, i+1, len(pieces))+piece)
	}
	return chunks
}

func header(kind, date string, part, total int) string {
	return fmt.Sprintf("--- %s | %s | Part %d of %d ---\n", kind, date, part, total)
}

// headerOverhead sizes the header with four-digit part numbers so the
// rendered header never pushes a chunk over the note ceiling.
func headerOverhead(kind, date string) int {
	return len(header(kind, date, 9999, 9999))
}

func splitRaw(content string, budget int) []string {
	if len(content) <= budget {
		return []string{content}
	}
	var pieces []string
	for len(content) > budget {
		cut := budget
		if idx := strings.LastIndexByte(content[:budget], '\n'); idx >= minSplitPoint {
			cut = idx + 1 // keep the newline with the earlier piece
		}
		pieces = append(pieces, content[:cut])
		content = content[cut:]
	}
	return append(pieces, content)
}

// Ingester writes transcripts to the CRM.
type Ingester struct {
	crm contractx.CRMGateway
}

func NewIngester(crm contractx.CRMGateway) *Ingester {
	return &Ingester{crm: crm}
}

// Ingest stores one transcript against a contact, one note per chunk, in
// order. It returns the number of notes written; on error the earlier
// chunks stay written and the count reflects them.
func (in *Ingester) Ingest(ctx context.Context, contactID, kind, date, content string) (int, error) {
	if strings.TrimSpace(contactID) == "" {
		return 0, fmt.Errorf("%w: contact id is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("%w: transcript content is empty", contractx.ErrValidation)
	}
	if kind == "" {
		kind = "Transcript"
	}

	chunks := Split(kind, date, content)
	for i, chunk := range chunks {
		if err := in.crm.CreateNote(ctx, contactID, chunk); err != nil {
			return i, fmt.Errorf("store transcript chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}

	logx.Component("transcript").Info().
		Str("contact_id", contactID).
		Str("kind", kind).
		Int("chunks", len(chunks)).
		Int("chars", len(content)).
		Msg("transcript stored")
	return len(chunks), nil
}
