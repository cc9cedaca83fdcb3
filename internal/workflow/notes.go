package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

const fallbackAuthor = "Admin"

// NoteAuthor picks the display name recorded on a note: the caller's name,
// then their email, then a fixed label.
func NoteAuthor(caller models.Identity) string {
	for _, candidate := range []string{caller.Name, caller.Email} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c
		}
	}
	return fallbackAuthor
}

// AddNote appends a note to the application's ledger. Identical content is
// not deduplicated.
func (s *Service) AddNote(ctx context.Context, caller models.Identity, applicationID uuid.UUID, content string) (*models.Note, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidArgument("note content is required")
	}

	note := models.Note{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: s.now(),
		Author:    NoteAuthor(caller),
	}

	err := s.store.UpdateNotes(ctx, applicationID, func(current json.RawMessage) (json.RawMessage, error) {
		notes, err := decodeLedger(current)
		if err != nil {
			// Never overwrite a ledger we cannot read.
			return nil, fmt.Errorf("%w: note ledger is unreadable: %v", ErrInternal, err)
		}
		return json.Marshal(append(notes, note))
	})
	if err != nil {
		return nil, storeError(err, "application")
	}
	return &note, nil
}

// ListNotes returns the application's notes, newest first.
func (s *Service) ListNotes(ctx context.Context, caller models.Identity, applicationID uuid.UUID) ([]models.Note, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, storeError(err, "application")
	}

	notes := readLedger(app.ID, app.Notes)
	slices.SortStableFunc(notes, func(a, b models.Note) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return notes, nil
}

// readLedger decodes a ledger for display. Corrupt data degrades to an
// empty ledger so one bad record never blocks a read.
func readLedger(applicationID uuid.UUID, raw json.RawMessage) []models.Note {
	notes, err := decodeLedger(raw)
	if err != nil {
		slog.Warn("unreadable note ledger, showing none",
			"application_id", applicationID,
			"error", err,
		)
		return []models.Note{}
	}
	return notes
}

// decodeLedger parses the persisted ledger. Older rows stored the array
// JSON-encoded inside a string; both forms are accepted.
func decodeLedger(raw json.RawMessage) ([]models.Note, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []models.Note{}, nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("decode legacy ledger: %w", err)
		}
		raw = bytes.TrimSpace([]byte(inner))
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return []models.Note{}, nil
		}
	}

	notes := []models.Note{}
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	return notes, nil
}
