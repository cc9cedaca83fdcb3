package workflow

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

const (
	systemAuthor     = "System"
	logEntryIDPrefix = "log_"
)

// MergedTimeline returns notes and action log entries in one sequence,
// newest first. Nothing is written.
func (s *Service) MergedTimeline(ctx context.Context, caller models.Identity, applicationID uuid.UUID) ([]models.TimelineEntry, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, storeError(err, "application")
	}
	return s.timelineFor(ctx, app.ID, app.Notes)
}

func (s *Service) timelineFor(ctx context.Context, applicationID uuid.UUID, ledger json.RawMessage) ([]models.TimelineEntry, error) {
	logs, err := s.store.ListActionLogs(ctx, applicationID)
	if err != nil {
		return nil, storeError(err, "action log")
	}
	return BuildTimeline(readLedger(applicationID, ledger), logs), nil
}

// BuildTimeline projects notes (in ledger order) and logs (in seq order)
// into timeline entries sorted by time, newest first. Equal timestamps keep
// notes ahead of log entries, each in insertion order.
func BuildTimeline(notes []models.Note, logs []*models.ActionLog) []models.TimelineEntry {
	entries := make([]models.TimelineEntry, 0, len(notes)+len(logs))
	for _, n := range notes {
		entries = append(entries, models.TimelineEntry{
			ID:        n.ID,
			Content:   n.Content,
			CreatedAt: n.CreatedAt,
			Author:    n.Author,
		})
	}
	for _, l := range logs {
		entries = append(entries, projectActionLog(l))
	}

	slices.SortStableFunc(entries, func(a, b models.TimelineEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return entries
}

// projectActionLog attributes the entry to the system, not the admin who
// made the change.
func projectActionLog(l *models.ActionLog) models.TimelineEntry {
	return models.TimelineEntry{
		ID:        logEntryIDPrefix + l.ID.String(),
		Content:   "Status changed to " + strings.ToLower(l.Action),
		CreatedAt: l.Timestamp,
		Author:    systemAuthor,
	}
}
