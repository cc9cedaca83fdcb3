package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

// CanTransition is the single authority on which status moves are allowed.
// Every move is currently permitted, including a move to the same status.
func CanTransition(from, to models.Status) bool {
	return from.Valid() && to.Valid()
}

// ApplyStatusChange moves an application to rawStatus and records the move
// in its action log. The status write and the log entry commit together.
// A self-transition still appends one log entry.
func (s *Service) ApplyStatusChange(ctx context.Context, caller models.Identity, applicationID uuid.UUID, rawStatus string) (models.Status, error) {
	if err := requireAdmin(caller); err != nil {
		return "", err
	}
	next, err := models.ParseStatus(rawStatus)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return "", storeError(err, "application")
	}
	if !CanTransition(app.Status, next) {
		return "", invalidArgument("cannot move application from %s to %s", app.Status.Lower(), next.Lower())
	}

	entry := &models.ActionLog{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		Action:        string(next),
		PerformedBy:   caller.ID,
		Timestamp:     s.now(),
	}
	if err := s.store.UpdateApplicationStatus(ctx, applicationID, next, entry); err != nil {
		return "", storeError(err, "application")
	}
	return next, nil
}
