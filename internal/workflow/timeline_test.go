package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/hireflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, sec, 0, time.UTC)
}

func TestBuildTimeline_DescendingAcrossLedgers(t *testing.T) {
	notes := []models.Note{
		{ID: "n10", Content: "note at 10", CreatedAt: at(10), Author: "Grace"},
		{ID: "n30", Content: "note at 30", CreatedAt: at(30), Author: "Grace"},
	}
	logs := []*models.ActionLog{
		{ID: uuid.New(), Seq: 1, Action: "ON_HOLD", Timestamp: at(20)},
		{ID: uuid.New(), Seq: 2, Action: "ACCEPTED", Timestamp: at(40)},
	}

	got := BuildTimeline(notes, logs)
	require.Len(t, got, 4)

	var times []time.Time
	for _, e := range got {
		times = append(times, e.CreatedAt)
	}
	assert.Equal(t, []time.Time{at(40), at(30), at(20), at(10)}, times)
	assert.Equal(t, "Status changed to accepted", got[0].Content)
	assert.Equal(t, "note at 30", got[1].Content)
	assert.Equal(t, "Status changed to on_hold", got[2].Content)
	assert.Equal(t, "note at 10", got[3].Content)
}

func TestBuildTimeline_ProjectsLogsAsSystem(t *testing.T) {
	logID := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	got := BuildTimeline(nil, []*models.ActionLog{
		{ID: logID, Action: "REJECTED", PerformedBy: uuid.New(), Timestamp: at(5)},
	})

	require.Len(t, got, 1)
	assert.Equal(t, models.TimelineEntry{
		ID:        "log_aaaaaaaa-0000-0000-0000-000000000001",
		Content:   "Status changed to rejected",
		CreatedAt: at(5),
		Author:    "System",
	}, got[0])
}

func TestBuildTimeline_TiesKeepNotesFirstThenInsertionOrder(t *testing.T) {
	notes := []models.Note{
		{ID: "n1", CreatedAt: at(10)},
		{ID: "n2", CreatedAt: at(10)},
	}
	l1, l2 := uuid.New(), uuid.New()
	logs := []*models.ActionLog{
		{ID: l1, Seq: 1, Action: "PENDING", Timestamp: at(10)},
		{ID: l2, Seq: 2, Action: "ACCEPTED", Timestamp: at(10)},
	}

	got := BuildTimeline(notes, logs)
	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"n1", "n2", "log_" + l1.String(), "log_" + l2.String()}, ids)
}

func TestBuildTimeline_Empty(t *testing.T) {
	got := BuildTimeline(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMergedTimeline_ReadsWithoutMutating(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()
	admin := adminCaller()
	app := st.addApplication(uuid.New(), uuid.New(), "[]")

	_, err := svc.ApplyStatusChange(ctx, admin, app.ID, "on_hold")
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, admin, app.ID, "waiting on references")
	require.NoError(t, err)
	_, err = svc.ApplyStatusChange(ctx, admin, app.ID, "accepted")
	require.NoError(t, err)

	notesBefore := st.rawNotes(app.ID)
	logsBefore := len(st.logsFor(app.ID))

	got, err := svc.MergedTimeline(ctx, admin, app.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Status changed to accepted", got[0].Content)
	assert.Equal(t, "waiting on references", got[1].Content)
	assert.Equal(t, "Grace Hopper", got[1].Author)
	assert.Equal(t, "Status changed to on_hold", got[2].Content)
	assert.Equal(t, "System", got[2].Author)

	assert.Equal(t, notesBefore, st.rawNotes(app.ID))
	assert.Len(t, st.logsFor(app.ID), logsBefore)
}

func TestMergedTimeline_NotFoundAndUnauthorized(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	_, err := svc.MergedTimeline(ctx, adminCaller(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	app := st.addApplication(uuid.New(), uuid.New(), "[]")
	_, err = svc.MergedTimeline(ctx, models.Identity{ID: uuid.New(), Role: models.RoleApplicant}, app.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUnknownApplication_EveryAdminOperationIsNotFound(t *testing.T) {
	svc, st, files := newTestService()
	ctx := context.Background()
	admin := adminCaller()
	missing := uuid.New()

	ops := map[string]func() error{
		"status": func() error {
			_, err := svc.ApplyStatusChange(ctx, admin, missing, "accepted")
			return err
		},
		"add note": func() error {
			_, err := svc.AddNote(ctx, admin, missing, "hello")
			return err
		},
		"list notes": func() error {
			_, err := svc.ListNotes(ctx, admin, missing)
			return err
		},
		"timeline": func() error {
			_, err := svc.MergedTimeline(ctx, admin, missing)
			return err
		},
		"detail": func() error {
			_, err := svc.GetApplicationDetail(ctx, admin, missing)
			return err
		},
		"resume": func() error {
			_, err := svc.ResumeDownload(ctx, admin, missing)
			return err
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), ErrNotFound)
		})
	}

	assert.Zero(t, st.appCount())
	assert.Empty(t, st.logs)
	assert.Zero(t, files.count())
}
