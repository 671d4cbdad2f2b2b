package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/persistence"
	"github.com/ahmedabdul/staff-portal/internal/repository"
)

var t0 = time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

func newLedger(t *testing.T, now time.Time) *Ledger {
	t.Helper()
	l, err := New(context.Background(), nil, zap.NewNop())
	require.NoError(t, err)
	return l.WithClock(func() time.Time { return now })
}

func add(t *testing.T, l *Ledger, author string, date time.Time) domain.Report {
	t.Helper()
	r, err := l.AddReport(context.Background(), NewReport{
		Title: "Q1 Audit", Client: "Acme", Description: "...", Date: date, Author: author, File: "blob-1",
	})
	require.NoError(t, err)
	return r
}

func TestAddAndApproveScenario(t *testing.T) {
	l := newLedger(t, t0.Add(5*time.Hour))
	r := add(t, l, "amy-id", t0)

	assert.Len(t, l.Reports(), 1)
	assert.Equal(t, domain.ReportStatusPending, r.Status)
	assert.Nil(t, r.ReviewDate)
	assert.Empty(t, r.Comments)
	assert.NotEmpty(t, r.ID)

	approved, err := l.ApproveReport(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewDate)
	assert.False(t, approved.ReviewDate.Before(t0))

	stored, ok := l.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, approved, stored)
}

func TestRejectAndTransitionGuard(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, t0.Add(time.Hour))
	r := add(t, l, "amy-id", t0)

	rejected, err := l.RejectReport(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusRejected, rejected.Status)

	_, err = l.ApproveReport(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = l.RejectReport(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, _ := l.Get(r.ID)
	assert.Equal(t, rejected, stored, "failed transition leaves the report untouched")
}

func TestReviewDateNeverPrecedesSubmission(t *testing.T) {
	future := t0.Add(48 * time.Hour)
	l := newLedger(t, t0)
	r := add(t, l, "amy-id", future)

	approved, err := l.ApproveReport(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, future, *approved.ReviewDate)
}

func TestUnknownReport(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, t0)
	add(t, l, "amy-id", t0)
	before := l.Reports()

	_, err := l.ApproveReport(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
	_, err = l.RejectReport(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
	_, err = l.AddComment(ctx, NewComment{ReportID: "missing", Comment: "hi", Author: "Pat"})
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
	_, ok := l.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, before, l.Reports())
}

func TestCommentsPreserveOrder(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, t0)
	r := add(t, l, "amy-id", t0)

	c1, err := l.AddComment(ctx, NewComment{ReportID: r.ID, Comment: "first", Author: "Pat", Timestamp: t0})
	require.NoError(t, err)
	_, err = l.ApproveReport(ctx, r.ID)
	require.NoError(t, err)
	c2, err := l.AddComment(ctx, NewComment{ReportID: r.ID, Comment: "second", Author: "Admin"})
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID, c2.ID)
	assert.Equal(t, t0, c2.Timestamp, "zero timestamp defaults to now")
	assert.Equal(t, r.ID, c1.ReportID)

	stored, _ := l.Get(r.ID)
	assert.Equal(t, []domain.Comment{c1, c2}, stored.Comments)
}

func TestReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, t0)
	r := add(t, l, "amy-id", t0)
	_, err := l.AddComment(ctx, NewComment{ReportID: r.ID, Comment: "c", Author: "Pat"})
	require.NoError(t, err)

	got, _ := l.Get(r.ID)
	got.Comments[0].Comment = "edited"
	got.Title = "edited"

	again, _ := l.Get(r.ID)
	assert.Equal(t, "c", again.Comments[0].Comment)
	assert.Equal(t, "Q1 Audit", again.Title)
}

func TestGetUserReports(t *testing.T) {
	l := newLedger(t, t0)
	a1 := add(t, l, "amy", t0)
	add(t, l, "bob", t0)
	a2 := add(t, l, "amy", t0.Add(-time.Hour))

	assert.Equal(t, []domain.Report{a1, a2}, l.GetUserReports("amy"))
	got := l.GetUserReports("nobody")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDurableLedgerReloads(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewReportRepository(persistence.NewMemory())

	l, err := New(ctx, repo, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, l.Durable())
	r, err := l.AddReport(ctx, NewReport{Title: "T", Client: "C", Description: "D", Date: t0, Author: "amy"})
	require.NoError(t, err)
	_, err = l.ApproveReport(ctx, r.ID)
	require.NoError(t, err)

	reloaded, err := New(ctx, repo, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, reloaded.Reports(), 1)
	assert.Equal(t, domain.ReportStatusApproved, reloaded.Reports()[0].Status)
}

type failingRepo struct{}

func (failingRepo) Load(context.Context) ([]domain.Report, error) { return nil, nil }
func (failingRepo) Save(context.Context, []domain.Report) error  { return errors.New("disk full") }

func TestFailedSnapshotLeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	l, err := New(ctx, failingRepo{}, zap.NewNop())
	require.NoError(t, err)

	_, err = l.AddReport(ctx, NewReport{Title: "T"})
	assert.Error(t, err)
	assert.Empty(t, l.Reports())
}

func TestConcurrentMutationsApplyWhole(t *testing.T) {
	ctx := context.Background()
	medium := persistence.NewMemory()
	l, err := New(ctx, repository.NewReportRepository(medium), zap.NewNop())
	require.NoError(t, err)
	shared := add(t, l, "amy-id", t0)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := l.AddReport(ctx, NewReport{
				Title: fmt.Sprintf("Report %d", i), Client: "Acme", Description: "...", Date: t0, Author: "amy-id", File: "blob",
			})
			if !assert.NoError(t, err) {
				return
			}
			_, err = l.AddComment(ctx, NewComment{ReportID: r.ID, Comment: "own", Author: "Amy"})
			assert.NoError(t, err)
			_, err = l.AddComment(ctx, NewComment{ReportID: shared.ID, Comment: "shared", Author: "Pat"})
			assert.NoError(t, err)
			_ = l.GetUserReports("amy-id")
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.Reports(), n+1)
	got, ok := l.Get(shared.ID)
	require.True(t, ok)
	assert.Len(t, got.Comments, n)
	for _, r := range l.Reports() {
		if r.ID != shared.ID {
			assert.Len(t, r.Comments, 1, r.Title)
		}
	}

	reloaded, err := New(ctx, repository.NewReportRepository(medium), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, reloaded.Reports(), n+1)
	got, ok = reloaded.Get(shared.ID)
	require.True(t, ok)
	assert.Len(t, got.Comments, n)
}
