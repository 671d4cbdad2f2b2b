package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ahmedabdul/staff-portal/internal/blob"
	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/events"
	"github.com/ahmedabdul/staff-portal/internal/ledger"
	"github.com/ahmedabdul/staff-portal/internal/persistence"
	"github.com/ahmedabdul/staff-portal/internal/repository"
	"github.com/ahmedabdul/staff-portal/internal/session"
	apperrors "github.com/ahmedabdul/staff-portal/pkg/util/errorutil"
)

const adminEmail = "admin@ahmedabdul.com"

var (
	amy   = domain.StaffMember{ID: "amy", Email: "amy@ahmedabdul.com", Name: "Amy", Role: domain.StaffRoleStaff}
	bob   = domain.StaffMember{ID: "bob", Email: "bob@ahmedabdul.com", Name: "Bob", Role: domain.StaffRoleStaff}
	pat   = domain.StaffMember{ID: "pat", Email: "pat@ahmedabdul.com", Name: "Pat", Role: domain.StaffRoleManagingPartner}
	quinn = domain.StaffMember{ID: "quinn", Email: "quinn@ahmedabdul.com", Name: "Quinn", Role: domain.StaffRoleManagingPartner}
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	svc        *ReportService
	ledger     *ledger.Ledger
	roster     *session.Roster
	blobs      blob.Store
	dispatcher events.Dispatcher
	rec        *recorder
	now        time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewStaffRepository(persistence.NewMemory())
	require.NoError(t, repo.Save(ctx, []domain.StaffMember{amy, bob, pat, quinn}))
	roster, err := session.NewRoster(ctx, repo, adminEmail, zap.NewNop())
	require.NoError(t, err)

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	l, err := ledger.New(ctx, nil, zap.NewNop())
	require.NoError(t, err)
	l.WithClock(clock)

	h := &harness{
		ledger:     l,
		roster:     roster,
		blobs:      blob.NewMemory(),
		dispatcher: events.NewInMemoryDispatcher(),
		rec:        &recorder{},
		now:        now,
	}
	for _, et := range events.AllTypes {
		h.dispatcher.Subscribe(et, h.rec.handle)
	}
	h.svc = NewReportService(ReportDependencies{
		Ledger:     l,
		Roster:     roster,
		Blobs:      h.blobs,
		Dispatcher: h.dispatcher,
		Logger:     zap.NewNop(),
		Now:        clock,
	})
	return h
}

func viewer(m domain.StaffMember) domain.Session { return domain.Authenticated(m, adminEmail) }

func adminViewer() domain.Session {
	return domain.Authenticated(domain.NewAdministrator(adminEmail, time.Now()), adminEmail)
}

func submission(title, assignee string) SubmitInput {
	return SubmitInput{
		Title:       title,
		Client:      "Acme",
		Description: "Quarterly review",
		AssignedTo:  assignee,
		FileName:    "q1.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("%PDF-1.4 " + title),
	}
}

func (h *harness) submit(t *testing.T, by domain.StaffMember, title, assignee string) domain.Report {
	t.Helper()
	r, err := h.svc.Submit(context.Background(), viewer(by), submission(title, assignee))
	require.NoError(t, err)
	return r
}

func TestSubmitStoresAttachmentAndPublishes(t *testing.T) {
	h := newHarness(t)
	r := h.submit(t, amy, "  Q1 audit ", "pat")

	assert.Equal(t, "Q1 audit", r.Title)
	assert.Equal(t, "amy", r.Author)
	assert.Equal(t, "pat", r.AssignedTo)
	assert.Equal(t, domain.ReportStatusPending, r.Status)
	assert.Equal(t, h.now, r.Date)
	assert.True(t, strings.HasPrefix(r.File, "reports/"))

	_, rc, err := h.blobs.Get(context.Background(), r.File)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "%PDF-1.4   Q1 audit ", string(body))

	assert.Equal(t, []events.EventType{events.EventReportSubmitted}, h.rec.types())
	payload := h.rec.events[0].Payload.(events.ReportSubmittedPayload)
	assert.Equal(t, "pat", payload.AssignedTo)
	assert.Equal(t, "Amy", h.rec.events[0].Actor.Name)
}

func TestSubmitValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Submit(ctx, domain.Anonymous(), submission("Q1", "pat"))
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "UNAUTHORIZED", de.Code)

	in := submission(" ", "pat")
	in.Body = nil
	_, err = h.svc.Submit(ctx, viewer(amy), in)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, []string{"title", "file"}, de.Details["fields"])

	_, err = h.svc.Submit(ctx, viewer(amy), submission("Q1", "bob"))
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)

	_, err = h.svc.Submit(ctx, viewer(amy), submission("Q1", "ghost"))
	require.ErrorAs(t, err, &de)

	assert.Empty(t, h.ledger.Reports())
	assert.Empty(t, h.rec.types())
}

type brokenBlobs struct{ blob.Store }

func (brokenBlobs) Put(context.Context, string, io.Reader, blob.PutOptions) (blob.Info, error) {
	return blob.Info{}, errors.New("disk full")
}

func TestSubmitBlobFailure(t *testing.T) {
	h := newHarness(t)
	h.svc.blobs = brokenBlobs{Store: h.blobs}

	_, err := h.svc.Submit(context.Background(), viewer(amy), submission("Q1", "pat"))
	assert.ErrorIs(t, err, domain.ErrResourceUnavailable)
	assert.Empty(t, h.ledger.Reports())
}

func TestListForViewerScopes(t *testing.T) {
	h := newHarness(t)
	a := h.submit(t, amy, "Amy for Pat", "pat")
	b := h.submit(t, bob, "Bob for Quinn", "quinn")
	c := h.submit(t, amy, "Amy for Quinn", "quinn")

	ids := func(rs []domain.Report) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	got, err := h.svc.ListForViewer(viewer(amy), ReportFilters{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, c.ID}, ids(got))

	got, err = h.svc.ListForViewer(viewer(quinn), ReportFilters{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b.ID, c.ID}, ids(got))

	got, err = h.svc.ListForViewer(adminViewer(), ReportFilters{})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = h.svc.ListForViewer(adminViewer(), ReportFilters{Search: "bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(got), "search matches the author")

	_, err = h.svc.ListForViewer(domain.Anonymous(), ReportFilters{})
	assert.Error(t, err)
}

func TestGetVisibility(t *testing.T) {
	h := newHarness(t)
	r := h.submit(t, amy, "Q1", "pat")

	for _, v := range []domain.Session{viewer(amy), viewer(pat), adminViewer()} {
		got, err := h.svc.Get(v, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, got.ID)
	}
	for _, v := range []domain.Session{viewer(bob), viewer(quinn)} {
		_, err := h.svc.Get(v, r.ID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	}
	_, err := h.svc.Get(viewer(amy), "missing")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestReviewPermissions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r := h.submit(t, amy, "Q1", "pat")

	_, err := h.svc.Approve(ctx, viewer(amy), r.ID)
	assert.ErrorIs(t, err, domain.ErrReviewNotPermitted, "authors cannot review")
	_, err = h.svc.Approve(ctx, viewer(quinn), r.ID)
	assert.ErrorIs(t, err, domain.ErrReviewNotPermitted, "only the assigned partner")
	_, err = h.svc.Reject(ctx, viewer(pat), "missing")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	got, err := h.svc.Approve(ctx, viewer(pat), r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusApproved, got.Status)
	require.NotNil(t, got.ReviewDate)

	_, err = h.svc.Reject(ctx, adminViewer(), r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	other := h.submit(t, bob, "Q2", "quinn")
	got, err = h.svc.Reject(ctx, adminViewer(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusRejected, got.Status)

	assert.Equal(t, []events.EventType{
		events.EventReportSubmitted,
		events.EventReportReviewed,
		events.EventReportSubmitted,
		events.EventReportReviewed,
	}, h.rec.types())
}

func TestComment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r := h.submit(t, amy, "Q1", "pat")

	c, err := h.svc.Comment(ctx, viewer(pat), r.ID, "  please add appendix  ")
	require.NoError(t, err)
	assert.Equal(t, "please add appendix", c.Comment)
	assert.Equal(t, "Pat", c.Author)
	assert.Equal(t, r.ID, c.ReportID)

	_, err = h.svc.Comment(ctx, viewer(pat), r.ID, "   ")
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)

	_, err = h.svc.Comment(ctx, viewer(bob), r.ID, "hi")
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	c, err = h.svc.Comment(ctx, adminViewer(), r.ID, "noted")
	require.NoError(t, err)
	assert.Equal(t, "Admin", c.Author)

	got, err := h.svc.Get(viewer(amy), r.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "please add appendix", got.Comments[0].Comment)
}

func TestDownload(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r := h.submit(t, amy, "Q1", "pat")

	att, err := h.svc.Download(ctx, viewer(pat), r.ID)
	require.NoError(t, err)
	defer att.Body.Close()
	assert.Equal(t, "report-"+r.ID+".pdf", att.FileName)
	assert.Equal(t, "application/pdf", att.ContentType)
	body, err := io.ReadAll(att.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 Q1", string(body))

	_, err = h.svc.Download(ctx, viewer(bob), r.ID)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	_, err = h.blobs.Delete(ctx, r.File)
	require.NoError(t, err)
	_, err = h.svc.Download(ctx, viewer(amy), r.ID)
	assert.ErrorIs(t, err, domain.ErrResourceUnavailable)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.submit(t, amy, "A", "pat")
	h.submit(t, amy, "B", "pat")
	h.submit(t, bob, "C", "quinn")
	_, err := h.svc.Approve(ctx, viewer(pat), a.ID)
	require.NoError(t, err)

	s, err := h.svc.Stats(viewer(amy))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.ApprovedToday)
	assert.Nil(t, s.Performance)

	s, err = h.svc.Stats(adminViewer())
	require.NoError(t, err)
	assert.Equal(t, 3, s.Total)
	require.Len(t, s.Performance, 2)
	perf := map[string]int{}
	for _, p := range s.Performance {
		perf[p.StaffID] = p.ApprovalPct
	}
	assert.Equal(t, map[string]int{"amy": 50, "bob": 0}, perf)
}
