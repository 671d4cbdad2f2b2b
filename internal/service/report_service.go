package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ahmedabdul/staff-portal/internal/blob"
	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/events"
	"github.com/ahmedabdul/staff-portal/internal/ledger"
	"github.com/ahmedabdul/staff-portal/internal/session"
	apperrors "github.com/ahmedabdul/staff-portal/pkg/util/errorutil"
)

const attachmentPrefix = "reports/"

// ReportService coordinates report workflows for a viewer.
type ReportService struct {
	ledger     *ledger.Ledger
	roster     *session.Roster
	blobs      blob.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	Ledger     *ledger.Ledger
	Roster     *session.Roster
	Blobs      blob.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// SubmitInput describes a report submission.
type SubmitInput struct {
	Title       string
	Client      string
	Description string
	AssignedTo  string
	FileName    string
	ContentType string
	Body        io.Reader
}

// ReportFilters narrows a listing.
type ReportFilters struct {
	Search string
	Status domain.ReportStatus
	Window ledger.Window
}

// Attachment is an opened report file. The caller closes Body.
type Attachment struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// ViewerStats are the dashboard figures for one viewer.
type ViewerStats struct {
	ledger.Stats
	Performance []ledger.StaffPerformance `json:"staffPerformance,omitempty"`
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &ReportService{
		ledger:     deps.Ledger,
		roster:     deps.Roster,
		blobs:      deps.Blobs,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
}

// Submit stores the attachment and records a pending report authored by the viewer.
func (s *ReportService) Submit(ctx context.Context, viewer domain.Session, input SubmitInput) (domain.Report, error) {
	author, err := requireViewer(viewer)
	if err != nil {
		return domain.Report{}, err
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Client = strings.TrimSpace(input.Client)
	input.Description = strings.TrimSpace(input.Description)
	input.AssignedTo = strings.TrimSpace(input.AssignedTo)

	var missing []string
	if input.Title == "" {
		missing = append(missing, "title")
	}
	if input.Client == "" {
		missing = append(missing, "client")
	}
	if input.Description == "" {
		missing = append(missing, "description")
	}
	if input.AssignedTo == "" {
		missing = append(missing, "assignedTo")
	}
	if input.Body == nil || strings.TrimSpace(input.FileName) == "" {
		missing = append(missing, "file")
	}
	if len(missing) > 0 {
		return domain.Report{}, apperrors.NewValidationError("missing required fields", map[string]interface{}{"fields": missing})
	}
	partner, ok := s.roster.Find(input.AssignedTo)
	if !ok || partner.Role != domain.StaffRoleManagingPartner {
		return domain.Report{}, apperrors.NewValidationError("assignee must be a managing partner", map[string]interface{}{"assignedTo": input.AssignedTo})
	}

	key := attachmentPrefix + uuid.NewString()
	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	if _, err := s.blobs.Put(ctx, key, input.Body, blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"file_name": input.FileName, "author": author.ID},
	}); err != nil {
		s.logger.Error("store attachment failed", zap.String("key", key), zap.Error(err))
		return domain.Report{}, fmt.Errorf("%w: %v", domain.ErrResourceUnavailable, err)
	}

	report, err := s.ledger.AddReport(ctx, ledger.NewReport{
		Title:       input.Title,
		Client:      input.Client,
		Description: input.Description,
		Date:        s.now().UTC(),
		Author:      author.ID,
		File:        key,
		AssignedTo:  input.AssignedTo,
	})
	if err != nil {
		if _, delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphaned attachment", zap.String("key", key), zap.Error(delErr))
		}
		return domain.Report{}, err
	}

	s.publish(ctx, events.New(events.EventReportSubmitted, report.ID, actorOf(author), s.now(), events.ReportSubmittedPayload{
		Title:      report.Title,
		Client:     report.Client,
		AssignedTo: report.AssignedTo,
	}))
	return report, nil
}

// ListForViewer returns the reports the viewer relates to, newest first.
func (s *ReportService) ListForViewer(viewer domain.Session, filters ReportFilters) ([]domain.Report, error) {
	q, err := s.scopeQuery(viewer)
	if err != nil {
		return nil, err
	}
	q.Search = filters.Search
	q.Status = filters.Status
	q.Window = filters.Window
	return s.ledger.Find(q), nil
}

// Get returns a report the viewer may see. Hidden reports read as missing.
func (s *ReportService) Get(viewer domain.Session, id string) (domain.Report, error) {
	if _, err := requireViewer(viewer); err != nil {
		return domain.Report{}, err
	}
	report, ok := s.ledger.Get(id)
	if !ok || !visible(viewer, report) {
		return domain.Report{}, domain.ErrReportNotFound
	}
	return report, nil
}

// Approve marks a pending report approved.
func (s *ReportService) Approve(ctx context.Context, viewer domain.Session, id string) (domain.Report, error) {
	return s.review(ctx, viewer, id, s.ledger.ApproveReport)
}

// Reject marks a pending report rejected.
func (s *ReportService) Reject(ctx context.Context, viewer domain.Session, id string) (domain.Report, error) {
	return s.review(ctx, viewer, id, s.ledger.RejectReport)
}

func (s *ReportService) review(ctx context.Context, viewer domain.Session, id string, apply func(context.Context, string) (domain.Report, error)) (domain.Report, error) {
	reviewer, err := requireViewer(viewer)
	if err != nil {
		return domain.Report{}, err
	}
	report, ok := s.ledger.Get(id)
	if !ok {
		return domain.Report{}, domain.ErrReportNotFound
	}
	if !canReview(viewer, report) {
		return domain.Report{}, domain.ErrReviewNotPermitted
	}
	updated, err := apply(ctx, id)
	if err != nil {
		return domain.Report{}, err
	}
	reviewed := time.Time{}
	if updated.ReviewDate != nil {
		reviewed = *updated.ReviewDate
	}
	s.publish(ctx, events.New(events.EventReportReviewed, updated.ID, actorOf(reviewer), s.now(), events.ReportReviewedPayload{
		Status:     updated.Status,
		ReviewDate: reviewed,
		Author:     updated.Author,
	}))
	return updated, nil
}

// Comment appends a comment signed with the viewer's display name.
func (s *ReportService) Comment(ctx context.Context, viewer domain.Session, id, text string) (domain.Comment, error) {
	if _, err := s.Get(viewer, id); err != nil {
		return domain.Comment{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Comment{}, apperrors.NewValidationError("comment is required", nil)
	}
	author := viewer.CurrentUser
	comment, err := s.ledger.AddComment(ctx, ledger.NewComment{
		ReportID: id,
		Comment:  text,
		Author:   displayName(*author),
	})
	if err != nil {
		return domain.Comment{}, err
	}
	s.publish(ctx, events.New(events.EventReportCommentAdded, id, actorOf(*author), s.now(), events.ReportCommentAddedPayload{
		CommentID:   comment.ID,
		BodyPreview: preview(text, 80),
	}))
	return comment, nil
}

// Download opens the attachment of a visible report.
func (s *ReportService) Download(ctx context.Context, viewer domain.Session, id string) (*Attachment, error) {
	report, err := s.Get(viewer, id)
	if err != nil {
		return nil, err
	}
	info, body, err := s.blobs.Get(ctx, report.File)
	if err != nil {
		if !errors.Is(err, blob.ErrNotFound) {
			s.logger.Error("open attachment failed", zap.String("report_id", id), zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrResourceUnavailable, err)
	}
	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	return &Attachment{
		FileName:    fmt.Sprintf("report-%s.pdf", report.ID),
		ContentType: contentType,
		Size:        info.Size,
		Body:        body,
	}, nil
}

// Stats summarizes the viewer's reports. Administrators also get per-staff performance.
func (s *ReportService) Stats(viewer domain.Session) (ViewerStats, error) {
	q, err := s.scopeQuery(viewer)
	if err != nil {
		return ViewerStats{}, err
	}
	scoped := s.ledger.Find(q)
	out := ViewerStats{Stats: ledger.Summarize(scoped, s.now())}
	if viewer.IsAdmin {
		out.Performance = ledger.Performance(s.roster.List(), scoped)
	}
	return out, nil
}

func (s *ReportService) scopeQuery(viewer domain.Session) (ledger.Query, error) {
	user, err := requireViewer(viewer)
	if err != nil {
		return ledger.Query{}, err
	}
	q := ledger.Query{ViewerID: user.ID, Scope: ledger.ScopeAuthor, Window: ledger.WindowAll, AuthorName: s.roster.Name}
	switch {
	case viewer.IsAdmin:
		q.Scope = ledger.ScopeAll
	case viewer.IsPartner:
		q.Scope = ledger.ScopeReviewer
	}
	return q, nil
}

func (s *ReportService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.String("report_id", event.ReportID), zap.Error(err))
	}
}

func requireViewer(viewer domain.Session) (domain.StaffMember, error) {
	if !viewer.Authenticated || viewer.CurrentUser == nil {
		return domain.StaffMember{}, apperrors.NewUnauthorized("login required")
	}
	return *viewer.CurrentUser, nil
}

func visible(viewer domain.Session, r domain.Report) bool {
	if viewer.IsAdmin {
		return true
	}
	id := viewer.CurrentUser.ID
	return r.Author == id || (viewer.IsPartner && r.AssignedTo == id)
}

func canReview(viewer domain.Session, r domain.Report) bool {
	if viewer.IsAdmin {
		return true
	}
	return viewer.IsPartner && r.AssignedTo != "" && r.AssignedTo == viewer.CurrentUser.ID
}

func actorOf(m domain.StaffMember) events.Actor {
	return events.Actor{StaffID: m.ID, Name: displayName(m), Role: m.Role}
}

func displayName(m domain.StaffMember) string {
	if strings.TrimSpace(m.Name) != "" {
		return m.Name
	}
	return m.Email
}

func preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
