// Package ledger holds the report collection, its comments and the review
// lifecycle.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/repository"
)

// NewReport is the input for AddReport. The ledger does not validate it.
type NewReport struct {
	Title       string
	Client      string
	Description string
	Date        time.Time
	Author      string
	File        string
	AssignedTo  string
}

// NewComment is the input for AddComment. A zero Timestamp means now.
type NewComment struct {
	ReportID  string
	Comment   string
	Author    string
	Timestamp time.Time
}

// Ledger owns every report. Mutations apply whole under the lock; with a
// repository configured each one is snapshotted before it becomes visible.
type Ledger struct {
	mu      sync.RWMutex
	reports []domain.Report
	repo    repository.ReportRepository
	now     func() time.Time
	logger  *zap.Logger
}

// New builds a ledger. A nil repo keeps reports in memory only; otherwise
// the stored snapshot is loaded.
func New(ctx context.Context, repo repository.ReportRepository, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{reports: []domain.Report{}, repo: repo, now: time.Now, logger: logger}
	if repo == nil {
		return l, nil
	}
	reports, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	l.reports = reports
	logger.Info("report ledger loaded", zap.Int("reports", len(reports)))
	return l, nil
}

// WithClock overrides the time source.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Durable reports whether mutations are persisted.
func (l *Ledger) Durable() bool { return l.repo != nil }

// AddReport appends a pending report.
func (l *Ledger) AddReport(ctx context.Context, in NewReport) (domain.Report, error) {
	report := domain.Report{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Client:      in.Client,
		Description: in.Description,
		Date:        in.Date,
		Status:      domain.ReportStatusPending,
		Author:      in.Author,
		File:        in.File,
		AssignedTo:  in.AssignedTo,
		Comments:    []domain.Comment{},
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := append(l.snapshot(len(l.reports)+1), report)
	if err := l.commit(ctx, next); err != nil {
		return domain.Report{}, err
	}
	l.logger.Debug("report added", zap.String("report_id", report.ID), zap.String("author", report.Author))
	return report.Clone(), nil
}

// ApproveReport moves a pending report to approved.
func (l *Ledger) ApproveReport(ctx context.Context, id string) (domain.Report, error) {
	return l.review(ctx, id, domain.ReportStatusApproved)
}

// RejectReport moves a pending report to rejected.
func (l *Ledger) RejectReport(ctx context.Context, id string) (domain.Report, error) {
	return l.review(ctx, id, domain.ReportStatusRejected)
}

func (l *Ledger) review(ctx context.Context, id string, status domain.ReportStatus) (domain.Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return domain.Report{}, domain.ErrReportNotFound
	}
	if l.reports[i].Status != domain.ReportStatusPending {
		return domain.Report{}, domain.ErrInvalidTransition
	}

	updated := l.reports[i].Clone()
	// reviewDate never precedes the submission date
	reviewed := l.now().UTC()
	if reviewed.Before(updated.Date) {
		reviewed = updated.Date
	}
	updated.Status = status
	updated.ReviewDate = &reviewed

	next := l.snapshot(len(l.reports))
	next[i] = updated
	if err := l.commit(ctx, next); err != nil {
		return domain.Report{}, err
	}
	l.logger.Debug("report reviewed", zap.String("report_id", id), zap.String("status", string(status)))
	return updated.Clone(), nil
}

// AddComment appends a comment to a report in any status.
func (l *Ledger) AddComment(ctx context.Context, in NewComment) (domain.Comment, error) {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = l.now().UTC()
	}
	comment := domain.Comment{
		ID:        uuid.NewString(),
		ReportID:  in.ReportID,
		Comment:   in.Comment,
		Timestamp: ts,
		Author:    in.Author,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(in.ReportID)
	if i < 0 {
		return domain.Comment{}, domain.ErrReportNotFound
	}
	updated := l.reports[i].Clone()
	updated.Comments = append(updated.Comments, comment)

	next := l.snapshot(len(l.reports))
	next[i] = updated
	if err := l.commit(ctx, next); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

// Get returns one report.
func (l *Ledger) Get(id string) (domain.Report, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexOf(id); i >= 0 {
		return l.reports[i].Clone(), true
	}
	return domain.Report{}, false
}

// Reports returns every report in ledger order.
func (l *Ledger) Reports() []domain.Report {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Report, len(l.reports))
	for i, r := range l.reports {
		out[i] = r.Clone()
	}
	return out
}

// GetUserReports returns the reports authored by userID in ledger order.
func (l *Ledger) GetUserReports(userID string) []domain.Report {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []domain.Report{}
	for _, r := range l.reports {
		if r.Author == userID {
			out = append(out, r.Clone())
		}
	}
	return out
}

// snapshot copies the report headers; callers replace entries they modify.
func (l *Ledger) snapshot(capacity int) []domain.Report {
	next := make([]domain.Report, len(l.reports), capacity)
	copy(next, l.reports)
	return next
}

func (l *Ledger) commit(ctx context.Context, next []domain.Report) error {
	if l.repo != nil {
		if err := l.repo.Save(ctx, next); err != nil {
			return fmt.Errorf("persist ledger: %w", err)
		}
	}
	l.reports = next
	return nil
}

func (l *Ledger) indexOf(id string) int {
	for i, r := range l.reports {
		if r.ID == id {
			return i
		}
	}
	return -1
}
