package ledger

import (
	"fmt"
	"math"
	"time"

	"github.com/ahmedabdul/staff-portal/internal/domain"
)

// Stats summarises a set of reports.
type Stats struct {
	Total             int    `json:"total"`
	Pending           int    `json:"pending"`
	Approved          int    `json:"approved"`
	Rejected          int    `json:"rejected"`
	ApprovedToday     int    `json:"approvedToday"`
	AverageReviewTime string `json:"averageReviewTime"`
}

// StaffPerformance is one staff member's approval rate.
type StaffPerformance struct {
	StaffID     string `json:"staffId"`
	Name        string `json:"name"`
	Total       int    `json:"total"`
	Approved    int    `json:"approved"`
	ApprovalPct int    `json:"approvalPct"`
}

// Summarize computes Stats over reports as of now.
func Summarize(reports []domain.Report, now time.Time) Stats {
	s := Stats{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case domain.ReportStatusPending:
			s.Pending++
		case domain.ReportStatusApproved:
			s.Approved++
			if r.ReviewDate != nil && sameDay(*r.ReviewDate, now) {
				s.ApprovedToday++
			}
		case domain.ReportStatusRejected:
			s.Rejected++
		}
	}
	s.AverageReviewTime = AverageReviewTime(reports)
	return s
}

// AverageReviewTime is the mean latency between submission and review over
// reviewed reports: "N/A" when there are none, whole hours below a day,
// whole days otherwise.
func AverageReviewTime(reports []domain.Report) string {
	var (
		total time.Duration
		n     int
	)
	for _, r := range reports {
		if r.Status == domain.ReportStatusPending {
			continue
		}
		n++
		if r.ReviewDate != nil {
			total += r.ReviewDate.Sub(r.Date)
		}
	}
	if n == 0 {
		return "N/A"
	}
	hours := total.Hours() / float64(n)
	if hours < 24 {
		return fmt.Sprintf("%dh", roundHalfUp(hours))
	}
	return fmt.Sprintf("%dd", roundHalfUp(hours/24))
}

// Performance computes approval percentages for Staff-role members, in
// roster order. Members without reports score 0.
func Performance(roster []domain.StaffMember, reports []domain.Report) []StaffPerformance {
	type tally struct{ total, approved int }
	counts := make(map[string]*tally)
	for _, r := range reports {
		t, ok := counts[r.Author]
		if !ok {
			t = &tally{}
			counts[r.Author] = t
		}
		t.total++
		if r.Status == domain.ReportStatusApproved {
			t.approved++
		}
	}

	out := []StaffPerformance{}
	for _, m := range roster {
		if m.Role != domain.StaffRoleStaff {
			continue
		}
		p := StaffPerformance{StaffID: m.ID, Name: m.Name}
		if t, ok := counts[m.ID]; ok {
			p.Total = t.total
			p.Approved = t.approved
			p.ApprovalPct = roundHalfUp(float64(t.approved) / float64(t.total) * 100)
		}
		out = append(out, p)
	}
	return out
}

// roundHalfUp rounds halves toward positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
