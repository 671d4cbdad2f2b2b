package domain

import "time"

// ReportStatus enumerates lifecycle states for reports.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusApproved ReportStatus = "approved"
	ReportStatusRejected ReportStatus = "rejected"
)

// Valid reports whether the status is known.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusApproved, ReportStatusRejected:
		return true
	default:
		return false
	}
}

// Report is a submitted work report awaiting or past review.
type Report struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Client      string       `json:"client"`
	Description string       `json:"description"`
	Date        time.Time    `json:"date"`
	Status      ReportStatus `json:"status"`
	Author      string       `json:"author"`
	File        string       `json:"file"`
	ReviewDate  *time.Time   `json:"reviewDate,omitempty"`
	AssignedTo  string       `json:"assignedTo,omitempty"`
	Comments    []Comment    `json:"comments"`
}

// Comment is an immutable note attached to a report.
type Comment struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"reportId"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
}

// Clone returns a deep copy of the report.
func (r Report) Clone() Report {
	if r.ReviewDate != nil {
		t := *r.ReviewDate
		r.ReviewDate = &t
	}
	comments := make([]Comment, len(r.Comments))
	copy(comments, r.Comments)
	r.Comments = comments
	return r
}
