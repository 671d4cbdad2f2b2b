package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahmedabdul/staff-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportSubmitted    EventType = "report_submitted"
	EventReportReviewed     EventType = "report_reviewed"
	EventReportCommentAdded EventType = "report_comment_added"
)

// AllTypes lists every event type in publication order of a report's life.
var AllTypes = []EventType{EventReportSubmitted, EventReportReviewed, EventReportCommentAdded}

// Actor identifies who caused an event.
type Actor struct {
	StaffID string           `json:"staff_id"`
	Name    string           `json:"name"`
	Role    domain.StaffRole `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReportID  string      `json:"report_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, reportID string, actor Actor, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ReportID:  reportID,
		Actor:     actor,
		Timestamp: at.UTC(),
		Payload:   payload,
	}
}

// ReportSubmittedPayload payload.
type ReportSubmittedPayload struct {
	Title      string `json:"title"`
	Client     string `json:"client"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// ReportReviewedPayload payload.
type ReportReviewedPayload struct {
	Status     domain.ReportStatus `json:"status"`
	ReviewDate time.Time           `json:"review_date"`
	Author     string              `json:"author"`
}

// ReportCommentAddedPayload payload.
type ReportCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	BodyPreview string `json:"body_preview"`
}
