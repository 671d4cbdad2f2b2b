package dto

import "time"

// ReportResponse is a report as shown to a viewer.
type ReportResponse struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Client       string            `json:"client"`
	Description  string            `json:"description"`
	Date         time.Time         `json:"date"`
	Status       string            `json:"status"`
	Author       string            `json:"author"`
	AuthorName   string            `json:"authorName"`
	AssignedTo   string            `json:"assignedTo,omitempty"`
	AssigneeName string            `json:"assigneeName,omitempty"`
	ReviewDate   *time.Time        `json:"reviewDate,omitempty"`
	FileURL      string            `json:"fileUrl"`
	Comments     []CommentResponse `json:"comments"`
}

// CommentRequest payload.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// CommentResponse is one review comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"reportId"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
}

// ViewResponse names the portal view a path resolves to.
type ViewResponse struct {
	View    string          `json:"view"`
	Session SessionResponse `json:"session"`
}
