package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ahmedabdul/staff-portal/internal/events"
	"github.com/ahmedabdul/staff-portal/internal/ledger"
	"github.com/ahmedabdul/staff-portal/internal/session"
)

// Notification is a message addressed to one staff member.
type Notification struct {
	RecipientID   string
	RecipientName string
	ReportID      string
	EventType     events.EventType
	Message       string
}

// Sink delivers notifications.
type Sink func(ctx context.Context, n Notification) error

// NotificationService turns report events into notifications for the people involved.
type NotificationService struct {
	dispatcher events.Dispatcher
	ledger     *ledger.Ledger
	roster     *session.Roster
	logger     *zap.Logger
	sink       Sink
}

// NewNotificationService creates the service. A nil sink logs each notification.
func NewNotificationService(dispatcher events.Dispatcher, l *ledger.Ledger, roster *session.Roster, logger *zap.Logger, sink Sink) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &NotificationService{
		dispatcher: dispatcher,
		ledger:     l,
		roster:     roster,
		logger:     logger,
		sink:       sink,
	}
	if n.sink == nil {
		n.sink = n.logNotification
	}
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReportSubmitted, n.handleReportSubmitted)
	n.dispatcher.Subscribe(events.EventReportReviewed, n.handleReportReviewed)
	n.dispatcher.Subscribe(events.EventReportCommentAdded, n.handleReportCommentAdded)
}

func (n *NotificationService) handleReportSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ReportSubmitted", zap.String("report_id", event.ReportID), zap.Any("payload", event.Payload))
	payload, ok := event.Payload.(events.ReportSubmittedPayload)
	if !ok || payload.AssignedTo == "" {
		return nil
	}
	return n.notify(ctx, payload.AssignedTo, event,
		fmt.Sprintf("%s submitted %q for %s and assigned it to you", event.Actor.Name, payload.Title, payload.Client))
}

func (n *NotificationService) handleReportReviewed(ctx context.Context, event events.Event) error {
	n.logger.Info("ReportReviewed", zap.String("report_id", event.ReportID), zap.Any("payload", event.Payload))
	payload, ok := event.Payload.(events.ReportReviewedPayload)
	if !ok || payload.Author == event.Actor.StaffID {
		return nil
	}
	return n.notify(ctx, payload.Author, event,
		fmt.Sprintf("%s %s your report %s", event.Actor.Name, payload.Status, n.title(event.ReportID)))
}

func (n *NotificationService) handleReportCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("ReportCommentAdded", zap.String("report_id", event.ReportID), zap.Any("payload", event.Payload))
	report, ok := n.ledger.Get(event.ReportID)
	if !ok {
		return nil
	}
	payload, _ := event.Payload.(events.ReportCommentAddedPayload)
	message := fmt.Sprintf("%s commented on %q: %s", event.Actor.Name, report.Title, payload.BodyPreview)

	// Everyone on the report except the commenter hears about it.
	for _, id := range []string{report.Author, report.AssignedTo} {
		if id == "" || id == event.Actor.StaffID {
			continue
		}
		if err := n.notify(ctx, id, event, message); err != nil {
			return err
		}
	}
	return nil
}

func (n *NotificationService) notify(ctx context.Context, recipientID string, event events.Event, message string) error {
	return n.sink(ctx, Notification{
		RecipientID:   recipientID,
		RecipientName: n.roster.Name(recipientID),
		ReportID:      event.ReportID,
		EventType:     event.Type,
		Message:       message,
	})
}

func (n *NotificationService) title(reportID string) string {
	if report, ok := n.ledger.Get(reportID); ok {
		return fmt.Sprintf("%q", report.Title)
	}
	return reportID
}

func (n *NotificationService) logNotification(_ context.Context, note Notification) error {
	n.logger.Debug("notification",
		zap.String("recipient_id", note.RecipientID),
		zap.String("recipient", note.RecipientName),
		zap.String("report_id", note.ReportID),
		zap.String("event_type", string(note.EventType)),
		zap.String("message", note.Message))
	return nil
}
