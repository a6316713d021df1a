package notification

import (
	"context"
	"fmt"
	"log"
	"time"
)

// AdminDirectory resolves the admin channel: one notification row per admin.
type AdminDirectory interface {
	ListAdminIDs(ctx context.Context) ([]int64, error)
}

// Store is the persistence surface the dispatcher writes to and the inbox
// endpoints read from.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
	MarkAsViewed(ctx context.Context, id, userID int64) error
	MarkAllAsViewed(ctx context.Context, userID int64) error
}

// Service is the dispatcher. Lifecycle services call the NotifyXxx helpers
// after their transaction commits; a failed insert is logged and swallowed so
// a notification hiccup never rolls back or fails the transition itself.
type Service struct {
	repo   Store
	admins AdminDirectory
}

func NewService(repo Store, admins AdminDirectory) *Service {
	return &Service{repo: repo, admins: admins}
}

// Dispatch creates one immutable notification row.
func (s *Service) Dispatch(ctx context.Context, userID int64, t Type, title, body string, data *NotificationData) error {
	n := &Notification{
		UserID: userID,
		Type:   t,
		Title:  title,
		Body:   body,
	}
	if err := n.SetData(data); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("notification_dispatch_failed user_id=%d type=%s error=%q", userID, t, err)
		return err
	}
	return nil
}

// dispatchToAdmins fans the same notification out to every admin account.
func (s *Service) dispatchToAdmins(ctx context.Context, t Type, title, body string, data *NotificationData) error {
	ids, err := s.admins.ListAdminIDs(ctx)
	if err != nil {
		log.Printf("notification_dispatch_failed channel=admin type=%s error=%q", t, err)
		return err
	}
	for _, id := range ids {
		_ = s.Dispatch(ctx, id, t, title, body, data)
	}
	return nil
}

func scheduleString(date time.Time, hm string) string {
	return date.Format("2006-01-02") + " " + hm
}

// NotifyAppointmentRequested tells the admin channel a new booking request
// arrived and awaits review.
func (s *Service) NotifyAppointmentRequested(ctx context.Context, appointmentID int64, date time.Time, hm string) error {
	sched := scheduleString(date, hm)
	return s.dispatchToAdmins(ctx,
		TypeAppointmentBooked,
		"New appointment request",
		fmt.Sprintf("A customer requested an appointment on %s", sched),
		&NotificationData{AppointmentID: &appointmentID, ScheduledAt: &sched},
	)
}

// NotifyAppointmentBooked tells the customer their request was accepted and
// an order with a queue position now exists.
func (s *Service) NotifyAppointmentBooked(ctx context.Context, userID, appointmentID, orderID int64, queueNumber int) error {
	return s.Dispatch(ctx, userID,
		TypeAppointmentBooked,
		"Appointment booked",
		fmt.Sprintf("Your appointment has been accepted. You are number %d in the queue.", queueNumber),
		&NotificationData{AppointmentID: &appointmentID, OrderID: &orderID, QueueNumber: &queueNumber},
	)
}

// NotifyAppointmentAccepted records the acceptance decision on the admin
// channel.
func (s *Service) NotifyAppointmentAccepted(ctx context.Context, appointmentID, orderID int64, queueNumber int) error {
	return s.dispatchToAdmins(ctx,
		TypeAppointmentAccepted,
		"Appointment accepted",
		fmt.Sprintf("Appointment #%d was accepted and queued as #%d", appointmentID, queueNumber),
		&NotificationData{AppointmentID: &appointmentID, OrderID: &orderID, QueueNumber: &queueNumber},
	)
}

func (s *Service) NotifyAppointmentRejected(ctx context.Context, userID, appointmentID int64, reason string) error {
	body := "Your appointment request was rejected. Your downpayment will be refunded."
	data := &NotificationData{AppointmentID: &appointmentID}
	if reason != "" {
		body = body + " Reason: " + reason
		data.Reason = &reason
	}
	return s.Dispatch(ctx, userID, TypeAppointmentRejected, "Appointment rejected", body, data)
}

func (s *Service) NotifyReadyToCheck(ctx context.Context, userID, orderID int64, checkInDate time.Time, checkInTime string) error {
	sched := scheduleString(checkInDate, checkInTime)
	return s.Dispatch(ctx, userID,
		TypeReadyToCheck,
		"Order ready to check",
		fmt.Sprintf("Your order is ready for fitting. Check-in schedule: %s", sched),
		&NotificationData{OrderID: &orderID, ScheduledAt: &sched},
	)
}

func (s *Service) NotifyOrderCompleted(ctx context.Context, userID, orderID int64, totalAmount float64, pickupDate time.Time, pickupTime string) error {
	sched := scheduleString(pickupDate, pickupTime)
	return s.Dispatch(ctx, userID,
		TypeOrderCompleted,
		"Order completed",
		fmt.Sprintf("Your order is done. Total amount: %.2f. Pickup schedule: %s", totalAmount, sched),
		&NotificationData{OrderID: &orderID, TotalAmount: &totalAmount, ScheduledAt: &sched},
	)
}

func (s *Service) NotifyOrderFinished(ctx context.Context, userID, orderID int64) error {
	return s.Dispatch(ctx, userID,
		TypeOrderFinished,
		"Order finished",
		"Your order is finished. Thank you! You can now leave feedback.",
		&NotificationData{OrderID: &orderID},
	)
}

func (s *Service) NotifyOrderDetailsUpdated(ctx context.Context, userID, appointmentID int64, date time.Time, hm string) error {
	sched := scheduleString(date, hm)
	return s.Dispatch(ctx, userID,
		TypeOrderDetailsUpdated,
		"Appointment rescheduled",
		fmt.Sprintf("Your appointment schedule was updated to %s", sched),
		&NotificationData{AppointmentID: &appointmentID, ScheduledAt: &sched},
	)
}

// NotifyOrderCancelledToAdmins covers customer-initiated cancellation.
func (s *Service) NotifyOrderCancelledToAdmins(ctx context.Context, appointmentID int64, orderID *int64) error {
	return s.dispatchToAdmins(ctx,
		TypeOrderCancelled,
		"Order cancelled",
		fmt.Sprintf("The customer cancelled appointment #%d", appointmentID),
		&NotificationData{AppointmentID: &appointmentID, OrderID: orderID},
	)
}

// NotifyOrderCancelled covers admin-initiated cancellation.
func (s *Service) NotifyOrderCancelled(ctx context.Context, userID, orderID int64, reason string) error {
	body := "Your order was cancelled."
	data := &NotificationData{OrderID: &orderID}
	if reason != "" {
		body = body + " Reason: " + reason
		data.Reason = &reason
	}
	return s.Dispatch(ctx, userID, TypeOrderCancelled, "Order cancelled", body, data)
}

func (s *Service) NotifyRefundProcessed(ctx context.Context, userID, appointmentID int64) error {
	return s.Dispatch(ctx, userID,
		TypeRefundProcessed,
		"Refund processed",
		"Your refund has been processed. Evidence is attached to your appointment.",
		&NotificationData{AppointmentID: &appointmentID},
	)
}

func (s *Service) NotifyFeedbackResponded(ctx context.Context, userID, feedbackID, orderID int64) error {
	return s.Dispatch(ctx, userID,
		TypeFeedbackResponded,
		"Feedback response",
		"The shop responded to your feedback.",
		&NotificationData{FeedbackID: &feedbackID, OrderID: &orderID},
	)
}

// Read-side passthroughs used by the notifications endpoints.

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *Service) MarkAsViewed(ctx context.Context, id, userID int64) error {
	return s.repo.MarkAsViewed(ctx, id, userID)
}

func (s *Service) MarkAllAsViewed(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsViewed(ctx, userID)
}
