package appointment

import (
	"context"
	"time"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
)

// AppointmentRepository covers only the operations this module drives.
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) error
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Appointment, error)
	List(ctx context.Context, status string) ([]domain.Appointment, error)
	ReservedTimes(ctx context.Context, date time.Time, excludeAppointmentID int64) (map[string]bool, error)
	UpdateSchedule(ctx context.Context, id int64, date time.Time, hm string, dueDate time.Time) error
	Accept(ctx context.Context, id int64) (*domain.Order, error)
	Reject(ctx context.Context, id int64, refundEvidence string) error
	Cancel(ctx context.Context, id int64, hasOrder bool) error
	AttachRefundEvidence(ctx context.Context, id int64, refundEvidence string) error
	Delete(ctx context.Context, id int64) error
}

// OrderReader resolves the 1:1 order of an appointment.
type OrderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.Order, error)
}

// ServiceTypeReader validates the referenced service type and exposes the
// downpayment the proof must cover.
type ServiceTypeReader interface {
	GetByID(ctx context.Context, id int64) (*domain.ServiceType, error)
}

// NotificationSender is the dispatcher surface this module fires. Failures
// are the dispatcher's problem; callers ignore the returned error.
type NotificationSender interface {
	NotifyAppointmentRequested(ctx context.Context, appointmentID int64, date time.Time, hm string) error
	NotifyAppointmentBooked(ctx context.Context, userID, appointmentID, orderID int64, queueNumber int) error
	NotifyAppointmentAccepted(ctx context.Context, appointmentID, orderID int64, queueNumber int) error
	NotifyAppointmentRejected(ctx context.Context, userID, appointmentID int64, reason string) error
	NotifyOrderDetailsUpdated(ctx context.Context, userID, appointmentID int64, date time.Time, hm string) error
	NotifyOrderCancelledToAdmins(ctx context.Context, appointmentID int64, orderID *int64) error
	NotifyRefundProcessed(ctx context.Context, userID, appointmentID int64) error
}
