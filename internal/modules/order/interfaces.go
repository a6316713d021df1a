package order

import (
	"context"
	"time"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
	"github.com/Matsupon/tailoring-system-sub001/internal/repository"
)

// OrderRepository covers only the operations this module drives.
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	Transition(ctx context.Context, id int64, from, to domain.OrderStatus, fields map[string]any) error
	CancelWithRefund(ctx context.Context, id int64, from domain.OrderStatus, appointmentID int64, refundEvidence string) error
	SetHandled(ctx context.Context, id int64) error
	RenumberActive(ctx context.Context) error
	TodayQueue(ctx context.Context, today time.Time) ([]domain.Order, error)
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, int64, error)
	BookedTimes(ctx context.Context) ([]repository.BookedPair, error)
}

// AppointmentReader resolves the owning customer for ownership checks and
// notification targeting.
type AppointmentReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
}

// NotificationSender is the dispatcher surface fired on order transitions.
type NotificationSender interface {
	NotifyReadyToCheck(ctx context.Context, userID, orderID int64, checkInDate time.Time, checkInTime string) error
	NotifyOrderCompleted(ctx context.Context, userID, orderID int64, totalAmount float64, pickupDate time.Time, pickupTime string) error
	NotifyOrderFinished(ctx context.Context, userID, orderID int64) error
	NotifyOrderCancelled(ctx context.Context, userID, orderID int64, reason string) error
	NotifyRefundProcessed(ctx context.Context, userID, appointmentID int64) error
}
