package feedback

import (
	"context"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
)

type FeedbackRepository interface {
	Create(ctx context.Context, f *domain.Feedback) error
	GetByID(ctx context.Context, id int64) (*domain.Feedback, error)
	ExistsForOrder(ctx context.Context, orderID int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.Feedback, error)
	PendingOrderFor(ctx context.Context, userID int64) (*domain.Order, error)
	SetAdminResponse(ctx context.Context, id int64, response string) (*domain.Feedback, error)
}

type OrderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

type AppointmentReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
}

type NotificationSender interface {
	NotifyFeedbackResponded(ctx context.Context, userID, feedbackID, orderID int64) error
}
