package feedback

import (
	"context"
	"errors"
	"strings"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
	"github.com/Matsupon/tailoring-system-sub001/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	feedbacks    FeedbackRepository
	orders       OrderReader
	appointments AppointmentReader
	notifs       NotificationSender
}

func NewService(feedbacks FeedbackRepository, orders OrderReader, appointments AppointmentReader, notifs NotificationSender) *Service {
	return &Service{
		feedbacks:    feedbacks,
		orders:       orders,
		appointments: appointments,
		notifs:       notifs,
	}
}

// PendingFor returns the customer's most recently finished order that has no
// feedback yet, or nil when nothing is awaiting a rating.
func (s *Service) PendingFor(ctx context.Context, userID int64) (*domain.Order, error) {
	o, err := s.feedbacks.PendingOrderFor(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

// Submit records a rating for a finished order owned by the caller. Each
// order accepts feedback exactly once.
func (s *Service) Submit(ctx context.Context, userID int64, req SubmitFeedbackRequest) (*domain.Feedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrValidation
	}

	o, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	a, err := s.appointments.GetByID(ctx, o.AppointmentID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrForbidden
	}
	if o.Status != domain.OrderFinished {
		return nil, ErrOrderNotReady
	}

	exists, err := s.feedbacks.ExistsForOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	f := &domain.Feedback{
		OrderID: o.ID,
		UserID:  userID,
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
	}
	if err := s.feedbacks.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrFeedbackExists) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return f, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Feedback, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.feedbacks.List(ctx, limit, offset)
}

// Respond attaches the admin's reply. A feedback entry can be answered only
// once; the customer is notified about the reply.
func (s *Service) Respond(ctx context.Context, id int64, req RespondRequest) (*domain.Feedback, error) {
	response := strings.TrimSpace(req.Response)
	if response == "" {
		return nil, ErrValidation
	}

	if _, err := s.feedbacks.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	f, err := s.feedbacks.SetAdminResponse(ctx, id, response)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrAlreadyAnswered
		}
		return nil, err
	}

	_ = s.notifs.NotifyFeedbackResponded(ctx, f.UserID, f.ID, f.OrderID)

	return f, nil
}
