package order

import (
	"context"
	"errors"
	"time"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
	"github.com/Matsupon/tailoring-system-sub001/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	orders       OrderRepository
	appointments AppointmentReader
	notifs       NotificationSender

	now func() time.Time
}

func NewService(orders OrderRepository, appointments AppointmentReader, notifs NotificationSender) *Service {
	return &Service{
		orders:       orders,
		appointments: appointments,
		notifs:       notifs,
		now:          time.Now,
	}
}

// UpdateStatus drives the production pipeline:
// Pending → Ready to Check → Completed → Finished, with Cancelled reachable
// from every non-Finished status. Each move checks its own required fields,
// applies a source-status-guarded update and fires the matching
// notification.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (*domain.Order, error) {
	target := domain.OrderStatus(req.Status)
	if !domain.ValidStatus(target) {
		return nil, ErrValidation
	}

	o, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(o.Status, target) {
		return nil, ErrInvalidTransition
	}

	a, err := s.appointments.GetByID(ctx, o.AppointmentID)
	if err != nil {
		return nil, err
	}

	switch target {
	case domain.OrderReadyToCheck:
		return s.toReadyToCheck(ctx, o, a, req)
	case domain.OrderCompleted:
		return s.toCompleted(ctx, o, a, req)
	case domain.OrderFinished:
		return s.toFinished(ctx, o, a)
	case domain.OrderCancelled:
		return s.toCancelled(ctx, o, a, req)
	}
	return nil, ErrInvalidTransition
}

func (s *Service) toReadyToCheck(ctx context.Context, o *domain.Order, a *domain.Appointment, req UpdateStatusRequest) (*domain.Order, error) {
	if req.CheckInDate == "" || !domain.ValidSlotTime(req.CheckInTime) {
		return nil, ErrValidation
	}
	checkInDate, err := time.Parse(domain.SlotDateLayout, req.CheckInDate)
	if err != nil {
		return nil, ErrValidation
	}
	checkInDate = domain.DateOnly(checkInDate)

	scheduledAt, err := combine(checkInDate, req.CheckInTime)
	if err != nil {
		return nil, ErrValidation
	}

	fields := map[string]any{
		"check_in_date": checkInDate,
		"check_in_time": req.CheckInTime,
		"scheduled_at":  scheduledAt,
	}
	if err := s.transition(ctx, o, domain.OrderReadyToCheck, fields); err != nil {
		return nil, err
	}

	_ = s.notifs.NotifyReadyToCheck(ctx, a.UserID, o.ID, checkInDate, req.CheckInTime)

	return s.getByID(ctx, o.ID)
}

func (s *Service) toCompleted(ctx context.Context, o *domain.Order, a *domain.Appointment, req UpdateStatusRequest) (*domain.Order, error) {
	if req.TotalAmount == nil || *req.TotalAmount <= 0 {
		return nil, ErrValidation
	}
	if req.PickupDate == "" || !domain.ValidSlotTime(req.PickupTime) {
		return nil, ErrValidation
	}
	pickupDate, err := time.Parse(domain.SlotDateLayout, req.PickupDate)
	if err != nil {
		return nil, ErrValidation
	}
	pickupDate = domain.DateOnly(pickupDate)

	fields := map[string]any{
		"total_amount": *req.TotalAmount,
		"pickup_date":  pickupDate,
		"pickup_time":  req.PickupTime,
		"completed_at": s.now(),
	}
	if err := s.transition(ctx, o, domain.OrderCompleted, fields); err != nil {
		return nil, err
	}

	_ = s.notifs.NotifyOrderCompleted(ctx, a.UserID, o.ID, *req.TotalAmount, pickupDate, req.PickupTime)

	return s.getByID(ctx, o.ID)
}

func (s *Service) toFinished(ctx context.Context, o *domain.Order, a *domain.Appointment) (*domain.Order, error) {
	if err := s.transition(ctx, o, domain.OrderFinished, nil); err != nil {
		return nil, err
	}

	_ = s.notifs.NotifyOrderFinished(ctx, a.UserID, o.ID)

	return s.getByID(ctx, o.ID)
}

// toCancelled releases the queue number and stores the refund evidence on
// the appointment in one transaction, then emits order_cancelled followed by
// refund_processed.
func (s *Service) toCancelled(ctx context.Context, o *domain.Order, a *domain.Appointment, req UpdateStatusRequest) (*domain.Order, error) {
	if req.RefundEvidence == "" {
		return nil, ErrValidation
	}

	if err := s.orders.CancelWithRefund(ctx, o.ID, o.Status, a.ID, req.RefundEvidence); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	_ = s.notifs.NotifyOrderCancelled(ctx, a.UserID, o.ID, req.Reason)
	_ = s.notifs.NotifyRefundProcessed(ctx, a.UserID, a.ID)

	return s.getByID(ctx, o.ID)
}

func (s *Service) transition(ctx context.Context, o *domain.Order, to domain.OrderStatus, fields map[string]any) error {
	if err := s.orders.Transition(ctx, o.ID, o.Status, to, fields); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return ErrInvalidTransition
		}
		return err
	}
	return nil
}

// SetHandled marks processing as begun. The flag is monotonic: requests that
// try to clear it are invalid rather than ignored.
func (s *Service) SetHandled(ctx context.Context, id int64, handled bool) (*domain.Order, error) {
	if !handled {
		return nil, ErrValidation
	}

	if _, err := s.getByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.orders.SetHandled(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.getByID(ctx, id)
}

// RecalculateQueue renumbers active orders 1..n in creation order. It is a
// re-derivation, not a counter: running it twice yields the same numbers.
func (s *Service) RecalculateQueue(ctx context.Context) error {
	return s.orders.RenumberActive(ctx)
}

func (s *Service) TodayQueue(ctx context.Context) ([]domain.Order, error) {
	return s.orders.TodayQueue(ctx, s.now())
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	counts, handled, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		Pending:      counts[domain.OrderPending],
		ReadyToCheck: counts[domain.OrderReadyToCheck],
		Completed:    counts[domain.OrderCompleted],
		Finished:     counts[domain.OrderFinished],
		Cancelled:    counts[domain.OrderCancelled],
		Handled:      handled,
	}
	st.Total = st.Pending + st.ReadyToCheck + st.Completed + st.Finished + st.Cancelled
	return st, nil
}

func (s *Service) BookedTimes(ctx context.Context) ([]repository.BookedPair, error) {
	return s.orders.BookedTimes(ctx)
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Get returns one order; customers may only read their own.
func (s *Service) Get(ctx context.Context, actorID int64, actorRole domain.UserRole, id int64) (*domain.Order, error) {
	o, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != domain.RoleAdmin {
		a, err := s.appointments.GetByID(ctx, o.AppointmentID)
		if err != nil {
			return nil, err
		}
		if a.UserID != actorID {
			return nil, ErrForbidden
		}
	}
	return o, nil
}

func (s *Service) getByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func combine(date time.Time, hm string) (time.Time, error) {
	t, err := time.Parse(domain.SlotTimeLayout, hm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
