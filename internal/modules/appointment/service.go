package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
	"github.com/Matsupon/tailoring-system-sub001/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	appointments AppointmentRepository
	orders       OrderReader
	serviceTypes ServiceTypeReader
	notifs       NotificationSender

	// now is swappable in tests; past-day rules depend on it.
	now func() time.Time
}

func NewService(
	appointments AppointmentRepository,
	orders OrderReader,
	serviceTypes ServiceTypeReader,
	notifs NotificationSender,
) *Service {
	return &Service{
		appointments: appointments,
		orders:       orders,
		serviceTypes: serviceTypes,
		notifs:       notifs,
		now:          time.Now,
	}
}

// Create books a new slot for the customer. The repository serializes the
// check-then-insert per (date, time); a losing concurrent request surfaces
// as ErrSlotTaken.
func (s *Service) Create(ctx context.Context, userID int64, req CreateAppointmentRequest) (*domain.Appointment, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}

	sizes := domain.SizeBreakdown(req.Sizes)
	if len(sizes) == 0 {
		return nil, ErrValidation
	}
	for _, q := range sizes {
		if q <= 0 {
			return nil, ErrValidation
		}
	}

	if req.PaymentProofImage == "" {
		return nil, ErrValidation
	}

	if !domain.ValidSlotTime(req.AppointmentTime) {
		return nil, ErrValidation
	}

	date, err := time.Parse(domain.SlotDateLayout, req.AppointmentDate)
	if err != nil {
		return nil, ErrValidation
	}
	dueDate, err := time.Parse(domain.SlotDateLayout, req.DueDate)
	if err != nil {
		return nil, ErrValidation
	}

	if domain.DateOnly(date).Before(domain.DateOnly(s.now())) {
		return nil, ErrValidation
	}

	if _, err := s.serviceTypes.GetByID(ctx, req.ServiceTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrValidation
		}
		return nil, err
	}

	a := &domain.Appointment{
		UserID:            userID,
		ServiceTypeID:     req.ServiceTypeID,
		Sizes:             sizes,
		TotalQuantity:     sizes.Total(),
		DueDate:           domain.DateOnly(dueDate),
		AppointmentDate:   domain.DateOnly(date),
		AppointmentTime:   req.AppointmentTime,
		Status:            domain.AppointmentPending,
		State:             domain.AppointmentActive,
		DesignImage:       req.DesignImage,
		PaymentProofImage: req.PaymentProofImage,
	}

	if err := s.appointments.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	_ = s.notifs.NotifyAppointmentRequested(ctx, a.ID, a.AppointmentDate, a.AppointmentTime)

	return a, nil
}

// AvailableSlots lists bookable "HH:MM" times for a date. When rescheduling,
// the caller passes the appointment (or its order) being edited so its own
// slot does not count as a conflict. Recomputed on every call.
func (s *Service) AvailableSlots(ctx context.Context, dateStr string, excludeAppointmentID, excludeOrderID int64) ([]string, error) {
	date, err := time.Parse(domain.SlotDateLayout, dateStr)
	if err != nil {
		return nil, ErrValidation
	}

	if excludeOrderID > 0 && excludeAppointmentID == 0 {
		o, err := s.orders.GetByID(ctx, excludeOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		excludeAppointmentID = o.AppointmentID
	}

	reserved, err := s.appointments.ReservedTimes(ctx, date, excludeAppointmentID)
	if err != nil {
		return nil, err
	}

	return domain.AvailableTimes(date, s.now(), reserved), nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	return s.appointments.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context, status string) ([]domain.Appointment, error) {
	if status != "" {
		switch domain.ApprovalStatus(status) {
		case domain.AppointmentPending, domain.AppointmentAccepted, domain.AppointmentRejected:
		default:
			return nil, ErrValidation
		}
	}
	return s.appointments.List(ctx, status)
}

// Get returns one appointment; customers may only read their own.
func (s *Service) Get(ctx context.Context, actorID int64, actorRole domain.UserRole, id int64) (*domain.Appointment, error) {
	a, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != domain.RoleAdmin && a.UserID != actorID {
		return nil, ErrForbidden
	}
	return a, nil
}

// Reschedule edits date/time/due date while the appointment is still
// editable. Availability is re-checked with the appointment's own slot
// excluded, so moving to the currently held slot always succeeds.
func (s *Service) Reschedule(ctx context.Context, actorID int64, actorRole domain.UserRole, id int64, req RescheduleRequest) (*domain.Appointment, error) {
	if !domain.ValidSlotTime(req.AppointmentTime) {
		return nil, ErrValidation
	}
	date, err := time.Parse(domain.SlotDateLayout, req.AppointmentDate)
	if err != nil {
		return nil, ErrValidation
	}
	dueDate, err := time.Parse(domain.SlotDateLayout, req.DueDate)
	if err != nil {
		return nil, ErrValidation
	}
	if domain.DateOnly(date).Before(domain.DateOnly(s.now())) {
		return nil, ErrValidation
	}

	a, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != domain.RoleAdmin && a.UserID != actorID {
		return nil, ErrForbidden
	}
	if !a.Editable() {
		return nil, ErrInvalidState
	}

	if err := s.appointments.UpdateSchedule(ctx, id, date, req.AppointmentTime, dueDate); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			return nil, ErrSlotTaken
		case errors.Is(err, repository.ErrStaleState):
			return nil, ErrInvalidState
		}
		return nil, err
	}

	_ = s.notifs.NotifyOrderDetailsUpdated(ctx, a.UserID, id, domain.DateOnly(date), req.AppointmentTime)

	return s.getByID(ctx, id)
}

// Cancel is the customer withdrawal: always allowed while pending, and after
// acceptance only until the shop marks the order handled or moves it past
// Pending. Cancelling cascades to the order inside one transaction.
func (s *Service) Cancel(ctx context.Context, userID, id int64) error {
	a, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if a.UserID != userID {
		return ErrForbidden
	}
	if a.State != domain.AppointmentActive {
		return ErrInvalidState
	}

	hasOrder := false
	var orderID *int64
	switch a.Status {
	case domain.AppointmentPending:
		// an unreviewed request may always be withdrawn
	case domain.AppointmentAccepted:
		o, err := s.orders.GetByAppointmentID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidState
			}
			return err
		}
		if !o.CancellableByCustomer() {
			return ErrInvalidState
		}
		hasOrder = true
		orderID = &o.ID
	default:
		return ErrInvalidState
	}

	if err := s.appointments.Cancel(ctx, id, hasOrder); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return ErrInvalidState
		}
		return err
	}

	_ = s.notifs.NotifyOrderCancelledToAdmins(ctx, id, orderID)

	return nil
}

// Accept is the admin approval: pending→accepted plus the Pending order with
// its queue number, atomically.
func (s *Service) Accept(ctx context.Context, id int64) (*domain.Order, error) {
	a, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AppointmentPending || a.State != domain.AppointmentActive {
		return nil, ErrInvalidState
	}

	o, err := s.appointments.Accept(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleState):
			return nil, ErrInvalidState
		case errors.Is(err, repository.ErrQueueConflict):
			return nil, ErrQueueConflict
		}
		return nil, err
	}

	queueNumber := 0
	if o.QueueNumber != nil {
		queueNumber = *o.QueueNumber
	}
	_ = s.notifs.NotifyAppointmentBooked(ctx, a.UserID, id, o.ID, queueNumber)
	_ = s.notifs.NotifyAppointmentAccepted(ctx, id, o.ID, queueNumber)

	return o, nil
}

// Reject is the admin denial. The refund evidence image is required with the
// transition; no order is created.
func (s *Service) Reject(ctx context.Context, id int64, req RejectRequest) error {
	if req.RefundEvidence == "" {
		return ErrValidation
	}

	a, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status != domain.AppointmentPending {
		return ErrInvalidState
	}

	if err := s.appointments.Reject(ctx, id, req.RefundEvidence); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return ErrInvalidState
		}
		return err
	}

	_ = s.notifs.NotifyAppointmentRejected(ctx, a.UserID, id, req.Reason)

	return nil
}

// Refund attaches refund evidence after a cancellation and tells the
// customer the refund went through.
func (s *Service) Refund(ctx context.Context, id int64, req RefundRequest) error {
	if req.RefundEvidence == "" {
		return ErrValidation
	}

	a, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if a.State != domain.AppointmentCancelled && a.Status != domain.AppointmentRejected {
		return ErrInvalidState
	}

	if err := s.appointments.AttachRefundEvidence(ctx, id, req.RefundEvidence); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	_ = s.notifs.NotifyRefundProcessed(ctx, a.UserID, id)

	return nil
}

// Delete hard-deletes the whole record, cascading to the order and feedback.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.appointments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) getByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
