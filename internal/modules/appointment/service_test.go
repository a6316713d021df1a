package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
	"github.com/Matsupon/tailoring-system-sub001/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	args := m.Called(ctx, a)
	if a != nil && args.Error(0) == nil {
		a.ID = 101
	}
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) List(ctx context.Context, status string) ([]domain.Appointment, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ReservedTimes(ctx context.Context, date time.Time, excludeAppointmentID int64) (map[string]bool, error) {
	args := m.Called(ctx, date, excludeAppointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateSchedule(ctx context.Context, id int64, date time.Time, hm string, dueDate time.Time) error {
	args := m.Called(ctx, id, date, hm, dueDate)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Accept(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockAppointmentRepository) Reject(ctx context.Context, id int64, refundEvidence string) error {
	args := m.Called(ctx, id, refundEvidence)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Cancel(ctx context.Context, id int64, hasOrder bool) error {
	args := m.Called(ctx, id, hasOrder)
	return args.Error(0)
}

func (m *MockAppointmentRepository) AttachRefundEvidence(ctx context.Context, id int64, refundEvidence string) error {
	args := m.Called(ctx, id, refundEvidence)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockOrderReader struct {
	mock.Mock
}

func (m *MockOrderReader) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderReader) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.Order, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type MockServiceTypeReader struct {
	mock.Mock
}

func (m *MockServiceTypeReader) GetByID(ctx context.Context, id int64) (*domain.ServiceType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceType), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) NotifyAppointmentRequested(ctx context.Context, appointmentID int64, date time.Time, hm string) error {
	return m.Called(ctx, appointmentID, date, hm).Error(0)
}

func (m *MockNotificationSender) NotifyAppointmentBooked(ctx context.Context, userID, appointmentID, orderID int64, queueNumber int) error {
	return m.Called(ctx, userID, appointmentID, orderID, queueNumber).Error(0)
}

func (m *MockNotificationSender) NotifyAppointmentAccepted(ctx context.Context, appointmentID, orderID int64, queueNumber int) error {
	return m.Called(ctx, appointmentID, orderID, queueNumber).Error(0)
}

func (m *MockNotificationSender) NotifyAppointmentRejected(ctx context.Context, userID, appointmentID int64, reason string) error {
	return m.Called(ctx, userID, appointmentID, reason).Error(0)
}

func (m *MockNotificationSender) NotifyOrderDetailsUpdated(ctx context.Context, userID, appointmentID int64, date time.Time, hm string) error {
	return m.Called(ctx, userID, appointmentID, date, hm).Error(0)
}

func (m *MockNotificationSender) NotifyOrderCancelledToAdmins(ctx context.Context, appointmentID int64, orderID *int64) error {
	return m.Called(ctx, appointmentID, orderID).Error(0)
}

func (m *MockNotificationSender) NotifyRefundProcessed(ctx context.Context, userID, appointmentID int64) error {
	return m.Called(ctx, userID, appointmentID).Error(0)
}

func newTestService() (*Service, *MockAppointmentRepository, *MockOrderReader, *MockServiceTypeReader, *MockNotificationSender) {
	appts := new(MockAppointmentRepository)
	orders := new(MockOrderReader)
	types := new(MockServiceTypeReader)
	notifs := new(MockNotificationSender)
	svc := NewService(appts, orders, types, notifs)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc, appts, orders, types, notifs
}

func validCreateRequest() CreateAppointmentRequest {
	return CreateAppointmentRequest{
		ServiceTypeID:     1,
		Sizes:             map[string]int{"M": 3, "L": 2},
		DueDate:           "2026-04-01",
		AppointmentDate:   "2026-03-15",
		AppointmentTime:   "09:30",
		DesignImage:       "design.png",
		PaymentProofImage: "proof.png",
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("books a pending appointment and notifies admins", func(t *testing.T) {
		svc, appts, _, types, notifs := newTestService()
		types.On("GetByID", ctx, int64(1)).Return(&domain.ServiceType{ID: 1, Name: "Gown"}, nil)
		appts.On("Create", ctx, mock.AnythingOfType("*domain.Appointment")).Return(nil)
		notifs.On("NotifyAppointmentRequested", ctx, int64(101), mock.Anything, "09:30").Return(nil)

		a, err := svc.Create(ctx, 7, validCreateRequest())

		assert.NoError(t, err)
		assert.Equal(t, domain.AppointmentPending, a.Status)
		assert.Equal(t, domain.AppointmentActive, a.State)
		assert.Equal(t, 5, a.TotalQuantity)
		notifs.AssertExpectations(t)
	})

	t.Run("rejects empty sizes", func(t *testing.T) {
		svc, _, _, _, _ := newTestService()
		req := validCreateRequest()
		req.Sizes = map[string]int{}

		_, err := svc.Create(ctx, 7, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc, _, _, _, _ := newTestService()
		req := validCreateRequest()
		req.Sizes = map[string]int{"M": 0}

		_, err := svc.Create(ctx, 7, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects missing payment proof", func(t *testing.T) {
		svc, _, _, _, _ := newTestService()
		req := validCreateRequest()
		req.PaymentProofImage = ""

		_, err := svc.Create(ctx, 7, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects off-grid time", func(t *testing.T) {
		svc, _, _, _, _ := newTestService()
		req := validCreateRequest()
		req.AppointmentTime = "12:00"

		_, err := svc.Create(ctx, 7, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects past date", func(t *testing.T) {
		svc, _, _, _, _ := newTestService()
		req := validCreateRequest()
		req.AppointmentDate = "2026-03-09"

		_, err := svc.Create(ctx, 7, req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects unknown service type", func(t *testing.T) {
		svc, _, _, types, _ := newTestService()
		types.On("GetByID", ctx, int64(1)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Create(ctx, 7, validCreateRequest())
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("maps a lost slot race to ErrSlotTaken", func(t *testing.T) {
		svc, appts, _, types, _ := newTestService()
		types.On("GetByID", ctx, int64(1)).Return(&domain.ServiceType{ID: 1}, nil)
		appts.On("Create", ctx, mock.AnythingOfType("*domain.Appointment")).Return(repository.ErrSlotTaken)

		_, err := svc.Create(ctx, 7, validCreateRequest())
		assert.ErrorIs(t, err, ErrSlotTaken)
	})
}

func TestAvailableSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("excludes reserved times", func(t *testing.T) {
		svc, appts, _, _, _ := newTestService()
		appts.On("ReservedTimes", ctx, mock.Anything, int64(0)).
			Return(map[string]bool{"08:00": true}, nil)

		slots, err := svc.AvailableSlots(ctx, "2026-03-15", 0, 0)
		assert.NoError(t, err)
		assert.Len(t, slots, 22)
		assert.NotContains(t, slots, "08:00")
	})

	t.Run("resolves an order exclusion to its appointment", func(t *testing.T) {
		svc, appts, orders, _, _ := newTestService()
		orders.On("GetByID", ctx, int64(55)).Return(&domain.Order{ID: 55, AppointmentID: 9}, nil)
		appts.On("ReservedTimes", ctx, mock.Anything, int64(9)).Return(map[string]bool{}, nil)

		slots, err := svc.AvailableSlots(ctx, "2026-03-15", 0, 55)
		assert.NoError(t, err)
		assert.Len(t, slots, 23)
		appts.AssertExpectations(t)
	})

	t.Run("past date yields no slots", func(t *testing.T) {
		svc, appts, _, _, _ := newTestService()
		appts.On("ReservedTimes", ctx, mock.Anything, int64(0)).Return(map[string]bool{}, nil)

		slots, err := svc.AvailableSlots(ctx, "2026-03-01", 0, 0)
		assert.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("bad date is a validation error", func(t *testing.T) {
		svc, _, _, _, _ := newTestService()
		_, err := svc.AvailableSlots(ctx, "15-03-2026", 0, 0)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestAccept(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the order and fires both notifications", func(t *testing.T) {
		svc, appts, _, _, notifs := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, UserID: 7,
			Status: domain.AppointmentPending,
			State:  domain.AppointmentActive,
		}, nil)
		q := 4
		appts.On("Accept", ctx, int64(3)).Return(&domain.Order{ID: 12, AppointmentID: 3, QueueNumber: &q, Status: domain.OrderPending}, nil)
		notifs.On("NotifyAppointmentBooked", ctx, int64(7), int64(3), int64(12), 4).Return(nil)
		notifs.On("NotifyAppointmentAccepted", ctx, int64(3), int64(12), 4).Return(nil)

		o, err := svc.Accept(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, domain.OrderPending, o.Status)
		assert.Equal(t, 4, *o.QueueNumber)
		notifs.AssertExpectations(t)
	})

	t.Run("rejects non-pending appointments", func(t *testing.T) {
		svc, appts, _, _, _ := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, Status: domain.AppointmentAccepted, State: domain.AppointmentActive,
		}, nil)

		_, err := svc.Accept(ctx, 3)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("rejects cancelled appointments", func(t *testing.T) {
		svc, appts, _, _, _ := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, Status: domain.AppointmentPending, State: domain.AppointmentCancelled,
		}, nil)

		_, err := svc.Accept(ctx, 3)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("maps a concurrent decision to ErrInvalidState", func(t *testing.T) {
		svc, appts, _, _, _ := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, Status: domain.AppointmentPending, State: domain.AppointmentActive,
		}, nil)
		appts.On("Accept", ctx, int64(3)).Return(nil, repository.ErrStaleState)

		_, err := svc.Accept(ctx, 3)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("maps a queue number collision to ErrQueueConflict", func(t *testing.T) {
		svc, appts, _, _, notifs := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, Status: domain.AppointmentPending, State: domain.AppointmentActive,
		}, nil)
		appts.On("Accept", ctx, int64(3)).Return(nil, repository.ErrQueueConflict)

		_, err := svc.Accept(ctx, 3)
		assert.ErrorIs(t, err, ErrQueueConflict)
		notifs.AssertNotCalled(t, "NotifyAppointmentAccepted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()

	t.Run("requires refund evidence", func(t *testing.T) {
		svc, _, _, _, _ := newTestService()
		err := svc.Reject(ctx, 3, RejectRequest{})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects a pending appointment and notifies the customer", func(t *testing.T) {
		svc, appts, _, _, notifs := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, UserID: 7, Status: domain.AppointmentPending, State: domain.AppointmentActive,
		}, nil)
		appts.On("Reject", ctx, int64(3), "refund.png").Return(nil)
		notifs.On("NotifyAppointmentRejected", ctx, int64(7), int64(3), "too busy").Return(nil)

		err := svc.Reject(ctx, 3, RejectRequest{RefundEvidence: "refund.png", Reason: "too busy"})
		assert.NoError(t, err)
		notifs.AssertExpectations(t)
	})

	t.Run("only pending appointments can be rejected", func(t *testing.T) {
		svc, appts, _, _, _ := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, Status: domain.AppointmentAccepted,
		}, nil)

		err := svc.Reject(ctx, 3, RejectRequest{RefundEvidence: "refund.png"})
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("pending appointment cancels without an order", func(t *testing.T) {
		svc, appts, _, _, notifs := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, UserID: 7, Status: domain.AppointmentPending, State: domain.AppointmentActive,
		}, nil)
		appts.On("Cancel", ctx, int64(3), false).Return(nil)
		notifs.On("NotifyOrderCancelledToAdmins", ctx, int64(3), (*int64)(nil)).Return(nil)

		err := svc.Cancel(ctx, 7, 3)
		assert.NoError(t, err)
		appts.AssertExpectations(t)
	})

	t.Run("accepted appointment cancels while the order is untouched", func(t *testing.T) {
		svc, appts, orders, _, notifs := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, UserID: 7, Status: domain.AppointmentAccepted, State: domain.AppointmentActive,
		}, nil)
		orders.On("GetByAppointmentID", ctx, int64(3)).Return(&domain.Order{
			ID: 12, AppointmentID: 3, Status: domain.OrderPending,
		}, nil)
		appts.On("Cancel", ctx, int64(3), true).Return(nil)
		notifs.On("NotifyOrderCancelledToAdmins", ctx, int64(3), mock.Anything).Return(nil)

		err := svc.Cancel(ctx, 7, 3)
		assert.NoError(t, err)
	})

	t.Run("handled order blocks customer cancellation", func(t *testing.T) {
		svc, appts, orders, _, _ := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, UserID: 7, Status: domain.AppointmentAccepted, State: domain.AppointmentActive,
		}, nil)
		orders.On("GetByAppointmentID", ctx, int64(3)).Return(&domain.Order{
			ID: 12, Status: domain.OrderPending, Handled: true,
		}, nil)

		err := svc.Cancel(ctx, 7, 3)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("only the owner may cancel", func(t *testing.T) {
		svc, appts, _, _, _ := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, UserID: 7, Status: domain.AppointmentPending, State: domain.AppointmentActive,
		}, nil)

		err := svc.Cancel(ctx, 8, 3)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestReschedule(t *testing.T) {
	ctx := context.Background()

	req := RescheduleRequest{
		AppointmentDate: "2026-03-20",
		AppointmentTime: "10:00",
		DueDate:         "2026-04-05",
	}

	t.Run("moves an editable appointment", func(t *testing.T) {
		svc, appts, _, _, notifs := newTestService()
		a := &domain.Appointment{
			ID: 3, UserID: 7, Status: domain.AppointmentAccepted, State: domain.AppointmentActive,
		}
		appts.On("GetByID", ctx, int64(3)).Return(a, nil)
		appts.On("UpdateSchedule", ctx, int64(3), mock.Anything, "10:00", mock.Anything).Return(nil)
		notifs.On("NotifyOrderDetailsUpdated", ctx, int64(7), int64(3), mock.Anything, "10:00").Return(nil)

		_, err := svc.Reschedule(ctx, 7, domain.RoleCustomer, 3, req)
		assert.NoError(t, err)
	})

	t.Run("rejected appointment is frozen", func(t *testing.T) {
		svc, appts, _, _, _ := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, UserID: 7, Status: domain.AppointmentRejected, State: domain.AppointmentActive,
		}, nil)

		_, err := svc.Reschedule(ctx, 7, domain.RoleCustomer, 3, req)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("slot conflict surfaces as ErrSlotTaken", func(t *testing.T) {
		svc, appts, _, _, _ := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, UserID: 7, Status: domain.AppointmentPending, State: domain.AppointmentActive,
		}, nil)
		appts.On("UpdateSchedule", ctx, int64(3), mock.Anything, "10:00", mock.Anything).Return(repository.ErrSlotTaken)

		_, err := svc.Reschedule(ctx, 7, domain.RoleCustomer, 3, req)
		assert.ErrorIs(t, err, ErrSlotTaken)
	})
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches evidence to a cancelled appointment", func(t *testing.T) {
		svc, appts, _, _, notifs := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, UserID: 7, Status: domain.AppointmentAccepted, State: domain.AppointmentCancelled,
		}, nil)
		appts.On("AttachRefundEvidence", ctx, int64(3), "refund.png").Return(nil)
		notifs.On("NotifyRefundProcessed", ctx, int64(7), int64(3)).Return(nil)

		err := svc.Refund(ctx, 3, RefundRequest{RefundEvidence: "refund.png"})
		assert.NoError(t, err)
		notifs.AssertExpectations(t)
	})

	t.Run("active non-rejected appointment is not refundable", func(t *testing.T) {
		svc, appts, _, _, _ := newTestService()
		appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{
			ID: 3, Status: domain.AppointmentAccepted, State: domain.AppointmentActive,
		}, nil)

		err := svc.Refund(ctx, 3, RefundRequest{RefundEvidence: "refund.png"})
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestGetOwnership(t *testing.T) {
	ctx := context.Background()

	svc, appts, _, _, _ := newTestService()
	appts.On("GetByID", ctx, int64(3)).Return(&domain.Appointment{ID: 3, UserID: 7}, nil)

	_, err := svc.Get(ctx, 8, domain.RoleCustomer, 3)
	assert.ErrorIs(t, err, ErrForbidden)

	a, err := svc.Get(ctx, 8, domain.RoleAdmin, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), a.ID)
}
