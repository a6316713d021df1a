package repository

import (
	"context"
	"testing"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestNextQueueNumber(t *testing.T) {
	db := newTestDB(t)

	n, err := nextQueueNumber(db)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	q3, q9 := 3, 9
	assert.NoError(t, db.Create(&orderModel{AppointmentID: 1, QueueNumber: &q3, Status: string(domain.OrderPending)}).Error)
	assert.NoError(t, db.Create(&orderModel{AppointmentID: 2, QueueNumber: &q9, Status: string(domain.OrderCancelled)}).Error)

	// cancelled orders do not count towards the maximum
	n, err = nextQueueNumber(db)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestRenumberActive(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewOrderRepository(db)

	q2, q5 := 2, 5
	assert.NoError(t, db.Create(&orderModel{AppointmentID: 1, QueueNumber: &q2, Status: string(domain.OrderPending)}).Error)
	assert.NoError(t, db.Create(&orderModel{AppointmentID: 2, QueueNumber: &q5, Status: string(domain.OrderReadyToCheck)}).Error)
	assert.NoError(t, db.Create(&orderModel{AppointmentID: 3, Status: string(domain.OrderCancelled)}).Error)

	queueOf := func(appointmentID int64) *int {
		o, err := repo.GetByAppointmentID(ctx, appointmentID)
		assert.NoError(t, err)
		return o.QueueNumber
	}

	assert.NoError(t, repo.RenumberActive(ctx))
	assert.Equal(t, 1, *queueOf(1))
	assert.Equal(t, 2, *queueOf(2))
	assert.Nil(t, queueOf(3))

	// re-running on a compact queue changes nothing
	assert.NoError(t, repo.RenumberActive(ctx))
	assert.Equal(t, 1, *queueOf(1))
	assert.Equal(t, 2, *queueOf(2))
}

func TestCancelWithRefund(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	appointments := NewAppointmentRepository(db)
	repo := NewOrderRepository(db)

	a := seedAppointment(t, db, testDay(), "09:00")
	o, err := appointments.Accept(ctx, a.ID)
	assert.NoError(t, err)

	t.Run("a failed evidence write rolls the transition back", func(t *testing.T) {
		err := repo.CancelWithRefund(ctx, o.ID, domain.OrderPending, 999, "refund.png")
		assert.Error(t, err)

		got, err := repo.GetByID(ctx, o.ID)
		assert.NoError(t, err)
		assert.Equal(t, domain.OrderPending, got.Status)
		assert.NotNil(t, got.QueueNumber)
	})

	t.Run("a stale source status matches no row", func(t *testing.T) {
		err := repo.CancelWithRefund(ctx, o.ID, domain.OrderCompleted, a.ID, "refund.png")
		assert.ErrorIs(t, err, ErrStaleState)
	})

	t.Run("cancellation and evidence commit together", func(t *testing.T) {
		assert.NoError(t, repo.CancelWithRefund(ctx, o.ID, domain.OrderPending, a.ID, "refund.png"))

		got, err := repo.GetByID(ctx, o.ID)
		assert.NoError(t, err)
		assert.Equal(t, domain.OrderCancelled, got.Status)
		assert.Nil(t, got.QueueNumber)

		appt, err := appointments.GetByID(ctx, a.ID)
		assert.NoError(t, err)
		if assert.NotNil(t, appt.RefundEvidence) {
			assert.Equal(t, "refund.png", *appt.RefundEvidence)
		}
	})
}
