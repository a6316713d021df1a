package repository

import (
	"context"
	"testing"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestCreateSlotExclusivity(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAppointmentRepository(db)
	day := testDay()

	seedAppointment(t, db, day, "09:00")

	second := &domain.Appointment{
		UserID:            8,
		ServiceTypeID:     1,
		AppointmentDate:   day,
		AppointmentTime:   "09:00",
		Status:            domain.AppointmentPending,
		State:             domain.AppointmentActive,
		PaymentProofImage: "proof2.png",
	}
	assert.ErrorIs(t, repo.Create(ctx, second), ErrSlotTaken)

	// a cancelled holder releases the slot
	err := db.Model(&appointmentModel{}).
		Where("appointment_time = ?", "09:00").
		Update("state", string(domain.AppointmentCancelled)).Error
	assert.NoError(t, err)
	assert.NoError(t, repo.Create(ctx, second))
}

// Two transactions racing for a free slot both pass the pre-check; the
// partial unique index must fail the second insert.
func TestSlotUniqueIndexBackstop(t *testing.T) {
	db := newTestDB(t)
	day := testDay()

	row := func(status, state string) *appointmentModel {
		return &appointmentModel{
			UserID:            7,
			ServiceTypeID:     1,
			DueDate:           day,
			AppointmentDate:   day,
			AppointmentTime:   "10:30",
			Status:            status,
			State:             state,
			PaymentProofImage: "proof.png",
		}
	}

	assert.NoError(t, db.Create(row(string(domain.AppointmentPending), string(domain.AppointmentActive))).Error)

	err := db.Create(row(string(domain.AppointmentPending), string(domain.AppointmentActive))).Error
	assert.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	// rejected and cancelled rows sit outside the index
	assert.NoError(t, db.Create(row(string(domain.AppointmentRejected), string(domain.AppointmentActive))).Error)
	assert.NoError(t, db.Create(row(string(domain.AppointmentPending), string(domain.AppointmentCancelled))).Error)
}

func TestUpdateScheduleSlotChecks(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAppointmentRepository(db)
	day := testDay()

	seedAppointment(t, db, day, "09:00")
	b := seedAppointment(t, db, day, "10:00")

	assert.ErrorIs(t, repo.UpdateSchedule(ctx, b.ID, day, "09:00", day), ErrSlotTaken)

	// the record's own slot is excluded, so keeping the time succeeds
	assert.NoError(t, repo.UpdateSchedule(ctx, b.ID, day, "10:00", day))
	assert.NoError(t, repo.UpdateSchedule(ctx, b.ID, day, "11:00", day))
}

func TestAcceptAssignsSequentialQueueNumbers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAppointmentRepository(db)
	day := testDay()

	a1 := seedAppointment(t, db, day, "09:00")
	a2 := seedAppointment(t, db, day, "09:30")

	o1, err := repo.Accept(ctx, a1.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, *o1.QueueNumber)

	o2, err := repo.Accept(ctx, a2.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, *o2.QueueNumber)

	// a second accept finds the appointment no longer pending
	_, err = repo.Accept(ctx, a1.ID)
	assert.ErrorIs(t, err, ErrStaleState)

	// cancelling releases the number; the next accept takes max active + 1
	orders := NewOrderRepository(db)
	assert.NoError(t, orders.CancelWithRefund(ctx, o2.ID, domain.OrderPending, a2.ID, "refund.png"))

	a3 := seedAppointment(t, db, day, "10:00")
	o3, err := repo.Accept(ctx, a3.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, *o3.QueueNumber)
}

func TestAcceptQueueConflictRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewAppointmentRepository(db)

	a := seedAppointment(t, db, testDay(), "09:00")

	n := 9
	err := db.Create(&orderModel{
		AppointmentID: a.ID,
		QueueNumber:   &n,
		Status:        string(domain.OrderPending),
	}).Error
	assert.NoError(t, err)

	_, err = repo.Accept(ctx, a.ID)
	assert.ErrorIs(t, err, ErrQueueConflict)

	// the approval flip must not survive the failed order insert
	got, err := repo.GetByID(ctx, a.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.AppointmentPending, got.Status)
}
