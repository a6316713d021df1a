package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"

	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

type appointmentModel struct {
	ID                int64      `gorm:"column:id;primaryKey"`
	UserID            int64      `gorm:"column:user_id;index"`
	ServiceTypeID     int64      `gorm:"column:service_type_id"`
	Sizes             []byte     `gorm:"column:sizes"`
	TotalQuantity     int        `gorm:"column:total_quantity"`
	DueDate           time.Time  `gorm:"column:due_date"`
	AppointmentDate   time.Time  `gorm:"column:appointment_date;uniqueIndex:uniq_appointments_live_slot,where:state <> 'cancelled' AND status <> 'rejected'"`
	AppointmentTime   string     `gorm:"column:appointment_time;uniqueIndex:uniq_appointments_live_slot"`
	Status            string     `gorm:"column:status"`
	State             string     `gorm:"column:state"`
	DesignImage       *string    `gorm:"column:design_image"`
	PaymentProofImage string     `gorm:"column:payment_proof_image"`
	RefundEvidence    *string    `gorm:"column:refund_evidence"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (appointmentModel) TableName() string { return "appointments" }

func toDomainAppointment(m appointmentModel) *domain.Appointment {
	var sizes domain.SizeBreakdown
	if len(m.Sizes) > 0 {
		_ = json.Unmarshal(m.Sizes, &sizes)
	}

	var design string
	if m.DesignImage != nil {
		design = *m.DesignImage
	}

	return &domain.Appointment{
		ID:                m.ID,
		UserID:            m.UserID,
		ServiceTypeID:     m.ServiceTypeID,
		Sizes:             sizes,
		TotalQuantity:     m.TotalQuantity,
		DueDate:           m.DueDate,
		AppointmentDate:   m.AppointmentDate,
		AppointmentTime:   m.AppointmentTime,
		Status:            domain.ApprovalStatus(m.Status),
		State:             domain.AppointmentState(m.State),
		DesignImage:       design,
		PaymentProofImage: m.PaymentProofImage,
		RefundEvidence:    m.RefundEvidence,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toAppointmentModel(a *domain.Appointment) appointmentModel {
	sizes, _ := json.Marshal(a.Sizes)

	var design *string
	if a.DesignImage != "" {
		d := a.DesignImage
		design = &d
	}

	return appointmentModel{
		ID:                a.ID,
		UserID:            a.UserID,
		ServiceTypeID:     a.ServiceTypeID,
		Sizes:             sizes,
		TotalQuantity:     a.TotalQuantity,
		DueDate:           a.DueDate,
		AppointmentDate:   domain.DateOnly(a.AppointmentDate),
		AppointmentTime:   a.AppointmentTime,
		Status:            string(a.Status),
		State:             string(a.State),
		DesignImage:       design,
		PaymentProofImage: a.PaymentProofImage,
		RefundEvidence:    a.RefundEvidence,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// slotHeld reports whether a (date, time) pair is already taken by a live
// appointment or an active order's check-in. It is only the fast path: two
// transactions racing for a free slot both pass this check, and the partial
// unique index uniq_appointments_live_slot decides the winner at insert.
func slotHeld(tx *gorm.DB, date time.Time, hm string, excludeAppointmentID int64) (bool, error) {
	var count int64
	q := tx.Model(&appointmentModel{}).
		Where("appointment_date = ? AND appointment_time = ?", date, hm).
		Where("state <> ? AND status <> ?", string(domain.AppointmentCancelled), string(domain.AppointmentRejected))
	if excludeAppointmentID > 0 {
		q = q.Where("id <> ?", excludeAppointmentID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	q = tx.Model(&orderModel{}).
		Where("check_in_date = ? AND check_in_time = ?", date, hm).
		Where("status <> ?", string(domain.OrderCancelled))
	if excludeAppointmentID > 0 {
		q = q.Where("appointment_id <> ?", excludeAppointmentID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new pending appointment. The slot pre-check and the
// insert run in one transaction; when two racers both pass the pre-check,
// the unique index rejects the second insert and the loser gets
// ErrSlotTaken, never a silent double booking.
func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	m := toAppointmentModel(a)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		held, err := slotHeld(tx, m.AppointmentDate, m.AppointmentTime, 0)
		if err != nil {
			return err
		}
		if held {
			return ErrSlotTaken
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return err
	}

	*a = *toDomainAppointment(m)
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	var m appointmentModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainAppointment(m), nil
}

func (r *AppointmentRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Appointment, error) {
	var rows []appointmentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Appointment, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainAppointment(m))
	}
	return out, nil
}

// List returns all appointments, optionally filtered by approval status.
func (r *AppointmentRepository) List(ctx context.Context, status string) ([]domain.Appointment, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []appointmentModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Appointment, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainAppointment(m))
	}
	return out, nil
}

// ReservedTimes returns the "HH:MM" values held on date by live appointments
// and active order check-ins, minus the record being rescheduled (so editing
// to the currently held slot always succeeds).
func (r *AppointmentRepository) ReservedTimes(ctx context.Context, date time.Time, excludeAppointmentID int64) (map[string]bool, error) {
	day := domain.DateOnly(date)
	reserved := make(map[string]bool)

	var times []string
	q := r.db.WithContext(ctx).Model(&appointmentModel{}).
		Where("appointment_date = ?", day).
		Where("state <> ? AND status <> ?", string(domain.AppointmentCancelled), string(domain.AppointmentRejected))
	if excludeAppointmentID > 0 {
		q = q.Where("id <> ?", excludeAppointmentID)
	}
	if err := q.Pluck("appointment_time", &times).Error; err != nil {
		return nil, err
	}
	for _, hm := range times {
		reserved[hm] = true
	}

	times = times[:0]
	q = r.db.WithContext(ctx).Model(&orderModel{}).
		Where("check_in_date = ? AND check_in_time IS NOT NULL", day).
		Where("status <> ?", string(domain.OrderCancelled))
	if excludeAppointmentID > 0 {
		q = q.Where("appointment_id <> ?", excludeAppointmentID)
	}
	if err := q.Pluck("check_in_time", &times).Error; err != nil {
		return nil, err
	}
	for _, hm := range times {
		reserved[hm] = true
	}

	return reserved, nil
}

// UpdateSchedule moves an appointment to a new slot, re-checking slot
// exclusivity in the same transaction with the appointment's own slot
// excluded.
func (r *AppointmentRepository) UpdateSchedule(ctx context.Context, id int64, date time.Time, hm string, dueDate time.Time) error {
	day := domain.DateOnly(date)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		held, err := slotHeld(tx, day, hm, id)
		if err != nil {
			return err
		}
		if held {
			return ErrSlotTaken
		}

		res := tx.Model(&appointmentModel{}).
			Where("id = ? AND state = ?", id, string(domain.AppointmentActive)).
			Where("status IN ?", []string{string(domain.AppointmentPending), string(domain.AppointmentAccepted)}).
			Updates(map[string]any{
				"appointment_date": day,
				"appointment_time": hm,
				"due_date":         domain.DateOnly(dueDate),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}
		return nil
	})
	if err != nil && isUniqueViolation(err) {
		return ErrSlotTaken
	}
	return err
}

// Accept moves a pending appointment to accepted and creates its Pending
// order with the next queue number, all in one transaction. When two accepts
// race for the same number the unique index on queue_number fails the loser,
// surfaced as ErrQueueConflict.
func (r *AppointmentRepository) Accept(ctx context.Context, id int64) (*domain.Order, error) {
	var m orderModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&appointmentModel{}).
			Where("id = ? AND status = ? AND state = ?",
				id, string(domain.AppointmentPending), string(domain.AppointmentActive)).
			Update("status", string(domain.AppointmentAccepted))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}

		next, err := nextQueueNumber(tx)
		if err != nil {
			return err
		}

		m = orderModel{
			AppointmentID: id,
			QueueNumber:   &next,
			Status:        string(domain.OrderPending),
			Handled:       false,
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrQueueConflict
		}
		return nil, err
	}

	return toDomainOrder(m), nil
}

// Reject moves a pending appointment to rejected. The refund evidence image
// is part of the transition: without it the rejection is not complete.
func (r *AppointmentRepository) Reject(ctx context.Context, id int64, refundEvidence string) error {
	res := r.db.WithContext(ctx).Model(&appointmentModel{}).
		Where("id = ? AND status = ?", id, string(domain.AppointmentPending)).
		Updates(map[string]any{
			"status":          string(domain.AppointmentRejected),
			"refund_evidence": refundEvidence,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// Cancel flips the cancellation axis and, when an order exists, cancels it
// in the same transaction. The order guard (Pending, not handled) is
// re-applied inside the transaction so a concurrent admin action wins.
func (r *AppointmentRepository) Cancel(ctx context.Context, id int64, hasOrder bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&appointmentModel{}).
			Where("id = ? AND state = ?", id, string(domain.AppointmentActive)).
			Update("state", string(domain.AppointmentCancelled))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}

		if !hasOrder {
			return nil
		}

		res = tx.Model(&orderModel{}).
			Where("appointment_id = ? AND status = ? AND handled = ?",
				id, string(domain.OrderPending), false).
			Updates(map[string]any{
				"status":       string(domain.OrderCancelled),
				"queue_number": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}
		return nil
	})
}

// AttachRefundEvidence stores the refund image on a rejected or cancelled
// appointment after the fact (admin refund flow).
func (r *AppointmentRepository) AttachRefundEvidence(ctx context.Context, id int64, refundEvidence string) error {
	res := r.db.WithContext(ctx).Model(&appointmentModel{}).
		Where("id = ?", id).
		Update("refund_evidence", refundEvidence)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the appointment and cascades to its order and feedback,
// matching the relational cascade the admin delete relies on.
func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o orderModel
		err := tx.Where("appointment_id = ?", id).First(&o).Error
		switch {
		case err == nil:
			if err := tx.Where("order_id = ?", o.ID).Delete(&feedbackModel{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&orderModel{}, o.ID).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		res := tx.Delete(&appointmentModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AutoMigrateAppointments registers the appointments table.
func AutoMigrateAppointments(db *gorm.DB) error {
	return db.AutoMigrate(&appointmentModel{})
}
