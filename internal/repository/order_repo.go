package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type orderModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	AppointmentID int64      `gorm:"column:appointment_id;uniqueIndex"`
	QueueNumber   *int       `gorm:"column:queue_number;uniqueIndex"`
	Status        string     `gorm:"column:status"`
	Handled       bool       `gorm:"column:handled"`
	ScheduledAt   *time.Time `gorm:"column:scheduled_at"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	TotalAmount   *float64   `gorm:"column:total_amount"`
	CheckInDate   *time.Time `gorm:"column:check_in_date"`
	CheckInTime   *string    `gorm:"column:check_in_time"`
	PickupDate    *time.Time `gorm:"column:pickup_date"`
	PickupTime    *string    `gorm:"column:pickup_time"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (orderModel) TableName() string { return "orders" }

func toDomainOrder(m orderModel) *domain.Order {
	return &domain.Order{
		ID:            m.ID,
		AppointmentID: m.AppointmentID,
		QueueNumber:   m.QueueNumber,
		Status:        domain.OrderStatus(m.Status),
		Handled:       m.Handled,
		ScheduledAt:   m.ScheduledAt,
		CompletedAt:   m.CompletedAt,
		TotalAmount:   m.TotalAmount,
		CheckInDate:   m.CheckInDate,
		CheckInTime:   m.CheckInTime,
		PickupDate:    m.PickupDate,
		PickupTime:    m.PickupTime,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// nextQueueNumber computes max(queue_number)+1 among non-Cancelled orders.
// On postgres the top row is selected FOR UPDATE so two concurrent creations
// usually serialize; when both still compute the same number (empty queue),
// the unique index on queue_number fails the second insert. Cancelled orders
// release their number (it is nulled on cancellation), which keeps the
// uniqueness invariant scoped to active orders.
func nextQueueNumber(tx *gorm.DB) (int, error) {
	var top orderModel
	err := lockForUpdate(tx.Model(&orderModel{})).
		Where("status <> ? AND queue_number IS NOT NULL", string(domain.OrderCancelled)).
		Order("queue_number DESC").
		Limit(1).
		Take(&top).Error
	switch {
	case err == nil:
		return *top.QueueNumber + 1, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 1, nil
	default:
		return 0, err
	}
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var m orderModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainOrder(m), nil
}

func (r *OrderRepository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.Order, error) {
	var m orderModel
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return toDomainOrder(m), nil
}

// ListByUser returns the customer's orders through the appointment ownership
// link, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var rows []orderModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN appointments ON appointments.id = orders.appointment_id").
		Where("appointments.user_id = ?", userID).
		Order("orders.created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainOrder(m))
	}
	return out, nil
}

// Transition applies one guarded status move. The WHERE clause pins the
// expected source status so a concurrent writer cannot be silently
// overwritten; fields carries the transition's side writes (check-in
// schedule, amount, completed_at, queue_number reset).
func (r *OrderRepository) Transition(ctx context.Context, id int64, from, to domain.OrderStatus, fields map[string]any) error {
	updates := map[string]any{"status": string(to)}
	for k, v := range fields {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).Model(&orderModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// CancelWithRefund moves the order to Cancelled, releases its queue number
// and stores the refund evidence on the owning appointment in one
// transaction, so a failed evidence write rolls the transition back.
func (r *OrderRepository) CancelWithRefund(ctx context.Context, id int64, from domain.OrderStatus, appointmentID int64, refundEvidence string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderModel{}).
			Where("id = ? AND status = ?", id, string(from)).
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

		res = tx.Model(&appointmentModel{}).
			Where("id = ?", appointmentID).
			Update("refund_evidence", refundEvidence)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// SetHandled marks processing as begun. Monotonic: there is no way back.
func (r *OrderRepository) SetHandled(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&orderModel{}).
		Where("id = ?", id).
		Update("handled", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RenumberActive compacts queue numbers to 1..n over non-Cancelled orders in
// creation order. The whole active set is locked for the duration so an
// order created concurrently is neither skipped nor double-numbered.
// Idempotent: re-running on a compact queue changes nothing. Updating in
// creation order only ever decreases a number, so the unique index is never
// transiently violated.
func (r *OrderRepository) RenumberActive(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []orderModel
		if err := lockForUpdate(tx).
			Where("status <> ?", string(domain.OrderCancelled)).
			Order("id ASC").
			Find(&rows).Error; err != nil {
			return err
		}

		for i, m := range rows {
			want := i + 1
			if m.QueueNumber != nil && *m.QueueNumber == want {
				continue
			}
			if err := tx.Model(&orderModel{}).
				Where("id = ?", m.ID).
				Update("queue_number", want).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TodayQueue returns today's active orders in queue order. An order belongs
// to today when its check-in or its appointment falls on that day.
func (r *OrderRepository) TodayQueue(ctx context.Context, today time.Time) ([]domain.Order, error) {
	day := domain.DateOnly(today)
	var rows []orderModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN appointments ON appointments.id = orders.appointment_id").
		Where("orders.status <> ?", string(domain.OrderCancelled)).
		Where("orders.check_in_date = ? OR appointments.appointment_date = ?", day, day).
		Order("orders.queue_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainOrder(m))
	}
	return out, nil
}

// CountByStatus aggregates orders per status plus the handled count.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, int64, error) {
	type row struct {
		Status string `gorm:"column:status"`
		N      int64  `gorm:"column:n"`
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&orderModel{}).
		Select("status, COUNT(1) AS n").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	counts := make(map[domain.OrderStatus]int64, len(rows))
	for _, rw := range rows {
		counts[domain.OrderStatus(rw.Status)] = rw.N
	}

	var handled int64
	if err := r.db.WithContext(ctx).Model(&orderModel{}).
		Where("handled = ?", true).
		Count(&handled).Error; err != nil {
		return nil, 0, err
	}
	return counts, handled, nil
}

// BookedPair is one reserved (date, time) pair for calendar read models.
type BookedPair struct {
	Date time.Time `json:"date"`
	Time string    `json:"time"`
}

// BookedTimes lists every (date, time) pair currently held, from live
// appointments and active order check-ins.
func (r *OrderRepository) BookedTimes(ctx context.Context) ([]BookedPair, error) {
	var pairs []BookedPair

	if err := r.db.WithContext(ctx).Model(&appointmentModel{}).
		Select("appointment_date AS date, appointment_time AS time").
		Where("state <> ? AND status <> ?", string(domain.AppointmentCancelled), string(domain.AppointmentRejected)).
		Order("appointment_date ASC, appointment_time ASC").
		Find(&pairs).Error; err != nil {
		return nil, err
	}

	var checkIns []BookedPair
	if err := r.db.WithContext(ctx).Model(&orderModel{}).
		Select("check_in_date AS date, check_in_time AS time").
		Where("check_in_date IS NOT NULL AND status <> ?", string(domain.OrderCancelled)).
		Order("check_in_date ASC, check_in_time ASC").
		Find(&checkIns).Error; err != nil {
		return nil, err
	}

	return append(pairs, checkIns...), nil
}

// AutoMigrateOrders registers the orders table.
func AutoMigrateOrders(db *gorm.DB) error {
	return db.AutoMigrate(&orderModel{})
}
