package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"

	"gorm.io/gorm"
)

var ErrFeedbackExists = errors.New("feedback already exists for order")

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

type feedbackModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	OrderID       int64      `gorm:"column:order_id;uniqueIndex"`
	UserID        int64      `gorm:"column:user_id;index"`
	Rating        int        `gorm:"column:rating"`
	Comment       *string    `gorm:"column:comment"`
	AdminResponse *string    `gorm:"column:admin_response"`
	AdminChecked  bool       `gorm:"column:admin_checked"`
	RespondedAt   *time.Time `gorm:"column:responded_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (feedbackModel) TableName() string { return "feedbacks" }

func toDomainFeedback(m feedbackModel) *domain.Feedback {
	var comment string
	if m.Comment != nil {
		comment = *m.Comment
	}
	return &domain.Feedback{
		ID:            m.ID,
		OrderID:       m.OrderID,
		UserID:        m.UserID,
		Rating:        m.Rating,
		Comment:       comment,
		AdminResponse: m.AdminResponse,
		AdminChecked:  m.AdminChecked,
		RespondedAt:   m.RespondedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Create inserts feedback; the unique index on order_id enforces the
// one-feedback-per-order invariant under concurrency.
func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	var comment *string
	if f.Comment != "" {
		c := f.Comment
		comment = &c
	}

	m := feedbackModel{
		OrderID: f.OrderID,
		UserID:  f.UserID,
		Rating:  f.Rating,
		Comment: comment,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrFeedbackExists
		}
		return err
	}

	*f = *toDomainFeedback(m)
	return nil
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id int64) (*domain.Feedback, error) {
	var m feedbackModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainFeedback(m), nil
}

func (r *FeedbackRepository) ExistsForOrder(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&feedbackModel{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count > 0, err
}

func (r *FeedbackRepository) List(ctx context.Context, limit, offset int) ([]domain.Feedback, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []feedbackModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Feedback, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainFeedback(m))
	}
	return out, nil
}

// PendingOrderFor finds the customer's most recently finished order that has
// no feedback yet; gorm.ErrRecordNotFound when there is none.
func (r *FeedbackRepository) PendingOrderFor(ctx context.Context, userID int64) (*domain.Order, error) {
	var m orderModel
	err := r.db.WithContext(ctx).Model(&orderModel{}).
		Joins("JOIN appointments ON appointments.id = orders.appointment_id").
		Joins("LEFT JOIN feedbacks ON feedbacks.order_id = orders.id").
		Where("appointments.user_id = ?", userID).
		Where("orders.status = ?", string(domain.OrderFinished)).
		Where("feedbacks.id IS NULL").
		Order("orders.completed_at DESC, orders.id DESC").
		Take(&m).Error
	if err != nil {
		return nil, err
	}
	return toDomainOrder(m), nil
}

// SetAdminResponse writes the admin reply once; a second attempt matches no
// row and reports ErrStaleState.
func (r *FeedbackRepository) SetAdminResponse(ctx context.Context, id int64, response string) (*domain.Feedback, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&feedbackModel{}).
		Where("id = ? AND admin_response IS NULL", id).
		Updates(map[string]any{
			"admin_response": response,
			"admin_checked":  true,
			"responded_at":   now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStaleState
	}
	return r.GetByID(ctx, id)
}

// AutoMigrateFeedbacks registers the feedbacks table.
func AutoMigrateFeedbacks(db *gorm.DB) error {
	return db.AutoMigrate(&feedbackModel{})
}
