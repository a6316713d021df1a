package notification

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type notificationModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;index:idx_notifications_user"`
	Type      string    `gorm:"column:type"`
	Title     string    `gorm:"column:title"`
	Body      *string   `gorm:"column:body"`
	Data      []byte    `gorm:"column:data"`
	IsRead    bool      `gorm:"column:is_read"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	IsViewed  bool      `gorm:"column:is_viewed"`
	ViewedAt  *time.Time `gorm:"column:viewed_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (notificationModel) TableName() string { return "notifications" }

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func toDomainNotification(m notificationModel) Notification {
	n := Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      Type(m.Type),
		Title:     m.Title,
		Data:      m.Data,
		IsRead:    m.IsRead,
		IsViewed:  m.IsViewed,
		CreatedAt: m.CreatedAt,
	}
	if m.Body != nil {
		n.Body = *m.Body
	}
	if m.ReadAt != nil {
		n.ReadAt.Time, n.ReadAt.Valid = *m.ReadAt, true
	}
	if m.ViewedAt != nil {
		n.ViewedAt.Time, n.ViewedAt.Valid = *m.ViewedAt, true
	}
	return n
}

func (r *NotificationRepository) Create(ctx context.Context, n *Notification) error {
	var body *string
	if n.Body != "" {
		b := n.Body
		body = &b
	}

	m := &notificationModel{
		UserID: n.UserID,
		Type:   string(n.Type),
		Title:  n.Title,
		Body:   body,
		Data:   n.Data,
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	n.ID = m.ID
	n.CreatedAt = m.CreatedAt
	return nil
}

// GetByUserID returns the recipient's notifications, newest first. Ordering
// by created_at is the contract consumers rely on; no reordering after insert.
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	var rows []notificationModel
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Notification, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainNotification(m))
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID int64) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now}).Error
}

func (r *NotificationRepository) MarkAsViewed(ctx context.Context, id, userID int64) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_viewed": true, "viewed_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsViewed(ctx context.Context, userID int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("user_id = ? AND is_viewed = ?", userID, false).
		Updates(map[string]any{"is_viewed": true, "viewed_at": now}).Error
}

func AutoMigrateNotifications(db *gorm.DB) error {
	return db.AutoMigrate(&notificationModel{})
}
