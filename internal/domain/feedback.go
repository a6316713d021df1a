package domain

import "time"

type Feedback struct {
	ID            int64      `json:"id"`
	OrderID       int64      `json:"order_id"`
	UserID        int64      `json:"user_id"`
	Rating        int        `json:"rating" validate:"required,gte=1,lte=5"`
	Comment       string     `json:"comment,omitempty"`
	AdminResponse *string    `json:"admin_response,omitempty"`
	AdminChecked  bool       `json:"admin_checked"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
