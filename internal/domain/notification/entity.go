package notification

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Type is the closed set of notification kinds. Each type carries a fixed
// payload shape in Data (see NotificationData).
type Type string

const (
	// Appointment lifecycle
	TypeAppointmentBooked   Type = "appointment_booked"   // admin: new request; customer: request accepted and booked
	TypeAppointmentAccepted Type = "appointment_accepted" // admin channel: decision record
	TypeAppointmentRejected Type = "appointment_rejected" // customer: request rejected, refund evidence attached

	// Order lifecycle
	TypeReadyToCheck        Type = "ready_to_check"        // customer: check-in schedule set
	TypeOrderCompleted      Type = "order_completed"       // customer: amount + pickup schedule
	TypeOrderFinished       Type = "order_finished"        // customer: order done, feedback unlocked
	TypeOrderDetailsUpdated Type = "order_details_updated" // customer: schedule edited
	TypeOrderCancelled      Type = "order_cancelled"       // counterparty of whoever cancelled
	TypeRefundProcessed     Type = "refund_processed"      // customer: refund evidence attached

	// Feedback
	TypeFeedbackResponded Type = "feedback_responded" // customer: admin replied to feedback
)

// Notification is an immutable event record; only the read/viewed markers
// are mutated after insert.
type Notification struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Type      Type            `json:"type"`
	Title     string          `json:"title"`
	Body      string          `json:"body,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	ReadAt    sql.NullTime    `json:"read_at,omitzero"`
	IsViewed  bool            `json:"is_viewed"`
	ViewedAt  sql.NullTime    `json:"viewed_at,omitzero"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotificationData is the structured payload. Which fields are set depends
// on the Type: ready_to_check carries the check-in schedule, order_completed
// carries total_amount plus the pickup schedule, and so on.
type NotificationData struct {
	AppointmentID *int64   `json:"appointment_id,omitempty"`
	OrderID       *int64   `json:"order_id,omitempty"`
	FeedbackID    *int64   `json:"feedback_id,omitempty"`
	QueueNumber   *int     `json:"queue_number,omitempty"`
	TotalAmount   *float64 `json:"total_amount,omitempty"`
	ScheduledAt   *string  `json:"scheduled_at,omitempty"` // "2006-01-02 15:04"
	Reason        *string  `json:"reason,omitempty"`
	Rating        *int     `json:"rating,omitempty"`
}

func (n *Notification) SetData(data *NotificationData) error {
	if data == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	n.Data = b
	return nil
}

func (n *Notification) GetData() *NotificationData {
	if len(n.Data) == 0 {
		return &NotificationData{}
	}
	var data NotificationData
	_ = json.Unmarshal(n.Data, &data)
	return &data
}
