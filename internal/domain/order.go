package domain

import "time"

// OrderStatus values are stored verbatim; the strings are shared with
// existing data and must stay case-sensitive.
type OrderStatus string

const (
	OrderPending      OrderStatus = "Pending"
	OrderReadyToCheck OrderStatus = "Ready to Check"
	OrderCompleted    OrderStatus = "Completed"
	OrderFinished     OrderStatus = "Finished"
	OrderCancelled    OrderStatus = "Cancelled"
)

// nextStatus is the single legal forward step from each non-terminal status.
var nextStatus = map[OrderStatus]OrderStatus{
	OrderPending:      OrderReadyToCheck,
	OrderReadyToCheck: OrderCompleted,
	OrderCompleted:    OrderFinished,
}

// CanTransition reports whether from→to is a legal move. The lifecycle is a
// DAG: one forward chain plus Cancelled reachable from everything except
// Finished.
func CanTransition(from, to OrderStatus) bool {
	if to == OrderCancelled {
		return from != OrderFinished && from != OrderCancelled
	}
	return nextStatus[from] == to
}

// ValidStatus reports whether s is one of the five known statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderReadyToCheck, OrderCompleted, OrderFinished, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	ID            int64 `json:"id"`
	AppointmentID int64 `json:"appointment_id"`

	// QueueNumber is nil until assigned and unique among non-Cancelled orders.
	QueueNumber *int        `json:"queue_number,omitempty"`
	Status      OrderStatus `json:"status"`

	// Handled is set once by an admin to mark that processing has begun; it is
	// never reset and gates customer cancellation.
	Handled bool `json:"handled"`

	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	TotalAmount *float64   `json:"total_amount,omitempty"`

	CheckInDate *time.Time `json:"check_in_date,omitempty"`
	CheckInTime *string    `json:"check_in_time,omitempty"`
	PickupDate  *time.Time `json:"pickup_date,omitempty"`
	PickupTime  *string    `json:"pickup_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Appointment *Appointment `json:"appointment,omitempty"`
}

// CancellableByCustomer reports whether the customer may still withdraw:
// only while the shop has not started processing.
func (o *Order) CancellableByCustomer() bool {
	return o.Status == OrderPending && !o.Handled
}
