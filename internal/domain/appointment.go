package domain

import "time"

// ApprovalStatus is the admin decision axis of an appointment.
type ApprovalStatus string

const (
	AppointmentPending  ApprovalStatus = "pending"
	AppointmentAccepted ApprovalStatus = "accepted"
	AppointmentRejected ApprovalStatus = "rejected"
)

// AppointmentState is the customer cancellation axis, independent of the
// approval status: a rejected appointment can stay active, an accepted one
// can be cancelled.
type AppointmentState string

const (
	AppointmentActive    AppointmentState = "active"
	AppointmentCancelled AppointmentState = "cancelled"
)

// SizeBreakdown maps a size label to a positive quantity. The sum of its
// values must equal the appointment's TotalQuantity.
type SizeBreakdown map[string]int

func (s SizeBreakdown) Total() int {
	total := 0
	for _, q := range s {
		total += q
	}
	return total
}

type Appointment struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	ServiceTypeID int64         `json:"service_type_id"`
	Sizes         SizeBreakdown `json:"sizes"`
	TotalQuantity int           `json:"total_quantity"`
	DueDate       time.Time     `json:"due_date"`

	// AppointmentDate is a calendar day (midnight UTC); AppointmentTime is an
	// "HH:MM" value on the fixed 30-minute grid. Display formatting belongs to
	// the boundary layer.
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`

	Status ApprovalStatus   `json:"status"`
	State  AppointmentState `json:"state"`

	DesignImage       string  `json:"design_image,omitempty"`
	PaymentProofImage string  `json:"payment_proof_image"`
	RefundEvidence    *string `json:"refund_evidence,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty"`
}

// Editable reports whether the customer may still change the schedule.
func (a *Appointment) Editable() bool {
	return a.State == AppointmentActive &&
		(a.Status == AppointmentPending || a.Status == AppointmentAccepted)
}
