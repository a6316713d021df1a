package order

// UpdateStatusRequest carries the target status plus the fields that
// transition requires: check-in schedule for Ready to Check, amount and
// pickup schedule for Completed, refund evidence for Cancelled.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`

	CheckInDate string `json:"check_in_date,omitempty"` // "2006-01-02"
	CheckInTime string `json:"check_in_time,omitempty"` // "HH:MM" on the grid

	TotalAmount *float64 `json:"total_amount,omitempty"`
	PickupDate  string   `json:"pickup_date,omitempty"`
	PickupTime  string   `json:"pickup_time,omitempty"`

	RefundEvidence string `json:"refund_evidence,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

type UpdateHandledRequest struct {
	Handled bool `json:"handled"`
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	Total        int64 `json:"total"`
	Pending      int64 `json:"pending"`
	ReadyToCheck int64 `json:"ready_to_check"`
	Completed    int64 `json:"completed"`
	Finished     int64 `json:"finished"`
	Cancelled    int64 `json:"cancelled"`
	Handled      int64 `json:"handled"`
}
