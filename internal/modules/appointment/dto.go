package appointment

type CreateAppointmentRequest struct {
	ServiceTypeID     int64          `json:"service_type_id" binding:"required"`
	Sizes             map[string]int `json:"sizes" binding:"required"`
	DueDate           string         `json:"due_date" binding:"required"`         // "2006-01-02"
	AppointmentDate   string         `json:"appointment_date" binding:"required"` // "2006-01-02"
	AppointmentTime   string         `json:"appointment_time" binding:"required"` // "HH:MM" on the grid
	DesignImage       string         `json:"design_image,omitempty"`
	PaymentProofImage string         `json:"payment_proof_image" binding:"required"`
}

type RescheduleRequest struct {
	AppointmentDate string `json:"appointment_date" binding:"required"`
	AppointmentTime string `json:"appointment_time" binding:"required"`
	DueDate         string `json:"due_date" binding:"required"`
}

type RejectRequest struct {
	RefundEvidence string `json:"refund_evidence" binding:"required"`
	Reason         string `json:"reason,omitempty"`
}

type RefundRequest struct {
	RefundEvidence string `json:"refund_evidence" binding:"required"`
}
