package domain

import "time"

// ServiceType is reference data: the booking flow reads the downpayment a
// payment proof must cover, nothing in the core mutates it.
type ServiceType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Downpayment float64   `json:"downpayment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
