package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentEditable(t *testing.T) {
	assert.True(t, (&Appointment{Status: AppointmentPending, State: AppointmentActive}).Editable())
	assert.True(t, (&Appointment{Status: AppointmentAccepted, State: AppointmentActive}).Editable())
	assert.False(t, (&Appointment{Status: AppointmentRejected, State: AppointmentActive}).Editable())
	assert.False(t, (&Appointment{Status: AppointmentPending, State: AppointmentCancelled}).Editable())
	assert.False(t, (&Appointment{Status: AppointmentAccepted, State: AppointmentCancelled}).Editable())
}

func TestSizeBreakdownTotal(t *testing.T) {
	assert.Equal(t, 0, SizeBreakdown{}.Total())
	assert.Equal(t, 7, SizeBreakdown{"S": 2, "M": 4, "XL": 1}.Total())
}
