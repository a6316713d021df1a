package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotificationData(t *testing.T) {
	orderID := int64(12)
	queue := 4

	n := &Notification{Type: TypeAppointmentBooked}
	err := n.SetData(&NotificationData{OrderID: &orderID, QueueNumber: &queue})
	assert.NoError(t, err)

	got := n.GetData()
	assert.Equal(t, int64(12), *got.OrderID)
	assert.Equal(t, 4, *got.QueueNumber)
	assert.Nil(t, got.AppointmentID)
	assert.Nil(t, got.TotalAmount)
}

func TestGetDataEmpty(t *testing.T) {
	n := &Notification{}
	got := n.GetData()
	assert.NotNil(t, got)
	assert.Nil(t, got.OrderID)
}

func TestScheduleString(t *testing.T) {
	d := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-15 09:30", scheduleString(d, "09:30"))
}
