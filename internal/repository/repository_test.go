package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: ":memory:"}),
		&gorm.Config{},
	)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// A second pool connection would see its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	for _, migrate := range []func(*gorm.DB) error{
		AutoMigrateAppointments,
		AutoMigrateOrders,
		AutoMigrateFeedbacks,
	} {
		if err := migrate(db); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}

func testDay() time.Time {
	return domain.DateOnly(time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC))
}

func seedAppointment(t *testing.T, db *gorm.DB, date time.Time, hm string) *domain.Appointment {
	t.Helper()

	a := &domain.Appointment{
		UserID:            7,
		ServiceTypeID:     1,
		TotalQuantity:     2,
		DueDate:           date.AddDate(0, 0, 7),
		AppointmentDate:   date,
		AppointmentTime:   hm,
		Status:            domain.AppointmentPending,
		State:             domain.AppointmentActive,
		PaymentProofImage: "proof.png",
	}
	if err := NewAppointmentRepository(db).Create(context.Background(), a); err != nil {
		t.Fatalf("seed appointment at %s: %v", hm, err)
	}
	return a
}
