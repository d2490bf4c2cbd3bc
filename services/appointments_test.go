package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/models"
)

func newServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Vehicle{},
		&models.Service{},
		&models.ServiceCategory{},
		&models.Appointment{},
		&models.AppointmentService{},
	); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.AppointmentStatusScheduled, models.AppointmentStatusInProgress))
	assert.True(t, CanTransition(models.AppointmentStatusScheduled, models.AppointmentStatusCanceled))
	assert.True(t, CanTransition(models.AppointmentStatusScheduled, models.AppointmentStatusNoShow))
	assert.True(t, CanTransition(models.AppointmentStatusInProgress, models.AppointmentStatusReady))
	assert.True(t, CanTransition(models.AppointmentStatusInProgress, models.AppointmentStatusCompleted))
	assert.True(t, CanTransition(models.AppointmentStatusReady, models.AppointmentStatusCompleted))

	assert.False(t, CanTransition(models.AppointmentStatusScheduled, models.AppointmentStatusCompleted))
	assert.False(t, CanTransition(models.AppointmentStatusReady, models.AppointmentStatusScheduled))
	assert.False(t, CanTransition(models.AppointmentStatusCompleted, models.AppointmentStatusInProgress))
	assert.False(t, CanTransition(models.AppointmentStatusCanceled, models.AppointmentStatusScheduled))
	assert.False(t, CanTransition(models.AppointmentStatusNoShow, models.AppointmentStatusScheduled))
}

func TestTransitionStampsTimestamps(t *testing.T) {
	db := newServiceTestDB(t, "transition_test")

	customer := models.Customer{FirstName: "A", LastName: "B", Phone: "5550000001"}
	db.Create(&customer)
	vehicle := models.Vehicle{CustomerID: customer.ID, Make: "VW", Model: "Golf", Year: 2015}
	db.Create(&vehicle)
	appointment := models.Appointment{
		CustomerID:       customer.ID,
		VehicleID:        vehicle.ID,
		Status:           models.AppointmentStatusScheduled,
		ScheduledAt:      time.Now().Add(time.Hour),
		DurationMin:      30,
		ConfirmationCode: "stamp-test",
	}
	db.Create(&appointment)

	err := TransitionAppointment(db, &appointment, models.AppointmentStatusInProgress)
	assert.NoError(t, err)
	assert.NotNil(t, appointment.StartedAt)
	assert.Nil(t, appointment.FinishedAt)

	err = TransitionAppointment(db, &appointment, models.AppointmentStatusCompleted)
	assert.NoError(t, err)
	assert.NotNil(t, appointment.FinishedAt)

	err = TransitionAppointment(db, &appointment, models.AppointmentStatusInProgress)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFindConflict(t *testing.T) {
	db := newServiceTestDB(t, "conflict_test")

	customer := models.Customer{FirstName: "C", LastName: "D", Phone: "5550000002"}
	db.Create(&customer)
	vehicle := models.Vehicle{CustomerID: customer.ID, Make: "Fiat", Model: "500", Year: 2014}
	db.Create(&vehicle)

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	existing := models.Appointment{
		CustomerID:       customer.ID,
		VehicleID:        vehicle.ID,
		Status:           models.AppointmentStatusScheduled,
		ScheduledAt:      base,
		DurationMin:      60,
		ConfirmationCode: "conflict-existing",
	}
	db.Create(&existing)

	// Overlapping from the middle.
	conflict, err := FindConflict(db, base.Add(30*time.Minute), 30, 0)
	assert.NoError(t, err)
	assert.NotNil(t, conflict)
	assert.Equal(t, existing.ID, conflict.ID)

	// Touching windows do not overlap.
	conflict, err = FindConflict(db, base.Add(60*time.Minute), 30, 0)
	assert.NoError(t, err)
	assert.Nil(t, conflict)

	conflict, err = FindConflict(db, base.Add(-30*time.Minute), 30, 0)
	assert.NoError(t, err)
	assert.Nil(t, conflict)

	// The appointment being rescheduled never conflicts with itself.
	conflict, err = FindConflict(db, base, 60, existing.ID)
	assert.NoError(t, err)
	assert.Nil(t, conflict)

	// Terminal appointments do not block the slot.
	db.Model(&existing).Update("status", models.AppointmentStatusCanceled)
	conflict, err = FindConflict(db, base, 60, 0)
	assert.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestBuildAppointmentServices(t *testing.T) {
	db := newServiceTestDB(t, "build_services_test")

	category := models.ServiceCategory{Name: "Engine"}
	db.Create(&category)
	quick := models.Service{CategoryID: category.ID, Name: "Fluid Top-off", Price: 19.99, DurationMin: 10, Active: true}
	db.Create(&quick)
	major := models.Service{CategoryID: category.ID, Name: "Timing Belt", Price: 499.00, DurationMin: 180, Active: true}
	db.Create(&major)
	retired := models.Service{CategoryID: category.ID, Name: "Carb Rebuild", Price: 300.00, DurationMin: 120, Active: false}
	db.Create(&retired)

	// A tiny job is padded up to the minimum window.
	rows, duration, total, err := BuildAppointmentServices(db, []uint{quick.ID})
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, MinAppointmentMinutes, duration)
	assert.InDelta(t, 19.99, total, 0.001)

	rows, duration, total, err = BuildAppointmentServices(db, []uint{quick.ID, major.ID})
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 190, duration)
	assert.InDelta(t, 518.99, total, 0.001)

	// Inactive services cannot be booked.
	_, _, _, err = BuildAppointmentServices(db, []uint{retired.ID})
	assert.Error(t, err)

	_, _, _, err = BuildAppointmentServices(db, nil)
	assert.Error(t, err)
}
