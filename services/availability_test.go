package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wrenchworks/garage-app/models"
)

func TestAvailableSlotsEmptyDay(t *testing.T) {
	db := newServiceTestDB(t, "availability_empty_test")

	day := time.Date(2026, 9, 2, 0, 0, 0, 0, time.Local)
	slots, err := AvailableSlots(db, day, 30)
	assert.NoError(t, err)

	// Default hours 8:00-18:00, 30 minute grid, last start 17:30.
	assert.Len(t, slots, 20)
	assert.Equal(t, 8, slots[0].Hour())
	last := slots[len(slots)-1]
	assert.Equal(t, 17, last.Hour())
	assert.Equal(t, 30, last.Minute())
}

func TestAvailableSlotsSkipBookedWindow(t *testing.T) {
	db := newServiceTestDB(t, "availability_booked_test")

	customer := models.Customer{FirstName: "E", LastName: "F", Phone: "5550000003"}
	db.Create(&customer)
	vehicle := models.Vehicle{CustomerID: customer.ID, Make: "Mini", Model: "Cooper", Year: 2019}
	db.Create(&vehicle)

	day := time.Date(2026, 9, 3, 0, 0, 0, 0, time.Local)
	booked := time.Date(2026, 9, 3, 11, 0, 0, 0, time.Local)
	db.Create(&models.Appointment{
		CustomerID:       customer.ID,
		VehicleID:        vehicle.ID,
		Status:           models.AppointmentStatusScheduled,
		ScheduledAt:      booked,
		DurationMin:      90,
		ConfirmationCode: "availability-booked",
	})

	slots, err := AvailableSlots(db, day, 60)
	assert.NoError(t, err)
	assert.NotEmpty(t, slots)

	for _, s := range slots {
		end := s.Add(60 * time.Minute)
		overlaps := end.After(booked) && s.Before(booked.Add(90*time.Minute))
		assert.False(t, overlaps, "slot %s overlaps the 11:00-12:30 booking", s)
	}

	// 10:30 would run into the booking, 9:30 would not.
	assert.NotContains(t, slots, time.Date(2026, 9, 3, 10, 30, 0, 0, time.Local))
	assert.Contains(t, slots, time.Date(2026, 9, 3, 9, 30, 0, 0, time.Local))
}

func TestAvailableSlotsJobMustFinishByClose(t *testing.T) {
	db := newServiceTestDB(t, "availability_close_test")

	day := time.Date(2026, 9, 4, 0, 0, 0, 0, time.Local)
	slots, err := AvailableSlots(db, day, 120)
	assert.NoError(t, err)
	assert.NotEmpty(t, slots)

	// A two hour job may not start after 16:00.
	last := slots[len(slots)-1]
	assert.Equal(t, 16, last.Hour())
	assert.Equal(t, 0, last.Minute())
}
