package services

import (
	"time"

	"github.com/wrenchworks/garage-app/config"
	"github.com/wrenchworks/garage-app/models"
	"gorm.io/gorm"
)

// SlotStepMinutes is the granularity of offered start times.
const SlotStepMinutes = 30

// AvailableSlots returns the open start times on a given day for a job of
// durationMin minutes. Slots start on the half hour inside business hours
// and the job must also finish by closing time.
func AvailableSlots(db *gorm.DB, day time.Time, durationMin int) ([]time.Time, error) {
	if durationMin < MinAppointmentMinutes {
		durationMin = MinAppointmentMinutes
	}

	openHour, closeHour := config.BusinessHours()
	loc := day.Location()
	open := time.Date(day.Year(), day.Month(), day.Day(), openHour, 0, 0, 0, loc)
	close := time.Date(day.Year(), day.Month(), day.Day(), closeHour, 0, 0, 0, loc)

	// One query for the whole day instead of one per slot.
	var booked []models.Appointment
	err := db.Where("status IN ?", []string{
		models.AppointmentStatusScheduled,
		models.AppointmentStatusInProgress,
		models.AppointmentStatusReady,
	}).
		Where("scheduled_at < ? AND scheduled_at >= ?", close, open.Add(-24*time.Hour)).
		Find(&booked).Error
	if err != nil {
		return nil, err
	}

	slots := make([]time.Time, 0)
	for start := open; !start.Add(time.Duration(durationMin)*time.Minute).After(close); start = start.Add(SlotStepMinutes * time.Minute) {
		end := start.Add(time.Duration(durationMin) * time.Minute)

		conflict := false
		for i := range booked {
			a := &booked[i]
			if a.EndsAt().After(start) && a.ScheduledAt.Before(end) {
				conflict = true
				break
			}
		}
		if !conflict {
			slots = append(slots, start)
		}
	}

	return slots, nil
}
