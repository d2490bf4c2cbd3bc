package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/wrenchworks/garage-app/models"
	"gorm.io/gorm"
)

// MinAppointmentMinutes is the floor for a booked window even when the
// selected services add up to less.
const MinAppointmentMinutes = 30

// allowedTransitions is the only path through the appointment lifecycle.
// completed, canceled and no_show are terminal.
var allowedTransitions = map[string][]string{
	models.AppointmentStatusScheduled: {
		models.AppointmentStatusInProgress,
		models.AppointmentStatusCanceled,
		models.AppointmentStatusNoShow,
	},
	models.AppointmentStatusInProgress: {
		models.AppointmentStatusReady,
		models.AppointmentStatusCompleted,
		models.AppointmentStatusCanceled,
	},
	models.AppointmentStatusReady: {
		models.AppointmentStatusCompleted,
	},
}

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSlotConflict      = errors.New("requested time overlaps another appointment")
)

// CanTransition reports whether an appointment may move from -> to.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses an appointment may move to.
func NextStatuses(from string) []string {
	return allowedTransitions[from]
}

// TransitionAppointment applies a guarded status change and stamps the
// work timestamps.
func TransitionAppointment(db *gorm.DB, appointment *models.Appointment, newStatus string) error {
	if !CanTransition(appointment.Status, newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appointment.Status, newStatus)
	}

	now := time.Now()
	appointment.Status = newStatus

	switch newStatus {
	case models.AppointmentStatusInProgress:
		appointment.StartedAt = &now
	case models.AppointmentStatusCompleted:
		if appointment.FinishedAt == nil {
			appointment.FinishedAt = &now
		}
	}

	return db.Save(appointment).Error
}

// FindConflict returns the first non-terminal appointment overlapping
// [start, start+duration). The shop runs a single mobile unit, so the whole
// calendar is one resource. excludeID skips the appointment being
// rescheduled.
func FindConflict(db *gorm.DB, start time.Time, durationMin int, excludeID uint) (*models.Appointment, error) {
	end := start.Add(time.Duration(durationMin) * time.Minute)

	var existing []models.Appointment
	err := db.Where("status IN ?", []string{
		models.AppointmentStatusScheduled,
		models.AppointmentStatusInProgress,
		models.AppointmentStatusReady,
	}).
		Where("scheduled_at < ?", end).
		Find(&existing).Error
	if err != nil {
		return nil, err
	}

	for i := range existing {
		a := &existing[i]
		if a.ID == excludeID {
			continue
		}
		if a.EndsAt().After(start) && a.ScheduledAt.Before(end) {
			return a, nil
		}
	}
	return nil, nil
}

// BuildAppointmentServices snapshots catalog services onto an appointment
// and returns the snapshot rows plus derived duration and total.
func BuildAppointmentServices(db *gorm.DB, serviceIDs []uint) ([]models.AppointmentService, int, float64, error) {
	if len(serviceIDs) == 0 {
		return nil, 0, 0, errors.New("at least one service is required")
	}

	var catalog []models.Service
	if err := db.Where("id IN ? AND active = ?", serviceIDs, true).Find(&catalog).Error; err != nil {
		return nil, 0, 0, err
	}
	if len(catalog) != len(serviceIDs) {
		return nil, 0, 0, errors.New("one or more services not found or inactive")
	}

	byID := make(map[uint]models.Service, len(catalog))
	for _, svc := range catalog {
		byID[svc.ID] = svc
	}

	var rows []models.AppointmentService
	var duration int
	var total float64
	for _, id := range serviceIDs {
		svc := byID[id]
		rows = append(rows, models.AppointmentService{
			ServiceID:   svc.ID,
			Name:        svc.Name,
			Price:       svc.Price,
			DurationMin: svc.DurationMin,
		})
		duration += svc.DurationMin
		total += svc.Price
	}

	if duration < MinAppointmentMinutes {
		duration = MinAppointmentMinutes
	}

	return rows, duration, total, nil
}
