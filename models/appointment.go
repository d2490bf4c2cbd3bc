package models

import (
	"time"
)

// Appointment statuses
const (
	AppointmentStatusScheduled  = "scheduled"
	AppointmentStatusInProgress = "in_progress"
	AppointmentStatusReady      = "ready"
	AppointmentStatusCompleted  = "completed"
	AppointmentStatusCanceled   = "canceled"
	AppointmentStatusNoShow     = "no_show"
)

type Appointment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
	Customer    Customer  `gorm:"foreignKey:CustomerID" json:"customer"`
	VehicleID   uint      `gorm:"not null;index" json:"vehicle_id"`
	Vehicle     Vehicle   `gorm:"foreignKey:VehicleID" json:"vehicle"`
	Status      string    `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	ScheduledAt time.Time `gorm:"not null;index" json:"scheduled_at"`
	// DurationMin is the sum of the booked service durations at booking time.
	DurationMin int     `gorm:"not null;default:30" json:"duration_min"`
	Address     string  `gorm:"type:varchar(255)" json:"address"`
	City        string  `gorm:"type:varchar(100)" json:"city"`
	Zip         string  `gorm:"type:varchar(10)" json:"zip"`
	Emergency   bool    `gorm:"not null;default:false" json:"emergency"`
	Notes       string  `gorm:"type:text" json:"notes"`
	TotalAmount float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	// ConfirmationCode is handed to the customer on public bookings.
	ConfirmationCode string     `gorm:"type:varchar(36);uniqueIndex" json:"confirmation_code"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null" json:"updated_at"`

	Services []AppointmentService `gorm:"foreignKey:AppointmentID" json:"services"`
	Invoice  *Invoice             `gorm:"foreignKey:AppointmentID" json:"invoice,omitempty"`
}

// IsTerminal reports whether the appointment can no longer change status.
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case AppointmentStatusCompleted, AppointmentStatusCanceled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// EndsAt returns the end of the booked window.
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMin) * time.Minute)
}
