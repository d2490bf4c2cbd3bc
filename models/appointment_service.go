package models

import (
	"time"
)

// AppointmentService snapshots one booked catalog service. Name, price and
// duration are copied at booking time so later catalog edits do not change
// what the customer agreed to.
type AppointmentService struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	AppointmentID uint         `gorm:"not null;index" json:"appointment_id"`
	Appointment   *Appointment `gorm:"foreignKey:AppointmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ServiceID     uint         `gorm:"not null" json:"service_id"`
	Service       Service      `gorm:"foreignKey:ServiceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"service"`
	Name          string       `gorm:"type:varchar(255);not null" json:"name"`
	Price         float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationMin   int          `gorm:"not null" json:"duration_min"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}
