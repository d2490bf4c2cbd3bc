package models

import "time"

// Notification kinds
const (
	NotificationKindReminder = "reminder"
	NotificationKindManual   = "manual"
	NotificationKindStatus   = "status"
)

// Notification statuses
const (
	NotificationStatusQueued = "queued"
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// NotificationLog tracks every message rendered for a customer.
type NotificationLog struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	CustomerID    uint             `gorm:"not null;index" json:"customer_id"`
	Customer      Customer         `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"customer"`
	AppointmentID *uint            `gorm:"index" json:"appointment_id,omitempty"`
	Appointment   *Appointment     `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	TemplateID    *uint            `json:"template_id,omitempty"`
	Template      *MessageTemplate `gorm:"foreignKey:TemplateID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"template,omitempty"`
	Channel       string           `gorm:"type:varchar(20);not null" json:"channel"`
	Kind          string           `gorm:"type:varchar(20);not null" json:"kind"`
	RenderedBody  string           `gorm:"type:text;not null" json:"rendered_body"`
	Status        string           `gorm:"type:varchar(20);not null;default:'queued'" json:"status"`
	Error         string           `gorm:"type:text" json:"error,omitempty"`
	SentAt        *time.Time       `json:"sent_at,omitempty"`
	CreatedAt     time.Time        `gorm:"not null" json:"created_at"`
}
