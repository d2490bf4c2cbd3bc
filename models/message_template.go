package models

import "time"

// MessageTemplate holds reusable customer messages. Body may contain
// {{placeholders}}, see services.RenderTemplate for the supported set.
type MessageTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);unique;not null" json:"name"`
	Channel   string    `gorm:"type:varchar(20);not null;default:'sms'" json:"channel"`
	Subject   string    `gorm:"type:varchar(255)" json:"subject"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
