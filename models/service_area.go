package models

import "time"

// ServiceArea is a zip code the mobile unit covers.
type ServiceArea struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(100);not null" json:"name"`
	Zip              string    `gorm:"type:varchar(10);unique;not null" json:"zip"`
	EmergencyCovered bool      `gorm:"not null;default:false" json:"emergency_covered"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}
