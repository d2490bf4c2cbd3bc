package models

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null" json:"last_name"`
	// Phone is stored digits-only, see utils.NormalizePhone
	Phone     string         `gorm:"type:varchar(20);not null;index" json:"phone"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Address   string         `gorm:"type:varchar(255)" json:"address"`
	City      string         `gorm:"type:varchar(100)" json:"city"`
	State     string         `gorm:"type:varchar(50)" json:"state"`
	Zip       string         `gorm:"type:varchar(10)" json:"zip"`
	Notes     string         `gorm:"type:text" json:"notes"`
	Vehicles  []Vehicle      `gorm:"foreignKey:CustomerID" json:"vehicles,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
