package models

import (
	"time"

	"gorm.io/gorm"
)

type Vehicle struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`
	Customer   *Customer      `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Make       string         `gorm:"type:varchar(100);not null" json:"make"`
	Model      string         `gorm:"type:varchar(100);not null" json:"model"`
	Year       int            `gorm:"not null" json:"year"`
	Plate      string         `gorm:"type:varchar(20)" json:"plate"`
	VIN        string         `gorm:"type:varchar(17)" json:"vin"`
	Mileage    int            `json:"mileage"`
	Notes      string         `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
