package models

import (
	"time"
)

// DBChange is a change-feed row written by SQL triggers and drained by the
// change monitor for dashboard broadcasts.
type DBChange struct {
	ID         uint      `gorm:"primaryKey"`
	TableName  string    `gorm:"type:varchar(50);not null;index:idx_table_action"`
	RecordID   int64     `gorm:"not null"`
	ActionType string    `gorm:"type:varchar(10);not null;index:idx_table_action"`
	ChangedAt  time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;not null"`
	Processed  bool      `gorm:"default:false;index:idx_processed"`
}
