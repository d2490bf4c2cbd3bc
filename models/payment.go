package models

import "time"

// Payment is one amount received against an invoice. The crew takes cash,
// card or check in the field; nothing here talks to a gateway.
type Payment struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	InvoiceID  uint     `gorm:"not null;index" json:"invoice_id"`
	Invoice    *Invoice `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Amount     float64  `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method     string   `gorm:"type:varchar(20);not null;default:'cash'" json:"method"`
	Reference  string   `gorm:"type:varchar(100)" json:"reference"`
	ReceivedBy *uint    `json:"received_by,omitempty"`
	Receiver   *User    `gorm:"foreignKey:ReceivedBy" json:"receiver,omitempty"`
	PaidAt     time.Time `gorm:"not null" json:"paid_at"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
