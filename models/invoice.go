package models

import "time"

// Invoice statuses
const (
	InvoiceStatusUnpaid        = "unpaid"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusPaid          = "paid"
	InvoiceStatusVoid          = "void"
)

type Invoice struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	InvoiceNumber string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	AppointmentID uint        `gorm:"not null;uniqueIndex" json:"appointment_id"`
	Appointment   Appointment `gorm:"foreignKey:AppointmentID" json:"appointment"`
	CustomerID    uint        `gorm:"not null;index" json:"customer_id"`
	Customer      Customer    `gorm:"foreignKey:CustomerID" json:"customer"`

	Subtotal float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxRate  float64 `gorm:"type:decimal(6,4);not null;default:0" json:"tax_rate"`
	Tax      float64 `gorm:"type:decimal(12,2);not null" json:"tax"`
	Total    float64 `gorm:"type:decimal(12,2);not null" json:"total"`

	AmountPaid float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"amount_paid"`
	Status     string  `gorm:"type:varchar(20);not null;default:'unpaid'" json:"status"`

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments"`

	IssuedAt  time.Time `gorm:"not null" json:"issued_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Balance returns what is still owed on the invoice.
func (i *Invoice) Balance() float64 {
	return i.Total - i.AmountPaid
}

type InvoiceItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	InvoiceID uint     `gorm:"not null;index" json:"invoice_id"`
	Invoice   *Invoice `gorm:"-" json:"-"`

	ServiceID uint    `gorm:"not null" json:"service_id"`
	Name      string  `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int     `gorm:"not null;default:1" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal float64 `gorm:"type:decimal(12,2);not null" json:"line_total"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
