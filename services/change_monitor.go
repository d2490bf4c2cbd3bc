package services

import (
	"log"
	"time"

	"github.com/wrenchworks/garage-app/dispatch"
	"github.com/wrenchworks/garage-app/models"
	"gorm.io/gorm"
)

// ChangeMonitor drains the trigger-fed db_changes table and pushes the
// affected records to the dashboard websocket clients.
type ChangeMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		log.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "appointments":
			cm.processAppointmentChange(change)
		case "invoices":
			cm.processInvoiceChange(change)
		case "payments":
			cm.processPaymentChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			log.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	tx.Commit()
}

func (cm *ChangeMonitor) processAppointmentChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		dispatch.BroadcastMessage(dispatch.Message{
			Event: dispatch.EventScheduleUpdate,
			Data:  map[string]interface{}{"appointment_id": change.RecordID, "deleted": true},
		})
		return
	}

	var appointment models.Appointment
	if err := cm.DB.Preload("Customer").Preload("Vehicle").Preload("Services").
		First(&appointment, change.RecordID).Error; err != nil {
		return
	}
	dispatch.BroadcastAppointmentUpdate(appointment)
}

func (cm *ChangeMonitor) processInvoiceChange(change models.DBChange) {
	var invoice models.Invoice
	if err := cm.DB.Preload("Items").First(&invoice, change.RecordID).Error; err != nil {
		return
	}
	dispatch.BroadcastInvoiceUpdate(invoice)
}

func (cm *ChangeMonitor) processPaymentChange(change models.DBChange) {
	var payment models.Payment
	if err := cm.DB.First(&payment, change.RecordID).Error; err != nil {
		return
	}
	var invoice models.Invoice
	if err := cm.DB.First(&invoice, payment.InvoiceID).Error; err != nil {
		return
	}
	dispatch.BroadcastPaymentUpdate(payment, invoice)
}
