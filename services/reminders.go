package services

import (
	"time"

	"github.com/wrenchworks/garage-app/dispatch"
	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/utils"
	"gorm.io/gorm"
)

// ReminderTemplateName is the template the ticker renders. Seeded or
// created by the admin; reminders are skipped while it is missing or
// inactive.
const ReminderTemplateName = "appointment_reminder"

// ReminderService renders next-day appointment reminders into the
// notification log on a fixed interval.
type ReminderService struct {
	DB       *gorm.DB
	Interval time.Duration
	Window   time.Duration
	StopChan chan struct{}
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{
		DB:       db,
		Interval: 15 * time.Minute,
		Window:   24 * time.Hour,
		StopChan: make(chan struct{}),
	}
}

func (rs *ReminderService) Start() {
	go func() {
		ticker := time.NewTicker(rs.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rs.runOnce()
				utils.CleanupBlacklist()
			case <-rs.StopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Println("Reminder service started")
}

func (rs *ReminderService) Stop() {
	close(rs.StopChan)
}

func (rs *ReminderService) runOnce() {
	var tpl models.MessageTemplate
	if err := rs.DB.Where("name = ? AND active = ?", ReminderTemplateName, true).First(&tpl).Error; err != nil {
		return
	}

	now := time.Now()
	var upcoming []models.Appointment
	err := rs.DB.Preload("Customer").Preload("Vehicle").Preload("Services").
		Where("status = ?", models.AppointmentStatusScheduled).
		Where("scheduled_at BETWEEN ? AND ?", now, now.Add(rs.Window)).
		Find(&upcoming).Error
	if err != nil {
		utils.ErrorLogger.Printf("Reminder scan failed: %v", err)
		return
	}

	for i := range upcoming {
		appointment := &upcoming[i]

		// One reminder per appointment.
		var count int64
		rs.DB.Model(&models.NotificationLog{}).
			Where("appointment_id = ? AND kind = ?", appointment.ID, models.NotificationKindReminder).
			Count(&count)
		if count > 0 {
			continue
		}

		_, body := RenderTemplate(&tpl, &appointment.Customer, appointment)
		sentAt := time.Now()
		entry := models.NotificationLog{
			CustomerID:    appointment.CustomerID,
			AppointmentID: &appointment.ID,
			TemplateID:    &tpl.ID,
			Channel:       tpl.Channel,
			Kind:          models.NotificationKindReminder,
			RenderedBody:  body,
			Status:        models.NotificationStatusSent,
			SentAt:        &sentAt,
		}

		if err := rs.DB.Create(&entry).Error; err != nil {
			utils.ErrorLogger.Printf("Failed to log reminder for appointment %d: %v", appointment.ID, err)
			continue
		}

		dispatch.BroadcastNotificationSent(entry)
		utils.InfoLogger.Printf("Reminder queued for appointment %d (customer %d)", appointment.ID, appointment.CustomerID)
	}
}
