package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/dispatch"
	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/services"
	"github.com/wrenchworks/garage-app/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications -> history with optional filters
// ?customer_id= ?kind= ?status= ?appointment_id=
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	query := nc.DB.Preload("Customer").Preload("Template").Order("created_at DESC")

	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if appointmentID := c.Query("appointment_id"); appointmentID != "" {
		query = query.Where("appointment_id = ?", appointmentID)
	}

	var entries []models.NotificationLog
	if err := query.Limit(200).Find(&entries).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification history", entries)
}

func (nc *NotificationController) GetNotificationByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("notification_id"))

	var entry models.NotificationLog
	if err := nc.DB.Preload("Customer").Preload("Template").Preload("Appointment").
		First(&entry, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification detail", entry)
}

// SendNotification -> manual send from the admin. Renders a template or
// takes a raw body, records the log entry and pushes it to the dashboard.
func (nc *NotificationController) SendNotification(c *gin.Context) {
	var req struct {
		CustomerID    uint   `json:"customer_id" binding:"required"`
		AppointmentID *uint  `json:"appointment_id"`
		TemplateID    *uint  `json:"template_id"`
		Body          string `json:"body"`
		Channel       string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.TemplateID == nil && req.Body == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("template_id or body is required"))
		return
	}

	var customer models.Customer
	if err := nc.DB.First(&customer, req.CustomerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
		return
	}

	var appointment *models.Appointment
	if req.AppointmentID != nil {
		var appt models.Appointment
		if err := nc.DB.Preload("Vehicle").Preload("Services").
			First(&appt, *req.AppointmentID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("appointment not found"))
			return
		}
		if appt.CustomerID != customer.ID {
			utils.RespondError(c, http.StatusBadRequest, errors.New("appointment does not belong to that customer"))
			return
		}
		appointment = &appt
	}

	channel := req.Channel
	body := req.Body
	if req.TemplateID != nil {
		var tpl models.MessageTemplate
		if err := nc.DB.First(&tpl, *req.TemplateID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("template not found"))
			return
		}
		if !tpl.Active {
			utils.RespondError(c, http.StatusConflict, errors.New("template is inactive"))
			return
		}
		_, body = services.RenderTemplate(&tpl, &customer, appointment)
		if channel == "" {
			channel = tpl.Channel
		}
	}
	if channel == "" {
		channel = "sms"
	}

	// No SMS/email provider wired in; the rendered message is handed to
	// staff on the dashboard and marked sent on record.
	now := time.Now()
	entry := models.NotificationLog{
		CustomerID:    customer.ID,
		AppointmentID: req.AppointmentID,
		TemplateID:    req.TemplateID,
		Channel:       channel,
		Kind:          models.NotificationKindManual,
		RenderedBody:  body,
		Status:        models.NotificationStatusSent,
		SentAt:        &now,
	}
	if err := nc.DB.Create(&entry).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	nc.DB.Preload("Customer").Preload("Template").First(&entry, entry.ID)

	utils.InfoLogger.Printf("Manual %s notification %d sent to customer %d", channel, entry.ID, customer.ID)
	dispatch.BroadcastNotificationSent(entry)

	utils.RespondJSON(c, http.StatusCreated, "Notification sent", entry)
}
