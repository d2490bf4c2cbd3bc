package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/dispatch"
	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/services"
	"github.com/wrenchworks/garage-app/utils"
)

// BookingController serves the public booking flow: availability lookup,
// booking creation and confirmation lookup. No auth.
type BookingController struct {
	DB *gorm.DB
}

func NewBookingController(db *gorm.DB) *BookingController {
	return &BookingController{DB: db}
}

// GetAvailability -> open start slots for a day.
// ?date=2026-08-24&duration=60 (duration optional, defaults to the minimum)
func (bc *BookingController) GetAvailability(c *gin.Context) {
	dateStr := c.Query("date")
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
		return
	}

	duration := services.MinAppointmentMinutes
	if d := c.Query("duration"); d != "" {
		if _, err := fmt.Sscanf(d, "%d", &duration); err != nil || duration <= 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("duration must be a positive number of minutes"))
			return
		}
	}

	slots, err := services.AvailableSlots(bc.DB, day, duration)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type slot struct {
		Start string `json:"start"`
		Label string `json:"label"`
	}
	out := make([]slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, slot{
			Start: s.Format(time.RFC3339),
			Label: s.Format("3:04 PM"),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Available slots", gin.H{
		"date":         dateStr,
		"duration_min": duration,
		"slots":        out,
	})
}

// CreateBooking -> the public booking form. Finds or creates the customer
// by phone, finds or creates the vehicle, conflict-checks the slot and
// books it.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	type reqBody struct {
		FirstName   string    `json:"first_name" binding:"required"`
		LastName    string    `json:"last_name" binding:"required"`
		Phone       string    `json:"phone" binding:"required"`
		Email       string    `json:"email"`
		Make        string    `json:"make" binding:"required"`
		Model       string    `json:"model" binding:"required"`
		Year        int       `json:"year" binding:"required"`
		ServiceIDs  []uint    `json:"service_ids" binding:"required"`
		ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
		Address     string    `json:"address" binding:"required"`
		City        string    `json:"city"`
		Zip         string    `json:"zip"`
		Emergency   bool      `json:"emergency"`
		Notes       string    `json:"notes"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	digits := utils.NormalizePhone(req.Phone)
	if len(digits) < 7 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("phone must contain at least 7 digits"))
		return
	}

	if req.ScheduledAt.Before(time.Now()) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("scheduled time is in the past"))
		return
	}

	// Coverage check when a zip is supplied.
	if req.Zip != "" {
		var area models.ServiceArea
		if err := bc.DB.Where("zip = ?", req.Zip).First(&area).Error; err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, fmt.Errorf("zip %s is outside our service area", req.Zip))
			return
		}
		if req.Emergency && !area.EmergencyCovered {
			utils.RespondError(c, http.StatusUnprocessableEntity, fmt.Errorf("emergency service is not offered in %s", req.Zip))
			return
		}
	}

	tx := bc.DB.Begin()

	// Reuse the customer when the phone is already on file.
	var customer models.Customer
	err := tx.Where("phone = ?", digits).First(&customer).Error
	switch {
	case err == nil:
		// existing customer
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer = models.Customer{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     digits,
			Email:     req.Email,
			Address:   req.Address,
			City:      req.City,
			Zip:       req.Zip,
		}
		if err := tx.Create(&customer).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	default:
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Reuse the vehicle when make/model/year already match.
	var vehicle models.Vehicle
	err = tx.Where("customer_id = ? AND make = ? AND model = ? AND year = ?",
		customer.ID, req.Make, req.Model, req.Year).First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		vehicle = models.Vehicle{
			CustomerID: customer.ID,
			Make:       req.Make,
			Model:      req.Model,
			Year:       req.Year,
		}
		if err := tx.Create(&vehicle).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	} else if err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	rows, duration, total, err := services.BuildAppointmentServices(tx, req.ServiceIDs)
	if err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if conflict, err := services.FindConflict(tx, req.ScheduledAt, duration, 0); err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	} else if conflict != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusConflict, errors.New("that time was just taken, please pick another slot"))
		return
	}

	appointment := models.Appointment{
		CustomerID:       customer.ID,
		VehicleID:        vehicle.ID,
		Status:           models.AppointmentStatusScheduled,
		ScheduledAt:      req.ScheduledAt,
		DurationMin:      duration,
		Address:          req.Address,
		City:             req.City,
		Zip:              req.Zip,
		Emergency:        req.Emergency,
		Notes:            req.Notes,
		TotalAmount:      total,
		ConfirmationCode: uuid.NewString(),
	}

	if err := tx.Create(&appointment).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	for i := range rows {
		rows[i].AppointmentID = appointment.ID
	}
	if err := tx.Create(&rows).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Public booking %d (code=%s) for customer %d",
		appointment.ID, appointment.ConfirmationCode, customer.ID)
	dispatch.BroadcastAppointmentCreated(appointment)

	utils.RespondJSON(c, http.StatusCreated, "Booking confirmed", gin.H{
		"confirmation_code": appointment.ConfirmationCode,
		"scheduled_at":      appointment.ScheduledAt,
		"duration_min":      appointment.DurationMin,
		"total_amount":      appointment.TotalAmount,
	})
}

// GetBookingByCode -> the confirmation page lookup
func (bc *BookingController) GetBookingByCode(c *gin.Context) {
	code := c.Param("code")

	var appointment models.Appointment
	if err := bc.DB.Preload("Customer").Preload("Vehicle").Preload("Services").
		Where("confirmation_code = ?", code).First(&appointment).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("booking not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Booking detail", gin.H{
		"confirmation_code": appointment.ConfirmationCode,
		"status":            appointment.Status,
		"scheduled_at":      appointment.ScheduledAt,
		"duration_min":      appointment.DurationMin,
		"address":           appointment.Address,
		"vehicle":           appointment.Vehicle,
		"services":          appointment.Services,
		"total_amount":      appointment.TotalAmount,
	})
}
