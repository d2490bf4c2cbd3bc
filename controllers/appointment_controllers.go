package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/dispatch"
	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/services"
	"github.com/wrenchworks/garage-app/utils"
)

type AppointmentController struct {
	DB *gorm.DB
}

func NewAppointmentController(db *gorm.DB) *AppointmentController {
	return &AppointmentController{DB: db}
}

// GetAllAppointments -> list with optional status/date-range/customer filters
func (ac *AppointmentController) GetAllAppointments(c *gin.Context) {
	query := ac.DB.Preload("Customer").Preload("Vehicle").Preload("Services").
		Order("scheduled_at ASC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("scheduled_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("scheduled_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of appointments", appointments)
}

// GetAppointmentByID -> detail with relations
func (ac *AppointmentController) GetAppointmentByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("appointment_id"))

	var appointment models.Appointment
	if err := ac.DB.Preload("Customer").Preload("Vehicle").Preload("Services").
		First(&appointment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Appointment detail", appointment)
}

// quickAddRequest is the payload assembled by the dashboard's quick-add
// form: either an existing customer/vehicle ID, or inline data to create
// one on the spot.
type quickAddRequest struct {
	CustomerID  *uint `json:"customer_id"`
	NewCustomer *struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
	} `json:"new_customer"`
	VehicleID  *uint `json:"vehicle_id"`
	NewVehicle *struct {
		Make    string `json:"make"`
		Model   string `json:"model"`
		Year    int    `json:"year"`
		Plate   string `json:"plate"`
		Mileage int    `json:"mileage"`
	} `json:"new_vehicle"`
	ServiceIDs  []uint    `json:"service_ids" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Zip         string    `json:"zip"`
	Emergency   bool      `json:"emergency"`
	Notes       string    `json:"notes"`
}

// CreateAppointment -> quick-add from the dashboard
func (ac *AppointmentController) CreateAppointment(c *gin.Context) {
	var req quickAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tx := ac.DB.Begin()

	// Resolve or create the customer.
	var customer models.Customer
	switch {
	case req.CustomerID != nil:
		if err := tx.First(&customer, *req.CustomerID).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("customer not found"))
			return
		}
	case req.NewCustomer != nil:
		digits := utils.NormalizePhone(req.NewCustomer.Phone)
		if req.NewCustomer.FirstName == "" || req.NewCustomer.LastName == "" || len(digits) < 7 {
			tx.Rollback()
			utils.RespondError(c, http.StatusBadRequest, errors.New("new customer needs first name, last name and phone"))
			return
		}
		customer = models.Customer{
			FirstName: req.NewCustomer.FirstName,
			LastName:  req.NewCustomer.LastName,
			Phone:     digits,
			Email:     req.NewCustomer.Email,
		}
		if err := tx.Create(&customer).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	default:
		tx.Rollback()
		utils.RespondError(c, http.StatusBadRequest, errors.New("customer_id or new_customer is required"))
		return
	}

	// Resolve or create the vehicle.
	var vehicle models.Vehicle
	switch {
	case req.VehicleID != nil:
		if err := tx.First(&vehicle, *req.VehicleID).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("vehicle not found"))
			return
		}
		if vehicle.CustomerID != customer.ID {
			tx.Rollback()
			utils.RespondError(c, http.StatusBadRequest, errors.New("vehicle does not belong to customer"))
			return
		}
	case req.NewVehicle != nil:
		if req.NewVehicle.Make == "" || req.NewVehicle.Model == "" || req.NewVehicle.Year == 0 {
			tx.Rollback()
			utils.RespondError(c, http.StatusBadRequest, errors.New("new vehicle needs make, model and year"))
			return
		}
		vehicle = models.Vehicle{
			CustomerID: customer.ID,
			Make:       req.NewVehicle.Make,
			Model:      req.NewVehicle.Model,
			Year:       req.NewVehicle.Year,
			Plate:      req.NewVehicle.Plate,
			Mileage:    req.NewVehicle.Mileage,
		}
		if err := tx.Create(&vehicle).Error; err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	default:
		tx.Rollback()
		utils.RespondError(c, http.StatusBadRequest, errors.New("vehicle_id or new_vehicle is required"))
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
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("%w (appointment #%d)", services.ErrSlotConflict, conflict.ID))
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

	ac.DB.Preload("Customer").Preload("Vehicle").Preload("Services").First(&appointment, appointment.ID)

	utils.InfoLogger.Printf("Appointment %d created for customer %d (%d services, %d min)",
		appointment.ID, customer.ID, len(rows), duration)
	dispatch.BroadcastAppointmentCreated(appointment)

	utils.RespondJSON(c, http.StatusCreated, "Appointment created", appointment)
}

// UpdateAppointment -> reschedule, replace services, edit notes/address.
// Service/time changes are only allowed while the appointment is scheduled.
func (ac *AppointmentController) UpdateAppointment(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("appointment_id"))

	var appointment models.Appointment
	if err := ac.DB.Preload("Services").First(&appointment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		ScheduledAt *time.Time `json:"scheduled_at"`
		ServiceIDs  []uint     `json:"service_ids"`
		Address     *string    `json:"address"`
		City        *string    `json:"city"`
		Zip         *string    `json:"zip"`
		Emergency   *bool      `json:"emergency"`
		Notes       *string    `json:"notes"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reschedule := req.ScheduledAt != nil || len(req.ServiceIDs) > 0
	if reschedule && appointment.Status != models.AppointmentStatusScheduled {
		utils.RespondError(c, http.StatusConflict, errors.New("only scheduled appointments can be rescheduled or re-scoped"))
		return
	}

	tx := ac.DB.Begin()

	duration := appointment.DurationMin
	if len(req.ServiceIDs) > 0 {
		rows, newDuration, total, err := services.BuildAppointmentServices(tx, req.ServiceIDs)
		if err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}

		if err := tx.Where("appointment_id = ?", appointment.ID).
			Delete(&models.AppointmentService{}).Error; err != nil {
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

		duration = newDuration
		appointment.DurationMin = newDuration
		appointment.TotalAmount = total
	}

	if req.ScheduledAt != nil {
		appointment.ScheduledAt = *req.ScheduledAt
	}

	if reschedule {
		if conflict, err := services.FindConflict(tx, appointment.ScheduledAt, duration, appointment.ID); err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		} else if conflict != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusConflict,
				fmt.Errorf("%w (appointment #%d)", services.ErrSlotConflict, conflict.ID))
			return
		}
	}

	if req.Address != nil {
		appointment.Address = *req.Address
	}
	if req.City != nil {
		appointment.City = *req.City
	}
	if req.Zip != nil {
		appointment.Zip = *req.Zip
	}
	if req.Emergency != nil {
		appointment.Emergency = *req.Emergency
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}

	if err := tx.Save(&appointment).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tx.Commit()

	ac.DB.Preload("Customer").Preload("Vehicle").Preload("Services").First(&appointment, appointment.ID)
	dispatch.BroadcastAppointmentUpdate(appointment)

	utils.RespondJSON(c, http.StatusOK, "Appointment updated", appointment)
}

// UpdateAppointmentStatus -> guarded lifecycle transition
func (ac *AppointmentController) UpdateAppointmentStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("appointment_id"))

	type reqBody struct {
		Status string `json:"status" binding:"required"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var appointment models.Appointment
	if err := ac.DB.First(&appointment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if err := services.TransitionAppointment(ac.DB, &appointment, req.Status); err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Appointment %d -> %s", appointment.ID, appointment.Status)
	dispatch.BroadcastAppointmentUpdate(appointment)

	utils.RespondJSON(c, http.StatusOK, "Appointment status updated", gin.H{
		"appointment":   appointment,
		"next_statuses": services.NextStatuses(appointment.Status),
	})
}

// DeleteAppointment -> only while still scheduled; later history stays.
func (ac *AppointmentController) DeleteAppointment(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("appointment_id"))

	var appointment models.Appointment
	if err := ac.DB.First(&appointment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if appointment.Status != models.AppointmentStatusScheduled {
		utils.RespondError(c, http.StatusConflict, errors.New("only scheduled appointments can be deleted"))
		return
	}

	tx := ac.DB.Begin()
	if err := tx.Where("appointment_id = ?", appointment.ID).
		Delete(&models.AppointmentService{}).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := tx.Delete(&appointment).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	tx.Commit()

	dispatch.BroadcastStaffNotification(fmt.Sprintf("Appointment #%d deleted", appointment.ID))

	utils.RespondJSON(c, http.StatusOK, "Appointment deleted", gin.H{"appointment_id": id})
}
