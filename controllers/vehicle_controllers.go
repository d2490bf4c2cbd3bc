package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/utils"
	"gorm.io/gorm"
)

type VehicleController struct {
	DB *gorm.DB
}

func NewVehicleController(db *gorm.DB) *VehicleController {
	return &VehicleController{DB: db}
}

// GetCustomerVehicles -> list one customer's vehicles
func (vc *VehicleController) GetCustomerVehicles(c *gin.Context) {
	customerID, _ := strconv.Atoi(c.Param("customer_id"))

	var customer models.Customer
	if err := vc.DB.First(&customer, customerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var vehicles []models.Vehicle
	if err := vc.DB.Where("customer_id = ?", customerID).Find(&vehicles).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of vehicles", vehicles)
}

// CreateVehicle -> add a vehicle to a customer
func (vc *VehicleController) CreateVehicle(c *gin.Context) {
	customerID, _ := strconv.Atoi(c.Param("customer_id"))

	var customer models.Customer
	if err := vc.DB.First(&customer, customerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		Make    string `json:"make" binding:"required"`
		Model   string `json:"model" binding:"required"`
		Year    int    `json:"year" binding:"required"`
		Plate   string `json:"plate"`
		VIN     string `json:"vin"`
		Mileage int    `json:"mileage"`
		Notes   string `json:"notes"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Year < 1900 || req.Year > 2100 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("implausible vehicle year"))
		return
	}

	vehicle := models.Vehicle{
		CustomerID: customer.ID,
		Make:       req.Make,
		Model:      req.Model,
		Year:       req.Year,
		Plate:      req.Plate,
		VIN:        req.VIN,
		Mileage:    req.Mileage,
		Notes:      req.Notes,
	}

	if err := vc.DB.Create(&vehicle).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Vehicle created (ID=%d) for customer %d", vehicle.ID, customer.ID)

	utils.RespondJSON(c, http.StatusCreated, "Vehicle created", vehicle)
}

// GetVehicleByID -> single vehicle detail
func (vc *VehicleController) GetVehicleByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("vehicle_id"))

	var vehicle models.Vehicle
	if err := vc.DB.First(&vehicle, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Vehicle detail", vehicle)
}

// UpdateVehicle -> partial update
func (vc *VehicleController) UpdateVehicle(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("vehicle_id"))

	type reqBody struct {
		Make    *string `json:"make"`
		Model   *string `json:"model"`
		Year    *int    `json:"year"`
		Plate   *string `json:"plate"`
		VIN     *string `json:"vin"`
		Mileage *int    `json:"mileage"`
		Notes   *string `json:"notes"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var vehicle models.Vehicle
	if err := vc.DB.First(&vehicle, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if req.Make != nil {
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Plate != nil {
		vehicle.Plate = *req.Plate
	}
	if req.VIN != nil {
		vehicle.VIN = *req.VIN
	}
	if req.Mileage != nil {
		vehicle.Mileage = *req.Mileage
	}
	if req.Notes != nil {
		vehicle.Notes = *req.Notes
	}

	if err := vc.DB.Save(&vehicle).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Vehicle updated", vehicle)
}

// DeleteVehicle -> soft delete, blocked while open appointments reference it
func (vc *VehicleController) DeleteVehicle(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("vehicle_id"))

	var open int64
	vc.DB.Model(&models.Appointment{}).
		Where("vehicle_id = ? AND status IN ?", id, []string{
			models.AppointmentStatusScheduled,
			models.AppointmentStatusInProgress,
			models.AppointmentStatusReady,
		}).Count(&open)
	if open > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("vehicle has open appointments"))
		return
	}

	if err := vc.DB.Delete(&models.Vehicle{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Vehicle deleted", gin.H{"vehicle_id": id})
}
