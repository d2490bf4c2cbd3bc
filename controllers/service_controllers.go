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

type ServiceController struct {
	DB *gorm.DB
}

func NewServiceController(db *gorm.DB) *ServiceController {
	return &ServiceController{DB: db}
}

// GetAllServices -> public catalog. Staff get inactive entries too with
// ?include_inactive=true behind auth.
func (sc *ServiceController) GetAllServices(c *gin.Context) {
	query := sc.DB.Preload("Category").Order("name ASC")

	if c.Query("include_inactive") != "true" {
		query = query.Where("active = ?", true)
	}

	var services []models.Service
	if err := query.Find(&services).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of services", services)
}

// GetServicesByCategory -> grouped for the booking page
func (sc *ServiceController) GetServicesByCategory(c *gin.Context) {
	var categories []models.ServiceCategory
	if err := sc.DB.Order("name ASC").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type group struct {
		Category models.ServiceCategory `json:"category"`
		Services []models.Service       `json:"services"`
	}

	var groups []group
	for _, category := range categories {
		var services []models.Service
		if err := sc.DB.Where("category_id = ? AND active = ?", category.ID, true).
			Order("name ASC").Find(&services).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if len(services) == 0 {
			continue
		}
		groups = append(groups, group{Category: category, Services: services})
	}

	utils.RespondJSON(c, http.StatusOK, "Services by category", groups)
}

// GetServiceByID -> detail of one service
func (sc *ServiceController) GetServiceByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("service_id"))

	var service models.Service
	if err := sc.DB.Preload("Category").First(&service, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Service detail", service)
}

// CreateService -> staff/admin add a catalog entry
func (sc *ServiceController) CreateService(c *gin.Context) {
	type reqBody struct {
		CategoryID  uint    `json:"category_id" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Price       float64 `json:"price" binding:"required"`
		DurationMin int     `json:"duration_min"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price cannot be negative"))
		return
	}
	if req.DurationMin <= 0 {
		req.DurationMin = 30
	}

	var category models.ServiceCategory
	if err := sc.DB.First(&category, req.CategoryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	service := models.Service{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		DurationMin: req.DurationMin,
		Active:      true,
	}

	if err := sc.DB.Create(&service).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Service created: %s (ID=%d)", service.Name, service.ID)

	utils.RespondJSON(c, http.StatusCreated, "Service created", service)
}

// UpdateService -> partial update
func (sc *ServiceController) UpdateService(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("service_id"))

	type reqBody struct {
		CategoryID  *uint    `json:"category_id"`
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		DurationMin *int     `json:"duration_min"`
		Active      *bool    `json:"active"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var service models.Service
	if err := sc.DB.First(&service, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if req.CategoryID != nil {
		var category models.ServiceCategory
		if err := sc.DB.First(&category, *req.CategoryID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		service.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price cannot be negative"))
			return
		}
		service.Price = *req.Price
	}
	if req.DurationMin != nil && *req.DurationMin > 0 {
		service.DurationMin = *req.DurationMin
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := sc.DB.Save(&service).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Service updated", service)
}

// DeleteService -> deactivate instead of delete when already booked
func (sc *ServiceController) DeleteService(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("service_id"))

	var service models.Service
	if err := sc.DB.First(&service, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var booked int64
	sc.DB.Model(&models.AppointmentService{}).Where("service_id = ?", id).Count(&booked)
	if booked > 0 {
		// Keep history intact; retire the entry instead.
		service.Active = false
		if err := sc.DB.Save(&service).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Service deactivated", service)
		return
	}

	if err := sc.DB.Delete(&service).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Service deleted", gin.H{"service_id": id})
}
