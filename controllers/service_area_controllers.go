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

type ServiceAreaController struct {
	DB *gorm.DB
}

func NewServiceAreaController(db *gorm.DB) *ServiceAreaController {
	return &ServiceAreaController{DB: db}
}

// GetAllServiceAreas -> public list for the marketing pages
func (sa *ServiceAreaController) GetAllServiceAreas(c *gin.Context) {
	var areas []models.ServiceArea
	if err := sa.DB.Order("zip ASC").Find(&areas).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of service areas", areas)
}

// CheckCoverage -> does the shop come to this zip, and for emergencies?
func (sa *ServiceAreaController) CheckCoverage(c *gin.Context) {
	zip := c.Query("zip")
	if len(zip) != 5 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("zip must be 5 digits"))
		return
	}

	var area models.ServiceArea
	err := sa.DB.Where("zip = ?", zip).First(&area).Error
	if err != nil {
		utils.RespondJSON(c, http.StatusOK, "Coverage check", gin.H{
			"zip":       zip,
			"covered":   false,
			"emergency": false,
		})
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Coverage check", gin.H{
		"zip":       zip,
		"covered":   true,
		"emergency": area.EmergencyCovered,
		"area":      area,
	})
}

// CreateServiceArea -> admin only
func (sa *ServiceAreaController) CreateServiceArea(c *gin.Context) {
	type reqBody struct {
		Name             string `json:"name" binding:"required"`
		Zip              string `json:"zip" binding:"required"`
		EmergencyCovered bool   `json:"emergency_covered"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if len(req.Zip) != 5 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("zip must be 5 digits"))
		return
	}

	area := models.ServiceArea{
		Name:             req.Name,
		Zip:              req.Zip,
		EmergencyCovered: req.EmergencyCovered,
	}

	if err := sa.DB.Create(&area).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Service area created", area)
}

// UpdateServiceArea -> admin only
func (sa *ServiceAreaController) UpdateServiceArea(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("area_id"))

	type reqBody struct {
		Name             *string `json:"name"`
		Zip              *string `json:"zip"`
		EmergencyCovered *bool   `json:"emergency_covered"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var area models.ServiceArea
	if err := sa.DB.First(&area, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if req.Name != nil {
		area.Name = *req.Name
	}
	if req.Zip != nil {
		if len(*req.Zip) != 5 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("zip must be 5 digits"))
			return
		}
		area.Zip = *req.Zip
	}
	if req.EmergencyCovered != nil {
		area.EmergencyCovered = *req.EmergencyCovered
	}

	if err := sa.DB.Save(&area).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Service area updated", area)
}

// DeleteServiceArea -> admin only
func (sa *ServiceAreaController) DeleteServiceArea(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("area_id"))

	if err := sa.DB.Delete(&models.ServiceArea{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Service area deleted", gin.H{"area_id": id})
}
