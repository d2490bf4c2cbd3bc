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

type ServiceCategoryController struct {
	DB *gorm.DB
}

func NewServiceCategoryController(db *gorm.DB) *ServiceCategoryController {
	return &ServiceCategoryController{DB: db}
}

func (sc *ServiceCategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.ServiceCategory
	if err := sc.DB.Order("name ASC").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

func (sc *ServiceCategoryController) CreateCategory(c *gin.Context) {
	type reqBody struct {
		Name string `json:"name" binding:"required"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category := models.ServiceCategory{Name: req.Name}
	if err := sc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (sc *ServiceCategoryController) UpdateCategory(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("cat_id"))

	type reqBody struct {
		Name string `json:"name" binding:"required"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.ServiceCategory
	if err := sc.DB.First(&category, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	category.Name = req.Name
	if err := sc.DB.Save(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

func (sc *ServiceCategoryController) DeleteCategory(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("cat_id"))

	var inUse int64
	sc.DB.Model(&models.Service{}).Where("category_id = ?", id).Count(&inUse)
	if inUse > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("category still has services"))
		return
	}

	if err := sc.DB.Delete(&models.ServiceCategory{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category deleted", gin.H{"category_id": id})
}
