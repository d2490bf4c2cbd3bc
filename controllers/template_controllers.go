package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/services"
	"github.com/wrenchworks/garage-app/utils"
)

type TemplateController struct {
	DB *gorm.DB
}

func NewTemplateController(db *gorm.DB) *TemplateController {
	return &TemplateController{DB: db}
}

func (tc *TemplateController) GetAllTemplates(c *gin.Context) {
	var templates []models.MessageTemplate
	if err := tc.DB.Order("name ASC").Find(&templates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of templates", templates)
}

func (tc *TemplateController) GetTemplateByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("template_id"))

	var tpl models.MessageTemplate
	if err := tc.DB.First(&tpl, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Template detail", tpl)
}

func (tc *TemplateController) CreateTemplate(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Channel string `json:"channel"`
		Subject string `json:"subject"`
		Body    string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Channel == "" {
		req.Channel = "sms"
	}
	switch req.Channel {
	case "sms", "email":
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("channel must be sms or email"))
		return
	}

	tpl := models.MessageTemplate{
		Name:    req.Name,
		Channel: req.Channel,
		Subject: req.Subject,
		Body:    req.Body,
		Active:  true,
	}
	if err := tc.DB.Create(&tpl).Error; err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	utils.InfoLogger.Printf("Template %q created", tpl.Name)
	utils.RespondJSON(c, http.StatusCreated, "Template created", tpl)
}

func (tc *TemplateController) UpdateTemplate(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("template_id"))

	var tpl models.MessageTemplate
	if err := tc.DB.First(&tpl, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name    *string `json:"name"`
		Channel *string `json:"channel"`
		Subject *string `json:"subject"`
		Body    *string `json:"body"`
		Active  *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		tpl.Name = *req.Name
	}
	if req.Channel != nil {
		switch *req.Channel {
		case "sms", "email":
			tpl.Channel = *req.Channel
		default:
			utils.RespondError(c, http.StatusBadRequest, errors.New("channel must be sms or email"))
			return
		}
	}
	if req.Subject != nil {
		tpl.Subject = *req.Subject
	}
	if req.Body != nil {
		tpl.Body = *req.Body
	}
	if req.Active != nil {
		tpl.Active = *req.Active
	}

	if err := tc.DB.Save(&tpl).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Template updated", tpl)
}

func (tc *TemplateController) DeleteTemplate(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("template_id"))

	var tpl models.MessageTemplate
	if err := tc.DB.First(&tpl, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if err := tc.DB.Delete(&tpl).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Template %q deleted", tpl.Name)
	utils.RespondJSON(c, http.StatusOK, "Template deleted", gin.H{"template_id": id})
}

// PreviewTemplate -> render the template against a real customer and,
// optionally, one of their appointments. Nothing is sent or logged.
func (tc *TemplateController) PreviewTemplate(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("template_id"))

	var tpl models.MessageTemplate
	if err := tc.DB.First(&tpl, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		CustomerID    uint  `json:"customer_id" binding:"required"`
		AppointmentID *uint `json:"appointment_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := tc.DB.First(&customer, req.CustomerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
		return
	}

	var appointment *models.Appointment
	if req.AppointmentID != nil {
		var appt models.Appointment
		if err := tc.DB.Preload("Vehicle").Preload("Services").
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

	subject, body := services.RenderTemplate(&tpl, &customer, appointment)

	utils.RespondJSON(c, http.StatusOK, "Template preview", gin.H{
		"channel":     tpl.Channel,
		"subject":     subject,
		"body":        body,
		"rendered_at": time.Now(),
		"customer_id": customer.ID,
		"template_id": tpl.ID,
	})
}
