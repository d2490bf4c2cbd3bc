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

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// GetAllCustomers -> list customers, optional ?q= name/phone filter
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	query := cc.DB.Preload("Vehicles").Order("last_name ASC, first_name ASC")

	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		digits := utils.NormalizePhone(q)
		if digits != "" {
			query = query.Where("first_name LIKE ? OR last_name LIKE ? OR phone LIKE ?", like, like, "%"+digits+"%")
		} else {
			query = query.Where("first_name LIKE ? OR last_name LIKE ?", like, like)
		}
	}

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// LookupByPhone backs the quick-add form: returns every customer whose
// normalized phone matches, vehicles preloaded. Zero, one or many matches
// are all normal responses; the client branches on the count.
func (cc *CustomerController) LookupByPhone(c *gin.Context) {
	digits := utils.NormalizePhone(c.Query("phone"))
	if len(digits) < 7 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("phone must contain at least 7 digits"))
		return
	}

	var matches []models.Customer
	if err := cc.DB.Preload("Vehicles").Where("phone = ?", digits).Find(&matches).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer lookup", gin.H{
		"count":   len(matches),
		"matches": matches,
	})
}

// CreateCustomer -> staff adds a customer manually
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	type reqBody struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Phone     string `json:"phone" binding:"required"`
		Email     string `json:"email"`
		Address   string `json:"address"`
		City      string `json:"city"`
		State     string `json:"state"`
		Zip       string `json:"zip"`
		Notes     string `json:"notes"`
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

	customer := models.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     digits,
		Email:     req.Email,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Zip:       req.Zip,
		Notes:     req.Notes,
	}

	if err := cc.DB.Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New customer created (ID=%d, phone=%s)", customer.ID, customer.Phone)

	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}

// GetCustomerByID -> detail with vehicles
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, _ := strconv.Atoi(idStr)

	var customer models.Customer
	if err := cc.DB.Preload("Vehicles").First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}

// UpdateCustomer -> partial update
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, _ := strconv.Atoi(idStr)

	type reqBody struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Phone     *string `json:"phone"`
		Email     *string `json:"email"`
		Address   *string `json:"address"`
		City      *string `json:"city"`
		State     *string `json:"state"`
		Zip       *string `json:"zip"`
		Notes     *string `json:"notes"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if req.Phone != nil {
		digits := utils.NormalizePhone(*req.Phone)
		if len(digits) < 7 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("phone must contain at least 7 digits"))
			return
		}
		customer.Phone = digits
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.City != nil {
		customer.City = *req.City
	}
	if req.State != nil {
		customer.State = *req.State
	}
	if req.Zip != nil {
		customer.Zip = *req.Zip
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	if err := cc.DB.Save(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

// DeleteCustomer -> soft delete
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, _ := strconv.Atoi(idStr)

	// Block deletion while open appointments exist.
	var open int64
	cc.DB.Model(&models.Appointment{}).
		Where("customer_id = ? AND status IN ?", id, []string{
			models.AppointmentStatusScheduled,
			models.AppointmentStatusInProgress,
			models.AppointmentStatusReady,
		}).Count(&open)
	if open > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("customer has open appointments"))
		return
	}

	if err := cc.DB.Delete(&models.Customer{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer deleted", gin.H{"customer_id": id})
}
