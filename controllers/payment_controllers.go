package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/dispatch"
	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/utils"
)

type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// CreatePayment -> record a payment taken in the field against an invoice.
// Rolls the invoice's AmountPaid and derives its status.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	invoiceID := c.Param("invoice_id")

	type reqBody struct {
		Amount    float64 `json:"amount" binding:"required"`
		Method    string  `json:"method" binding:"required"` // cash, card, check
		Reference string  `json:"reference"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch req.Method {
	case "cash", "card", "check":
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("method must be cash, card or check"))
		return
	}
	if req.Amount <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("amount must be positive"))
		return
	}

	var invoice models.Invoice
	if err := pc.DB.First(&invoice, invoiceID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if invoice.Status == models.InvoiceStatusVoid {
		utils.RespondError(c, http.StatusConflict, errors.New("invoice is void"))
		return
	}
	if req.Amount > invoice.Balance() {
		utils.RespondError(c, http.StatusUnprocessableEntity,
			fmt.Errorf("amount exceeds balance of %s", utils.FormatCurrencyUSD(invoice.Balance())))
		return
	}

	var receivedBy *uint
	if userID := c.GetUint("user_id"); userID != 0 {
		receivedBy = &userID
	}

	payment := models.Payment{
		InvoiceID:  invoice.ID,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		ReceivedBy: receivedBy,
		PaidAt:     time.Now(),
	}

	tx := pc.DB.Begin()
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	invoice.AmountPaid += req.Amount
	switch {
	case invoice.AmountPaid >= invoice.Total:
		invoice.Status = models.InvoiceStatusPaid
	case invoice.AmountPaid > 0:
		invoice.Status = models.InvoiceStatusPartiallyPaid
	}
	if err := tx.Save(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	tx.Commit()

	utils.InfoLogger.Printf("Payment of %s (%s) recorded on invoice %s",
		utils.FormatCurrencyUSD(payment.Amount), payment.Method, invoice.InvoiceNumber)
	dispatch.BroadcastPaymentUpdate(payment, invoice)

	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", gin.H{
		"payment": payment,
		"invoice": invoice,
	})
}

// GetInvoicePayments -> payments on one invoice
func (pc *PaymentController) GetInvoicePayments(c *gin.Context) {
	invoiceID, _ := strconv.Atoi(c.Param("invoice_id"))

	var payments []models.Payment
	if err := pc.DB.Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC").Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of payments", payments)
}

// DeletePayment -> admin correction; restores the invoice balance.
func (pc *PaymentController) DeletePayment(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("payment_id"))

	var payment models.Payment
	if err := pc.DB.First(&payment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var invoice models.Invoice
	if err := pc.DB.First(&invoice, payment.InvoiceID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	tx := pc.DB.Begin()
	if err := tx.Delete(&payment).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	invoice.AmountPaid -= payment.Amount
	switch {
	case invoice.AmountPaid <= 0:
		invoice.AmountPaid = 0
		invoice.Status = models.InvoiceStatusUnpaid
	case invoice.AmountPaid < invoice.Total:
		invoice.Status = models.InvoiceStatusPartiallyPaid
	}
	if err := tx.Save(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	tx.Commit()

	utils.InfoLogger.Printf("Payment %d removed from invoice %s", payment.ID, invoice.InvoiceNumber)
	dispatch.BroadcastPaymentUpdate(payment, invoice)

	utils.RespondJSON(c, http.StatusOK, "Payment deleted", gin.H{
		"payment_id": id,
		"invoice":    invoice,
	})
}
