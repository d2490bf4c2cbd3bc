package controllers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/config"
	"github.com/wrenchworks/garage-app/dispatch"
	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/utils"
)

type InvoiceController struct {
	DB *gorm.DB
}

func NewInvoiceController(db *gorm.DB) *InvoiceController {
	return &InvoiceController{DB: db}
}

// GenerateInvoice -> create an invoice from a completed appointment's
// service snapshot. One invoice per appointment.
func (ic *InvoiceController) GenerateInvoice(c *gin.Context) {
	appointmentID := c.Param("appointment_id")

	var appointment models.Appointment
	if err := ic.DB.Preload("Services").Preload("Customer").
		First(&appointment, appointmentID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if appointment.Status != models.AppointmentStatusCompleted {
		utils.RespondError(c, http.StatusConflict, errors.New("appointment is not completed yet"))
		return
	}

	var existing models.Invoice
	if err := ic.DB.Where("appointment_id = ?", appointment.ID).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("appointment already invoiced (%s)", existing.InvoiceNumber))
		return
	}

	var subtotal float64
	items := make([]models.InvoiceItem, 0, len(appointment.Services))
	for _, booked := range appointment.Services {
		items = append(items, models.InvoiceItem{
			ServiceID: booked.ServiceID,
			Name:      booked.Name,
			Quantity:  1,
			UnitPrice: booked.Price,
			LineTotal: booked.Price,
		})
		subtotal += booked.Price
	}

	taxRate := config.TaxRate()
	tax := math.Round(subtotal*taxRate*100) / 100

	invoice := models.Invoice{
		InvoiceNumber: fmt.Sprintf("INV/%s/%06d", time.Now().Format("20060102"), appointment.ID),
		AppointmentID: appointment.ID,
		CustomerID:    appointment.CustomerID,
		Subtotal:      subtotal,
		TaxRate:       taxRate,
		Tax:           tax,
		Total:         subtotal + tax,
		Status:        models.InvoiceStatusUnpaid,
		IssuedAt:      time.Now(),
	}

	tx := ic.DB.Begin()
	if err := tx.Create(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	for i := range items {
		items[i].InvoiceID = invoice.ID
	}
	if err := tx.Create(&items).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	tx.Commit()

	ic.DB.Preload("Items").Preload("Customer").First(&invoice, invoice.ID)

	utils.InfoLogger.Printf("Invoice %s generated for appointment %d (total %s)",
		invoice.InvoiceNumber, appointment.ID, utils.FormatCurrencyUSD(invoice.Total))
	dispatch.BroadcastInvoiceUpdate(invoice)

	utils.RespondJSON(c, http.StatusCreated, "Invoice generated", invoice)
}

// GetAllInvoices -> list with optional status/customer filters
func (ic *InvoiceController) GetAllInvoices(c *gin.Context) {
	query := ic.DB.Preload("Items").Preload("Customer").Order("issued_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of invoices", invoices)
}

// GetInvoiceByID -> full detail including payments
func (ic *InvoiceController) GetInvoiceByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("invoice_id"))

	var invoice models.Invoice
	if err := ic.DB.Preload("Items").Preload("Payments").Preload("Customer").
		Preload("Appointment").Preload("Appointment.Vehicle").
		First(&invoice, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Invoice detail", invoice)
}

// VoidInvoice -> admin only, blocked once any payment is recorded
func (ic *InvoiceController) VoidInvoice(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("invoice_id"))

	var invoice models.Invoice
	if err := ic.DB.Preload("Payments").First(&invoice, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if invoice.Status == models.InvoiceStatusVoid {
		utils.RespondError(c, http.StatusConflict, errors.New("invoice already void"))
		return
	}
	if len(invoice.Payments) > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("invoice has payments and cannot be voided"))
		return
	}

	invoice.Status = models.InvoiceStatusVoid
	if err := ic.DB.Save(&invoice).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Invoice %s voided", invoice.InvoiceNumber)
	dispatch.BroadcastInvoiceUpdate(invoice)

	utils.RespondJSON(c, http.StatusOK, "Invoice voided", invoice)
}

// GetInvoicePDF -> render the invoice as a downloadable PDF
func (ic *InvoiceController) GetInvoicePDF(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("invoice_id"))

	var invoice models.Invoice
	if err := ic.DB.Preload("Items").Preload("Payments").Preload("Customer").
		Preload("Appointment").Preload("Appointment.Vehicle").
		First(&invoice, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Wrenchworks Mobile Repair")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice %s", invoice.InvoiceNumber))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Issued %s", invoice.IssuedAt.Format("Jan 2, 2006")))
	pdf.Ln(10)

	customer := invoice.Customer
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Bill To")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("%s %s", customer.FirstName, customer.LastName))
	pdf.Ln(5)
	if customer.Address != "" {
		pdf.Cell(0, 5, fmt.Sprintf("%s, %s %s", customer.Address, customer.City, customer.Zip))
		pdf.Ln(5)
	}
	vehicle := invoice.Appointment.Vehicle
	pdf.Cell(0, 5, fmt.Sprintf("Vehicle: %d %s %s", vehicle.Year, vehicle.Make, vehicle.Model))
	pdf.Ln(10)

	// Line items table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(100, 7, "Service", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 7, "Unit", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range invoice.Items {
		pdf.CellFormat(100, 7, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, utils.FormatCurrencyUSD(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, utils.FormatCurrencyUSD(item.LineTotal), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	writeTotal := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(155, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, value, "", 1, "R", false, 0, "")
	}
	writeTotal("Subtotal", utils.FormatCurrencyUSD(invoice.Subtotal), false)
	writeTotal(fmt.Sprintf("Tax (%.2f%%)", invoice.TaxRate*100), utils.FormatCurrencyUSD(invoice.Tax), false)
	writeTotal("Total", utils.FormatCurrencyUSD(invoice.Total), true)
	writeTotal("Paid", utils.FormatCurrencyUSD(invoice.AmountPaid), false)
	writeTotal("Balance Due", utils.FormatCurrencyUSD(invoice.Balance()), true)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%d.pdf", invoice.ID))
	c.Header("Content-Type", "application/pdf")
	if err := pdf.Output(c.Writer); err != nil {
		utils.ErrorLogger.Printf("Failed writing invoice PDF %d: %v", invoice.ID, err)
	}
}
