package controllers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"github.com/wcharczuk/go-chart/v2"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/dispatch"
	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetDashboardStats collects the counters the dashboard landing page shows.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	if c.GetString("role") != "admin" && c.GetString("role") != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	today := time.Now().Format("2006-01-02")

	var stats struct {
		TotalAppointments int64   `json:"total_appointments"`
		TodayAppointments int64   `json:"today_appointments"`
		TotalCustomers    int64   `json:"total_customers"`
		TotalRevenue      float64 `json:"total_revenue"`
		TodayRevenue      float64 `json:"today_revenue"`
		OutstandingAmount float64 `json:"outstanding_amount"`
		AvgJobMinutes     float64 `json:"avg_job_minutes"`
		AppointmentStats  struct {
			Scheduled  int64 `json:"scheduled"`
			InProgress int64 `json:"in_progress"`
			Ready      int64 `json:"ready"`
			Completed  int64 `json:"completed"`
			Canceled   int64 `json:"canceled"`
			NoShow     int64 `json:"no_show"`
		} `json:"appointment_stats"`
		InvoiceStats struct {
			Unpaid        int64 `json:"unpaid"`
			PartiallyPaid int64 `json:"partially_paid"`
			Paid          int64 `json:"paid"`
		} `json:"invoice_stats"`
	}

	ac.DB.Model(&models.Appointment{}).Count(&stats.TotalAppointments)
	ac.DB.Model(&models.Appointment{}).Where("DATE(scheduled_at) = ?", today).Count(&stats.TodayAppointments)
	ac.DB.Model(&models.Customer{}).Count(&stats.TotalCustomers)

	ac.DB.Model(&models.Appointment{}).Where("status = ?", models.AppointmentStatusScheduled).Count(&stats.AppointmentStats.Scheduled)
	ac.DB.Model(&models.Appointment{}).Where("status = ?", models.AppointmentStatusInProgress).Count(&stats.AppointmentStats.InProgress)
	ac.DB.Model(&models.Appointment{}).Where("status = ?", models.AppointmentStatusReady).Count(&stats.AppointmentStats.Ready)
	ac.DB.Model(&models.Appointment{}).Where("status = ?", models.AppointmentStatusCompleted).Count(&stats.AppointmentStats.Completed)
	ac.DB.Model(&models.Appointment{}).Where("status = ?", models.AppointmentStatusCanceled).Count(&stats.AppointmentStats.Canceled)
	ac.DB.Model(&models.Appointment{}).Where("status = ?", models.AppointmentStatusNoShow).Count(&stats.AppointmentStats.NoShow)

	ac.DB.Model(&models.Invoice{}).Where("status = ?", models.InvoiceStatusUnpaid).Count(&stats.InvoiceStats.Unpaid)
	ac.DB.Model(&models.Invoice{}).Where("status = ?", models.InvoiceStatusPartiallyPaid).Count(&stats.InvoiceStats.PartiallyPaid)
	ac.DB.Model(&models.Invoice{}).Where("status = ?", models.InvoiceStatusPaid).Count(&stats.InvoiceStats.Paid)

	ac.DB.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.TotalRevenue)
	ac.DB.Model(&models.Payment{}).Where("DATE(paid_at) = ?", today).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.TodayRevenue)
	ac.DB.Model(&models.Invoice{}).Where("status IN ?", []string{models.InvoiceStatusUnpaid, models.InvoiceStatusPartiallyPaid}).
		Select("COALESCE(SUM(total - amount_paid), 0)").Row().Scan(&stats.OutstandingAmount)

	// Averaged in Go rather than SQL so it works on both the MySQL and
	// sqlite dialects.
	var finished []models.Appointment
	if err := ac.DB.Select("started_at", "finished_at").
		Where("status = ? AND started_at IS NOT NULL AND finished_at IS NOT NULL", models.AppointmentStatusCompleted).
		Find(&finished).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to load job durations: %v", err)
	} else if len(finished) > 0 {
		var totalMinutes float64
		for _, a := range finished {
			totalMinutes += a.FinishedAt.Sub(*a.StartedAt).Minutes()
		}
		stats.AvgJobMinutes = totalMinutes / float64(len(finished))
	}

	dispatch.BroadcastDashboardUpdate(stats)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"data": stats,
	})
}

// GetAnalytics -> revenue by day, top services and no-show rate over a
// window. ?days=30 (default 30, max 365)
func (ac *AdminController) GetAnalytics(c *gin.Context) {
	days := 30
	if d := c.Query("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 || parsed > 365 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("days must be between 1 and 365"))
			return
		}
		days = parsed
	}
	since := time.Now().AddDate(0, 0, -days)

	var analytics struct {
		Days         int `json:"days"`
		RevenueByDay []struct {
			Day     string  `json:"day"`
			Revenue float64 `json:"revenue"`
		} `json:"revenue_by_day"`
		TopServices []struct {
			ServiceID uint    `json:"service_id"`
			Name      string  `json:"name"`
			Bookings  int64   `json:"bookings"`
			Revenue   float64 `json:"revenue"`
		} `json:"top_services"`
		NoShowRate     float64 `json:"no_show_rate"`
		EmergencyShare float64 `json:"emergency_share"`
	}
	analytics.Days = days

	ac.DB.Model(&models.Payment{}).
		Where("paid_at >= ?", since).
		Select("DATE(paid_at) AS day, SUM(amount) AS revenue").
		Group("DATE(paid_at)").Order("day ASC").
		Scan(&analytics.RevenueByDay)

	ac.DB.Model(&models.AppointmentService{}).
		Joins("JOIN appointments ON appointments.id = appointment_services.appointment_id").
		Where("appointments.scheduled_at >= ? AND appointments.status = ?", since, models.AppointmentStatusCompleted).
		Select("appointment_services.service_id AS service_id, appointment_services.name AS name, COUNT(*) AS bookings, SUM(appointment_services.price) AS revenue").
		Group("appointment_services.service_id, appointment_services.name").
		Order("revenue DESC").Limit(10).
		Scan(&analytics.TopServices)

	var finished, noShows, emergencies int64
	ac.DB.Model(&models.Appointment{}).
		Where("scheduled_at >= ? AND status IN ?", since,
			[]string{models.AppointmentStatusCompleted, models.AppointmentStatusNoShow}).
		Count(&finished)
	ac.DB.Model(&models.Appointment{}).
		Where("scheduled_at >= ? AND status = ?", since, models.AppointmentStatusNoShow).
		Count(&noShows)
	if finished > 0 {
		analytics.NoShowRate = float64(noShows) / float64(finished)
	}

	var total int64
	ac.DB.Model(&models.Appointment{}).Where("scheduled_at >= ?", since).Count(&total)
	ac.DB.Model(&models.Appointment{}).Where("scheduled_at >= ? AND emergency = ?", since, true).Count(&emergencies)
	if total > 0 {
		analytics.EmergencyShare = float64(emergencies) / float64(total)
	}

	utils.RespondJSON(c, http.StatusOK, "Analytics", gin.H{
		"data": analytics,
	})
}

// ExportData -> CSV export of appointments with invoice state.
// ?from=YYYY-MM-DD&to=YYYY-MM-DD (defaults to the last 30 days)
func (ac *AdminController) ExportData(c *gin.Context) {
	from, to, err := parseReportRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var appointments []models.Appointment
	if err := ac.DB.Preload("Customer").Preload("Vehicle").Preload("Services").Preload("Invoice").
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Order("scheduled_at ASC").Find(&appointments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=appointments-%s-%s.csv", from.Format("20060102"), to.Format("20060102")))

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"id", "scheduled_at", "status", "customer", "phone", "vehicle",
		"services", "address", "emergency", "total", "invoice_number", "invoice_status", "amount_paid"})

	for _, a := range appointments {
		var serviceNames string
		for i, s := range a.Services {
			if i > 0 {
				serviceNames += "; "
			}
			serviceNames += s.Name
		}
		invoiceNumber, invoiceStatus, amountPaid := "", "", ""
		if a.Invoice != nil {
			invoiceNumber = a.Invoice.InvoiceNumber
			invoiceStatus = a.Invoice.Status
			amountPaid = fmt.Sprintf("%.2f", a.Invoice.AmountPaid)
		}
		w.Write([]string{
			strconv.FormatUint(uint64(a.ID), 10),
			a.ScheduledAt.Format(time.RFC3339),
			a.Status,
			a.Customer.FirstName + " " + a.Customer.LastName,
			a.Customer.Phone,
			fmt.Sprintf("%d %s %s", a.Vehicle.Year, a.Vehicle.Make, a.Vehicle.Model),
			serviceNames,
			a.Address,
			strconv.FormatBool(a.Emergency),
			fmt.Sprintf("%.2f", a.TotalAmount),
			invoiceNumber,
			invoiceStatus,
			amountPaid,
		})
	}
	w.Flush()

	utils.InfoLogger.Printf("CSV export %s to %s (%d rows)", from.Format("2006-01-02"), to.Format("2006-01-02"), len(appointments))
}

// ExportPDF -> summary report with a daily revenue chart.
func (ac *AdminController) ExportPDF(c *gin.Context) {
	from, to, err := parseReportRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var daily []struct {
		Day     time.Time
		Revenue float64
	}
	ac.DB.Model(&models.Payment{}).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Select("DATE(paid_at) AS day, SUM(amount) AS revenue").
		Group("DATE(paid_at)").Order("day ASC").
		Scan(&daily)

	var completed, noShows int64
	var revenue float64
	ac.DB.Model(&models.Appointment{}).
		Where("scheduled_at >= ? AND scheduled_at < ? AND status = ?", from, to, models.AppointmentStatusCompleted).
		Count(&completed)
	ac.DB.Model(&models.Appointment{}).
		Where("scheduled_at >= ? AND scheduled_at < ? AND status = ?", from, to, models.AppointmentStatusNoShow).
		Count(&noShows)
	ac.DB.Model(&models.Payment{}).Where("paid_at >= ? AND paid_at < ?", from, to).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&revenue)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Wrenchworks Mobile Repair")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Report %s to %s",
		from.Format("Jan 2, 2006"), to.AddDate(0, 0, -1).Format("Jan 2, 2006")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Revenue collected: %s", utils.FormatCurrencyUSD(revenue)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Completed jobs: %d", completed))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("No-shows: %d", noShows))
	pdf.Ln(10)

	// Revenue chart needs at least two data points to plot a line.
	if len(daily) >= 2 {
		xs := make([]time.Time, 0, len(daily))
		ys := make([]float64, 0, len(daily))
		for _, d := range daily {
			xs = append(xs, d.Day)
			ys = append(ys, d.Revenue)
		}

		graph := chart.Chart{
			Title:  "Daily revenue",
			Width:  800,
			Height: 300,
			Series: []chart.Series{
				chart.TimeSeries{
					Name:    "Revenue",
					XValues: xs,
					YValues: ys,
				},
			},
		}

		var buf bytes.Buffer
		if err := graph.Render(chart.PNG, &buf); err != nil {
			utils.ErrorLogger.Printf("Failed rendering revenue chart: %v", err)
		} else {
			pdf.RegisterImageOptionsReader("revenue-chart",
				fpdf.ImageOptions{ImageType: "PNG"}, &buf)
			pdf.ImageOptions("revenue-chart", 10, pdf.GetY(), 190, 0, false,
				fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=report-%s-%s.pdf", from.Format("20060102"), to.Format("20060102")))
	c.Header("Content-Type", "application/pdf")
	if err := pdf.Output(c.Writer); err != nil {
		utils.ErrorLogger.Printf("Failed writing report PDF: %v", err)
	}
}

// parseReportRange reads ?from/?to dates; to is exclusive end of day.
func parseReportRange(c *gin.Context) (time.Time, time.Time, error) {
	to := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -30)

	if f := c.Query("from"); f != "" {
		parsed, err := time.ParseInLocation("2006-01-02", f, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
		from = parsed
	}
	if t := c.Query("to"); t != "" {
		parsed, err := time.ParseInLocation("2006-01-02", t, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, errors.New("from must be before to")
	}
	return from, to, nil
}
