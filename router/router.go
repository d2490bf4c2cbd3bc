package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/controllers"
	"github.com/wrenchworks/garage-app/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	// Gin freezes each route's handler chain at registration, so the
	// global limiter has to be attached before any route below.
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	userCtrl := controllers.NewUserController(db)
	customerCtrl := controllers.NewCustomerController(db)
	vehicleCtrl := controllers.NewVehicleController(db)
	categoryCtrl := controllers.NewServiceCategoryController(db)
	serviceCtrl := controllers.NewServiceController(db)
	areaCtrl := controllers.NewServiceAreaController(db)
	catalogCtrl := controllers.NewCatalogController()
	appointmentCtrl := controllers.NewAppointmentController(db)
	bookingCtrl := controllers.NewBookingController(db)
	invoiceCtrl := controllers.NewInvoiceController(db)
	paymentCtrl := controllers.NewPaymentController(db)
	templateCtrl := controllers.NewTemplateController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	adminCtrl := controllers.NewAdminController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter for login/register and the public booking form
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
		public.POST("/bookings", bookingCtrl.CreateBooking)
	}

	// Marketing site data, no auth
	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.GET("/services", serviceCtrl.GetAllServices)
	r.GET("/services/by-category", serviceCtrl.GetServicesByCategory)
	r.GET("/service-areas", areaCtrl.GetAllServiceAreas)
	r.GET("/service-areas/check", areaCtrl.CheckCoverage)

	// Vehicle pickers for the booking form
	r.GET("/catalog/makes", catalogCtrl.GetMakes)
	r.GET("/catalog/models", catalogCtrl.GetModels)
	r.GET("/catalog/years", catalogCtrl.GetYears)

	// Booking flow
	r.GET("/availability", bookingCtrl.GetAvailability)
	r.GET("/bookings/:code", bookingCtrl.GetBookingByCode)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.EnhancedAuthMiddleware())

	adminOnly := middlewares.RequireRoles("admin")
	staffOnly := middlewares.RequireRoles("staff")

	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)
	auth.POST("/logout", userCtrl.Logout)

	// CUSTOMERS
	auth.GET("/customers", customerCtrl.GetAllCustomers)
	auth.GET("/customers/lookup", customerCtrl.LookupByPhone)
	auth.POST("/customers", customerCtrl.CreateCustomer)
	auth.GET("/customers/:customer_id", customerCtrl.GetCustomerByID)
	auth.PATCH("/customers/:customer_id", customerCtrl.UpdateCustomer)
	auth.DELETE("/customers/:customer_id", customerCtrl.DeleteCustomer)

	// VEHICLES
	auth.GET("/customers/:customer_id/vehicles", vehicleCtrl.GetCustomerVehicles)
	auth.POST("/customers/:customer_id/vehicles", vehicleCtrl.CreateVehicle)
	auth.GET("/vehicles/:vehicle_id", vehicleCtrl.GetVehicleByID)
	auth.PATCH("/vehicles/:vehicle_id", vehicleCtrl.UpdateVehicle)
	auth.DELETE("/vehicles/:vehicle_id", vehicleCtrl.DeleteVehicle)

	// SERVICE CATALOG, mutations are staff and up
	auth.POST("/categories", staffOnly, categoryCtrl.CreateCategory)
	auth.PATCH("/categories/:cat_id", staffOnly, categoryCtrl.UpdateCategory)
	auth.DELETE("/categories/:cat_id", staffOnly, categoryCtrl.DeleteCategory)

	auth.GET("/services", serviceCtrl.GetAllServices)
	auth.POST("/services", staffOnly, serviceCtrl.CreateService)
	auth.GET("/services/:service_id", serviceCtrl.GetServiceByID)
	auth.PATCH("/services/:service_id", staffOnly, serviceCtrl.UpdateService)
	auth.DELETE("/services/:service_id", staffOnly, serviceCtrl.DeleteService)

	// SERVICE AREAS, admin only
	auth.POST("/service-areas", adminOnly, areaCtrl.CreateServiceArea)
	auth.PATCH("/service-areas/:area_id", adminOnly, areaCtrl.UpdateServiceArea)
	auth.DELETE("/service-areas/:area_id", adminOnly, areaCtrl.DeleteServiceArea)

	// APPOINTMENTS
	auth.GET("/appointments", appointmentCtrl.GetAllAppointments)
	auth.POST("/appointments", appointmentCtrl.CreateAppointment)
	auth.GET("/appointments/:appointment_id", appointmentCtrl.GetAppointmentByID)
	auth.PATCH("/appointments/:appointment_id", appointmentCtrl.UpdateAppointment)
	auth.PATCH("/appointments/:appointment_id/status", appointmentCtrl.UpdateAppointmentStatus)
	auth.DELETE("/appointments/:appointment_id", appointmentCtrl.DeleteAppointment)

	// INVOICES, invoice mutations go through the audit logger
	invoiceGroup := auth.Group("/")
	invoiceGroup.Use(middlewares.InvoiceLoggerMiddleware())
	{
		invoiceGroup.POST("/appointments/:appointment_id/invoice", invoiceCtrl.GenerateInvoice)
		invoiceGroup.POST("/invoices/:invoice_id/void", adminOnly, invoiceCtrl.VoidInvoice)
		invoiceGroup.POST("/invoices/:invoice_id/payments", paymentCtrl.CreatePayment)
	}
	auth.GET("/invoices", invoiceCtrl.GetAllInvoices)
	auth.GET("/invoices/:invoice_id", invoiceCtrl.GetInvoiceByID)
	auth.GET("/invoices/:invoice_id/pdf", invoiceCtrl.GetInvoicePDF)

	// PAYMENTS
	auth.GET("/invoices/:invoice_id/payments", paymentCtrl.GetInvoicePayments)
	auth.DELETE("/payments/:payment_id", adminOnly, paymentCtrl.DeletePayment)

	// MESSAGE TEMPLATES
	auth.GET("/templates", templateCtrl.GetAllTemplates)
	auth.POST("/templates", templateCtrl.CreateTemplate)
	auth.GET("/templates/:template_id", templateCtrl.GetTemplateByID)
	auth.PATCH("/templates/:template_id", templateCtrl.UpdateTemplate)
	auth.DELETE("/templates/:template_id", templateCtrl.DeleteTemplate)
	auth.POST("/templates/:template_id/preview", templateCtrl.PreviewTemplate)

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetAllNotifications)
	auth.POST("/notifications", notificationCtrl.SendNotification)
	auth.GET("/notifications/:notification_id", notificationCtrl.GetNotificationByID)

	// DASHBOARD / REPORTS
	auth.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	auth.GET("/analytics", adminCtrl.GetAnalytics)
	auth.GET("/reports/export", adminCtrl.ExportData)
	auth.GET("/reports/export-pdf", adminCtrl.ExportPDF)

	// Live schedule board
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.EnhancedAuthMiddleware(), middlewares.RoleCheck())
	{
		wsGroup.GET("/:role", controllers.DispatchHandler)
	}

	return r
}
