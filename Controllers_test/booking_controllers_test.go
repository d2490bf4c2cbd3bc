package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/controllers"
	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/utils"
)

func setupTestDBForBookings() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:bookings_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.Customer{},
		&models.Vehicle{},
		&models.ServiceCategory{},
		&models.Service{},
		&models.ServiceArea{},
		&models.Appointment{},
		&models.AppointmentService{},
	)
	if err != nil {
		panic(err)
	}
	return db
}

func seedBookingCatalog(db *gorm.DB) uint {
	category := models.ServiceCategory{Name: "Roadside"}
	db.Create(&category)
	svc := models.Service{
		CategoryID:  category.ID,
		Name:        "Battery Replacement",
		Price:       149.00,
		DurationMin: 60,
		Active:      true,
	}
	db.Create(&svc)
	db.Create(&models.ServiceArea{Name: "Downtown", Zip: "30301", EmergencyCovered: true})
	db.Create(&models.ServiceArea{Name: "Suburbs", Zip: "30339", EmergencyCovered: false})
	return svc.ID
}

func setupBookingRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	bookingCtrl := controllers.NewBookingController(db)
	router.GET("/availability", bookingCtrl.GetAvailability)
	router.POST("/bookings", bookingCtrl.CreateBooking)
	router.GET("/bookings/:code", bookingCtrl.GetBookingByCode)
	return router
}

func TestPublicBookingFlow(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForBookings()
	serviceID := seedBookingCatalog(db)
	router := setupBookingRouter(db)

	day := time.Now().AddDate(0, 0, 3)
	scheduledAt := time.Date(day.Year(), day.Month(), day.Day(), 10, 0, 0, 0, time.Local)

	payload := map[string]interface{}{
		"first_name":   "Noor",
		"last_name":    "Haddad",
		"phone":        "(555) 010-9911",
		"make":         "Mazda",
		"model":        "CX-5",
		"year":         2022,
		"service_ids":  []uint{serviceID},
		"scheduled_at": scheduledAt.Format(time.RFC3339),
		"address":      "400 Peach Ave",
		"zip":          "30301",
	}
	payloadBytes, err := json.Marshal(payload)
	assert.NoError(t, err)

	req, _ := http.NewRequest("POST", "/bookings", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var createResp map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &createResp)
	assert.NoError(t, err)
	data := createResp["data"].(map[string]interface{})
	code, ok := data["confirmation_code"].(string)
	assert.True(t, ok)
	assert.NotEmpty(t, code)

	// Confirmation page lookup
	req, _ = http.NewRequest("GET", "/bookings/"+code, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var getResp map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &getResp)
	assert.NoError(t, err)
	detail := getResp["data"].(map[string]interface{})
	assert.Equal(t, "scheduled", detail["status"])
	assert.Equal(t, float64(60), detail["duration_min"])

	// Same phone books again: no duplicate customer row.
	var customerCount int64
	db.Model(&models.Customer{}).Where("phone = ?", "5550109911").Count(&customerCount)
	assert.Equal(t, int64(1), customerCount)
}

func TestBookingRejectsUncoveredZip(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForBookings()
	serviceID := seedBookingCatalog(db)
	router := setupBookingRouter(db)

	payload := map[string]interface{}{
		"first_name":   "Omar",
		"last_name":    "Diallo",
		"phone":        "5550103344",
		"make":         "Kia",
		"model":        "Sorento",
		"year":         2020,
		"service_ids":  []uint{serviceID},
		"scheduled_at": time.Now().Add(96 * time.Hour).Format(time.RFC3339),
		"address":      "9 Far Away Rd",
		"zip":          "99999",
	}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/bookings", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBookingRejectsEmergencyOutsideEmergencyArea(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForBookings()
	serviceID := seedBookingCatalog(db)
	router := setupBookingRouter(db)

	payload := map[string]interface{}{
		"first_name":   "Gwen",
		"last_name":    "Baker",
		"phone":        "5550105566",
		"make":         "Jeep",
		"model":        "Wrangler",
		"year":         2017,
		"service_ids":  []uint{serviceID},
		"scheduled_at": time.Now().Add(120 * time.Hour).Format(time.RFC3339),
		"address":      "77 Oak Ln",
		"zip":          "30339",
		"emergency":    true,
	}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/bookings", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAvailabilityExcludesBookedWindow(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForBookings()
	seedBookingCatalog(db)
	router := setupBookingRouter(db)

	day := time.Now().AddDate(0, 0, 10)
	booked := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local)

	customer := models.Customer{FirstName: "Ann", LastName: "Cole", Phone: "5550107777"}
	db.Create(&customer)
	vehicle := models.Vehicle{CustomerID: customer.ID, Make: "BMW", Model: "X3", Year: 2021}
	db.Create(&vehicle)
	db.Create(&models.Appointment{
		CustomerID:       customer.ID,
		VehicleID:        vehicle.ID,
		Status:           models.AppointmentStatusScheduled,
		ScheduledAt:      booked,
		DurationMin:      60,
		ConfirmationCode: "availability-test",
	})

	req, _ := http.NewRequest("GET", "/availability?date="+day.Format("2006-01-02")+"&duration=30", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	slots := data["slots"].([]interface{})
	assert.NotEmpty(t, slots)

	for _, raw := range slots {
		slot := raw.(map[string]interface{})
		start, err := time.Parse(time.RFC3339, slot["start"].(string))
		assert.NoError(t, err)
		// Nothing may start inside the 9:00-10:00 booked window.
		assert.False(t, !start.Before(booked) && start.Before(booked.Add(60*time.Minute)),
			"slot %s overlaps booked window", slot["start"])
	}
}
