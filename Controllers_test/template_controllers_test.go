package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
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

func setupTestDBForTemplates() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:templates_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.Customer{},
		&models.Vehicle{},
		&models.Appointment{},
		&models.AppointmentService{},
		&models.MessageTemplate{},
		&models.NotificationLog{},
	)
	if err != nil {
		panic(err)
	}
	return db
}

func setupTemplateRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	templateCtrl := controllers.NewTemplateController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	router.POST("/templates", templateCtrl.CreateTemplate)
	router.POST("/templates/:template_id/preview", templateCtrl.PreviewTemplate)
	router.POST("/notifications", notificationCtrl.SendNotification)
	router.GET("/notifications", notificationCtrl.GetAllNotifications)
	return router
}

func TestTemplatePreviewRendersPlaceholders(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTemplates()
	router := setupTemplateRouter(db)

	customer := models.Customer{FirstName: "Mira", LastName: "Vance", Phone: "5550301111"}
	db.Create(&customer)
	vehicle := models.Vehicle{CustomerID: customer.ID, Make: "Volvo", Model: "XC60", Year: 2023}
	db.Create(&vehicle)
	scheduledAt := time.Date(2026, 9, 14, 14, 30, 0, 0, time.Local)
	appointment := models.Appointment{
		CustomerID:       customer.ID,
		VehicleID:        vehicle.ID,
		Status:           models.AppointmentStatusScheduled,
		ScheduledAt:      scheduledAt,
		DurationMin:      45,
		TotalAmount:      119.50,
		ConfirmationCode: "preview-test",
	}
	db.Create(&appointment)
	db.Create(&models.AppointmentService{
		AppointmentID: appointment.ID, ServiceID: 1, Name: "Tire Rotation", Price: 119.50, DurationMin: 45,
	})

	createPayload := map[string]string{
		"name":    "reminder_basic",
		"channel": "sms",
		"body":    "Hi {{first_name}}, your {{vehicle}} is booked for {{services}} on {{appointment_date}} at {{appointment_time}}. Total: {{total}}.",
	}
	payloadBytes, _ := json.Marshal(createPayload)
	req, _ := http.NewRequest("POST", "/templates", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &created)
	templateID := int(created["data"].(map[string]interface{})["id"].(float64))

	previewPayload := map[string]interface{}{
		"customer_id":    customer.ID,
		"appointment_id": appointment.ID,
	}
	payloadBytes, _ = json.Marshal(previewPayload)
	req, _ = http.NewRequest("POST", fmt.Sprintf("/templates/%d/preview", templateID), bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	body := resp["data"].(map[string]interface{})["body"].(string)

	assert.Contains(t, body, "Hi Mira")
	assert.Contains(t, body, "2023 Volvo XC60")
	assert.Contains(t, body, "Tire Rotation")
	assert.Contains(t, body, "2:30 PM")
	assert.Contains(t, body, "$119.50")
	assert.False(t, strings.Contains(body, "{{"), "unresolved placeholder in %q", body)
}

func TestManualNotificationIsLogged(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTemplates()
	router := setupTemplateRouter(db)

	customer := models.Customer{FirstName: "Theo", LastName: "Lindqvist", Phone: "5550302222"}
	db.Create(&customer)

	payload := map[string]interface{}{
		"customer_id": customer.ID,
		"body":        "Your part arrived, call us to reschedule.",
		"channel":     "sms",
	}
	payloadBytes, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/notifications", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "manual", data["kind"])
	assert.Equal(t, "sent", data["status"])
	assert.Equal(t, "Your part arrived, call us to reschedule.", data["rendered_body"])

	// And it shows up in the history filter.
	req, _ = http.NewRequest("GET", fmt.Sprintf("/notifications?customer_id=%d", customer.ID), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var history map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &history)
	entries := history["data"].([]interface{})
	assert.Len(t, entries, 1)
}
