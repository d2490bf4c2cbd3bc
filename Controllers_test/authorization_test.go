package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/router"
	"github.com/wrenchworks/garage-app/utils"
)

func setupAuthzDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:authz_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Vehicle{},
		&models.ServiceCategory{},
		&models.Service{},
		&models.ServiceArea{},
		&models.Appointment{},
		&models.AppointmentService{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.MessageTemplate{},
		&models.NotificationLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func authzRequest(t *testing.T, r *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		assert.NoError(t, err)
		buf = bytes.NewBuffer(bodyBytes)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestServiceAreaMutationsAreAdminOnly(t *testing.T) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db := setupAuthzDB(t)
	r := router.SetupRouter(db)

	area := models.ServiceArea{Name: "Eastside", Zip: "30312"}
	db.Create(&area)

	mechToken, _ := utils.GenerateToken(7, "mechanic")
	staffToken, _ := utils.GenerateToken(8, "staff")
	adminToken, _ := utils.GenerateToken(9, "admin")

	w := authzRequest(t, r, http.MethodDelete, fmt.Sprintf("/admin/service-areas/%d", area.ID), mechToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	db.Model(&models.ServiceArea{}).Where("id = ?", area.ID).Count(&count)
	assert.EqualValues(t, 1, count, "area must survive the forbidden delete")

	w = authzRequest(t, r, http.MethodPost, "/admin/service-areas", staffToken, map[string]interface{}{
		"name": "Westside", "zip": "30318",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = authzRequest(t, r, http.MethodDelete, fmt.Sprintf("/admin/service-areas/%d", area.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogMutationsRequireStaff(t *testing.T) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db := setupAuthzDB(t)
	r := router.SetupRouter(db)

	mechToken, _ := utils.GenerateToken(7, "mechanic")
	staffToken, _ := utils.GenerateToken(8, "staff")

	w := authzRequest(t, r, http.MethodPost, "/admin/categories", mechToken, map[string]string{"name": "Forbidden Cat"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = authzRequest(t, r, http.MethodPost, "/admin/categories", staffToken, map[string]string{"name": "Suspension"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = authzRequest(t, r, http.MethodPost, "/admin/services", mechToken, map[string]interface{}{
		"category_id": 1, "name": "Sneaky Service", "price": 10.0, "duration_min": 30,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVoidInvoiceIsAdminOnly(t *testing.T) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db := setupAuthzDB(t)
	r := router.SetupRouter(db)

	customer := models.Customer{FirstName: "Noor", LastName: "Haddad", Phone: "5550107001"}
	db.Create(&customer)
	vehicle := models.Vehicle{CustomerID: customer.ID, Make: "Subaru", Model: "Outback", Year: 2020}
	db.Create(&vehicle)
	appointment := models.Appointment{
		CustomerID:       customer.ID,
		VehicleID:        vehicle.ID,
		Status:           models.AppointmentStatusCompleted,
		ScheduledAt:      time.Now().Add(-48 * time.Hour),
		DurationMin:      30,
		ConfirmationCode: "authz-void",
	}
	db.Create(&appointment)
	invoice := models.Invoice{
		InvoiceNumber: "INV/TEST/000001",
		AppointmentID: appointment.ID,
		CustomerID:    customer.ID,
		Subtotal:      50,
		Total:         50,
		Status:        models.InvoiceStatusUnpaid,
		IssuedAt:      time.Now(),
	}
	db.Create(&invoice)

	mechToken, _ := utils.GenerateToken(7, "mechanic")
	adminToken, _ := utils.GenerateToken(9, "admin")

	url := fmt.Sprintf("/admin/invoices/%d/void", invoice.ID)
	w := authzRequest(t, r, http.MethodPost, url, mechToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var reloaded models.Invoice
	db.First(&reloaded, invoice.ID)
	assert.Equal(t, models.InvoiceStatusUnpaid, reloaded.Status)

	w = authzRequest(t, r, http.MethodPost, url, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserListHidesPasswordHash(t *testing.T) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db := setupAuthzDB(t)
	r := router.SetupRouter(db)

	db.Create(&models.User{
		Name:     "Hash Holder",
		Email:    "hash@example.com",
		Password: "$2a$10$notarealhashnotarealhashnotarealha",
		Role:     "staff",
	})

	adminToken, _ := utils.GenerateToken(9, "admin")
	w := authzRequest(t, r, http.MethodGet, "/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$")

	var resp struct {
		Status bool                     `json:"status"`
		Data   []map[string]interface{} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data)
	for _, user := range resp.Data {
		_, leaked := user["password"]
		assert.False(t, leaked)
		_, leaked = user["Password"]
		assert.False(t, leaked)
		assert.NotEmpty(t, user["email"])
	}

	mechToken, _ := utils.GenerateToken(7, "mechanic")
	w = authzRequest(t, r, http.MethodGet, "/admin/users", mechToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGlobalRateLimiterTripsOnBurst(t *testing.T) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db := setupAuthzDB(t)
	r := router.SetupRouter(db)

	var limited int
	for i := 0; i < 60; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if i == 0 {
			assert.Equal(t, http.StatusOK, w.Code)
		}
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Greater(t, limited, 0, "a 60 request burst must hit the per-IP window")
}

func TestDashboardStatsAveragesJobDuration(t *testing.T) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db := setupAuthzDB(t)
	r := router.SetupRouter(db)

	customer := models.Customer{FirstName: "Len", LastName: "Okafor", Phone: "5550107002"}
	db.Create(&customer)
	vehicle := models.Vehicle{CustomerID: customer.ID, Make: "Kia", Model: "Sorento", Year: 2022}
	db.Create(&vehicle)

	base := time.Now().Add(-72 * time.Hour)
	for i, minutes := range []int{30, 60} {
		started := base.Add(time.Duration(i) * 4 * time.Hour)
		finished := started.Add(time.Duration(minutes) * time.Minute)
		db.Create(&models.Appointment{
			CustomerID:       customer.ID,
			VehicleID:        vehicle.ID,
			Status:           models.AppointmentStatusCompleted,
			ScheduledAt:      started,
			DurationMin:      minutes,
			ConfirmationCode: fmt.Sprintf("authz-avg-%d", i),
			StartedAt:        &started,
			FinishedAt:       &finished,
		})
	}

	staffToken, _ := utils.GenerateToken(8, "staff")
	w := authzRequest(t, r, http.MethodGet, "/admin/dashboard/stats", staffToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status bool `json:"status"`
		Data   struct {
			Data struct {
				AvgJobMinutes float64 `json:"avg_job_minutes"`
			} `json:"data"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 45.0, resp.Data.Data.AvgJobMinutes, 0.01)
}
