package config

import (
	"fmt"
	"os"
	"strconv"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitDB opens the MySQL connection from DB_* environment variables.
func InitDB() (*gorm.DB, error) {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "3306")
	user := getEnv("DB_USER", "root")
	pass := os.Getenv("DB_PASS")
	name := getEnv("DB_NAME", "garage_app")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, name)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// TaxRate returns the invoice tax rate, e.g. 0.0825. Default 0.
func TaxRate() float64 {
	raw := os.Getenv("TAX_RATE")
	if raw == "" {
		return 0
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate < 0 {
		return 0
	}
	return rate
}

// BusinessHours returns the open and close hour for slot generation.
func BusinessHours() (openHour, closeHour int) {
	openHour = getEnvInt("SHOP_OPEN_HOUR", 8)
	closeHour = getEnvInt("SHOP_CLOSE_HOUR", 18)
	if closeHour <= openHour {
		openHour, closeHour = 8, 18
	}
	return openHour, closeHour
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
