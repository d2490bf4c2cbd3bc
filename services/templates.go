package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/wrenchworks/garage-app/models"
	"github.com/wrenchworks/garage-app/utils"
)

// Placeholders supported in MessageTemplate bodies and subjects:
//
//	{{customer_name}} {{first_name}} {{appointment_date}}
//	{{appointment_time}} {{vehicle}} {{services}} {{total}}
//	{{confirmation_code}} {{address}} {{shop_name}}
func RenderTemplate(tpl *models.MessageTemplate, customer *models.Customer, appointment *models.Appointment) (subject, body string) {
	shopName := os.Getenv("SHOP_NAME")
	if shopName == "" {
		shopName = "Wrenchworks Mobile Repair"
	}

	pairs := []string{
		"{{shop_name}}", shopName,
		"{{customer_name}}", strings.TrimSpace(customer.FirstName + " " + customer.LastName),
		"{{first_name}}", customer.FirstName,
	}

	if appointment != nil {
		var serviceNames []string
		for _, s := range appointment.Services {
			serviceNames = append(serviceNames, s.Name)
		}
		pairs = append(pairs,
			"{{appointment_date}}", appointment.ScheduledAt.Format("Monday, January 2"),
			"{{appointment_time}}", appointment.ScheduledAt.Format("3:04 PM"),
			"{{vehicle}}", fmt.Sprintf("%d %s %s", appointment.Vehicle.Year, appointment.Vehicle.Make, appointment.Vehicle.Model),
			"{{services}}", strings.Join(serviceNames, ", "),
			"{{total}}", utils.FormatCurrencyUSD(appointment.TotalAmount),
			"{{confirmation_code}}", appointment.ConfirmationCode,
			"{{address}}", appointment.Address,
		)
	}

	replacer := strings.NewReplacer(pairs...)
	return replacer.Replace(tpl.Subject), replacer.Replace(tpl.Body)
}
