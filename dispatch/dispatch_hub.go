package dispatch

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/wrenchworks/garage-app/models"
)

// Event types
const (
	EventAppointmentUpdate  = "appointment_update"
	EventAppointmentCreated = "appointment_created"
	EventScheduleUpdate     = "schedule_update"
	EventInvoiceUpdate      = "invoice_generated"
	EventPaymentUpdate      = "payment_update"
	EventNotificationSent   = "notification_sent"
	EventStaffNotif         = "staff_notification"
	EventDashboardUpdate    = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// DispatchHub holds every connected dashboard client (admin, staff,
// mechanic) for live schedule updates.
type DispatchHub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var dispatchHub = DispatchHub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection to the hub with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	dispatchHub.mutex.Lock()
	defer dispatchHub.mutex.Unlock()
	dispatchHub.clients[conn] = role
}

// UnregisterClient drops a connection.
func UnregisterClient(conn *websocket.Conn) {
	dispatchHub.mutex.Lock()
	defer dispatchHub.mutex.Unlock()
	delete(dispatchHub.clients, conn)
	conn.Close()
}

// BroadcastAppointmentUpdate pushes an appointment change to every client.
func BroadcastAppointmentUpdate(appointment models.Appointment) {
	broadcast(Message{
		Event: EventAppointmentUpdate,
		Data:  appointment,
	})
}

// BroadcastAppointmentCreated announces a new booking.
func BroadcastAppointmentCreated(appointment models.Appointment) {
	broadcast(Message{
		Event: EventAppointmentCreated,
		Data:  appointment,
	})
}

// BroadcastInvoiceUpdate announces a generated or changed invoice.
func BroadcastInvoiceUpdate(invoice models.Invoice) {
	broadcast(Message{
		Event: EventInvoiceUpdate,
		Data:  invoice,
	})
}

// BroadcastPaymentUpdate announces a payment posted against an invoice.
func BroadcastPaymentUpdate(payment models.Payment, invoice models.Invoice) {
	broadcast(Message{
		Event: EventPaymentUpdate,
		Data: map[string]interface{}{
			"payment": payment,
			"invoice": invoice,
		},
	})
}

// BroadcastNotificationSent announces a customer message going out.
func BroadcastNotificationSent(entry models.NotificationLog) {
	broadcast(Message{
		Event: EventNotificationSent,
		Data:  entry,
	})
}

// BroadcastStaffNotification pushes a plain text notice to the dashboard.
func BroadcastStaffNotification(message string) {
	broadcast(Message{
		Event: EventStaffNotif,
		Data:  message,
	})
}

// BroadcastDashboardUpdate pushes refreshed dashboard stats.
func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{
		Event: EventDashboardUpdate,
		Data:  data,
	})
}

// BroadcastMessage broadcasts an arbitrary message.
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

func broadcast(msg Message) {
	dispatchHub.mutex.Lock()
	defer dispatchHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, role := range dispatchHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending %s message to %s client: %v", msg.Event, role, err)
			continue
		}
	}
}
