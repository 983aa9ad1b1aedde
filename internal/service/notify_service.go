package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"os"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Indeera01/parkly-backend/internal/db"
)

const emailTimeFormat = "02 Jan 2006 15:04 MST"

var bookingEmailTmpl = template.Must(template.New("booking_email").Parse(`
<html>
  <body style="font-family: sans-serif; color: #333;">
    <h2>Your Parkly booking is {{.Status}}</h2>
    <p>Booking reference: <strong>{{.BookingID}}</strong></p>
    <p>{{.SpaceTitle}}<br>{{.SpaceAddress}}</p>
    <p>
      From: {{.StartFormatted}}<br>
      To: {{.EndFormatted}}<br>
      Vehicles: {{.VehicleCount}}<br>
      Total: LKR {{printf "%.2f" .TotalPrice}}
    </p>
    <p>Parkly. All rights reserved. {{.CurrentYear}}</p>
  </body>
</html>`))

type bookingEmailData struct {
	Status         string
	BookingID      string
	SpaceTitle     string
	SpaceAddress   string
	StartFormatted string
	EndFormatted   string
	VehicleCount   int
	TotalPrice     float64
	CurrentYear    int
}

// NotifyService sends booking lifecycle emails through SendGrid. Delivery is
// asynchronous and best effort: a failed send is logged, never surfaced to
// the booking flow.
type NotifyService struct {
	apiKey    string
	fromEmail string
	fromName  string
	// toEmail resolves the recipient address for an actor id; identity
	// lives outside this service.
	toEmail func(userID string) (string, error)
}

func NewNotifyService(toEmail func(userID string) (string, error)) *NotifyService {
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Parkly"
	}
	return &NotifyService{
		apiKey:    os.Getenv("SENDGRID_API_KEY"),
		fromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
		fromName:  fromName,
		toEmail:   toEmail,
	}
}

func (n *NotifyService) BookingConfirmed(booking *db.Booking, space *db.ParkingSpace) {
	n.send(booking, space, "confirmed")
}

func (n *NotifyService) BookingCancelled(booking *db.Booking, space *db.ParkingSpace) {
	n.send(booking, space, booking.Status)
}

func (n *NotifyService) send(booking *db.Booking, space *db.ParkingSpace, status string) {
	if n.apiKey == "" || n.fromEmail == "" {
		log.Println("sendgrid not configured, skipping booking email")
		return
	}

	data := bookingEmailData{
		Status:         status,
		BookingID:      booking.ID,
		SpaceTitle:     space.Title,
		SpaceAddress:   space.Address,
		StartFormatted: booking.StartTime.Format(emailTimeFormat),
		EndFormatted:   booking.EndTime.Format(emailTimeFormat),
		VehicleCount:   booking.VehicleCount,
		TotalPrice:     booking.TotalPrice,
		CurrentYear:    time.Now().Year(),
	}

	subject := fmt.Sprintf("Your Parkly booking is %s - %s", status, space.Title)
	plainBody := fmt.Sprintf(
		"Your Parkly booking is %s.\n\n"+
			"Booking reference: %s\n"+
			"Space: %s (%s)\n"+
			"From: %s\n"+
			"To: %s\n"+
			"Vehicles: %d\n"+
			"Total: LKR %.2f\n\n"+
			"Thank you for using Parkly.",
		status, booking.ID, space.Title, space.Address,
		data.StartFormatted, data.EndFormatted, booking.VehicleCount, booking.TotalPrice,
	)

	var htmlBody bytes.Buffer
	if err := bookingEmailTmpl.Execute(&htmlBody, data); err != nil {
		log.Printf("render booking email for %s: %v", booking.ID, err)
		return
	}

	userID := booking.UserID
	go func() {
		to, err := n.toEmail(userID)
		if err != nil {
			log.Printf("resolve email for user %s: %v", userID, err)
			return
		}
		from := mail.NewEmail(n.fromName, n.fromEmail)
		message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), plainBody, htmlBody.String())
		client := sendgrid.NewSendClient(n.apiKey)
		resp, err := client.Send(message)
		if err != nil {
			log.Printf("send booking email for %s: %v", booking.ID, err)
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Printf("sendgrid returned %d for booking %s: %s", resp.StatusCode, booking.ID, resp.Body)
		}
	}()
}
