package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/ariebrainware/hospital-booking/model"
)

const ConfirmationSubject = "Appointment Confirmation"

var confirmationHTML = template.Must(template.New("confirmation").Parse(`
<h3>Appointment Confirmed</h3>
<p>Patient: {{.Patient}}</p>
<p>Doctor: {{.Doctor}}</p>
<p>Date: {{.Date}}</p>
<p>Time: {{.Time}}</p>
`))

// BookingConfirmation renders the confirmation email for a booking.
func BookingConfirmation(b model.Booking) (Message, error) {
	var html bytes.Buffer
	if err := confirmationHTML.Execute(&html, b.Appointment); err != nil {
		return Message{}, fmt.Errorf("render confirmation: %w", err)
	}

	a := b.Appointment
	text := fmt.Sprintf("Appointment Confirmed\n\nPatient: %s\nDoctor: %s\nDate: %s\nTime: %s\n", a.Patient, a.Doctor, a.Date, a.Time)

	return Message{
		To:      b.PatientEmail,
		Subject: ConfirmationSubject,
		HTML:    html.String(),
		Text:    text,
	}, nil
}
