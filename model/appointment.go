package model

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

// StatusBooked is the only status ever written; cancellation is a delete.
const StatusBooked AppointmentStatus = "Booked"

// Appointment references patient and doctor by name, not by id. Renaming or
// removing either leaves existing appointments untouched.
type Appointment struct {
	ID        uint              `json:"id" gorm:"primaryKey" bson:"_id"`
	Patient   string            `json:"patient" gorm:"column:patient;type:varchar(191);not null" bson:"patient"`
	Doctor    string            `json:"doctor" gorm:"column:doctor;type:varchar(191);not null" bson:"doctor"`
	Date      string            `json:"date" gorm:"column:date;type:varchar(32);not null" bson:"date"`
	Time      string            `json:"time" gorm:"column:time;type:varchar(32);not null" bson:"time"`
	Status    AppointmentStatus `json:"status" gorm:"column:status;type:varchar(32);not null" bson:"status"`
	CreatedAt time.Time         `json:"-" gorm:"column:created_at;autoCreateTime" bson:"created_at"`
}

// AppointmentRequest carries the fields needed to book an appointment.
type AppointmentRequest struct {
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// Booking is the result of a successful booking: the stored appointment plus
// the email of the patient it was booked for.
type Booking struct {
	Appointment  Appointment
	PatientEmail string
}
