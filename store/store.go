// Package store persists patients, doctors, appointments and audit entries.
package store

import (
	"context"
	"fmt"

	"github.com/ariebrainware/hospital-booking/config"
	"github.com/ariebrainware/hospital-booking/model"
	"github.com/ariebrainware/hospital-booking/util"
)

const (
	BackendSQL   = "sql"
	BackendMongo = "mongo"
)

// Error messages shared by every backend.
const (
	msgPatientFieldsRequired     = "Missing required fields"
	msgAppointmentFieldsRequired = "All fields are required"
	msgPatientNotFound           = "Patient not found"
	msgAppointmentIDRequired     = "Appointment ID required"
)

// RecordStore is the persistence contract for the booking backend.
type RecordStore interface {
	// Initialize creates the schema and seeds doctors when none exist.
	Initialize(ctx context.Context) error
	CreatePatient(ctx context.Context, name, email string) (model.Patient, error)
	// FindPatientByName matches the stored name byte for byte.
	FindPatientByName(ctx context.Context, name string) (model.Patient, error)
	ListDoctors(ctx context.Context) ([]model.Doctor, error)
	// CreateAppointment books for an existing patient, looked up by name.
	CreateAppointment(ctx context.Context, req model.AppointmentRequest) (model.Booking, error)
	// ListAppointments returns appointments newest first.
	ListAppointments(ctx context.Context) ([]model.Appointment, error)
	// DeleteAppointment succeeds whether or not the id exists.
	DeleteAppointment(ctx context.Context, id uint) error
	RecordAudit(ctx context.Context, entry *model.AuditLog) error
	Ping(ctx context.Context) error
	Close() error
}

// New opens the backend selected by cfg.StoreBackend.
func New(ctx context.Context, cfg *config.Config) (RecordStore, error) {
	seed, err := model.DoctorSeed(cfg.DoctorSeed)
	if err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case "", BackendSQL:
		db, err := config.ConnectDatabase()
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, seed), nil
	case BackendMongo:
		client, database, err := config.ConnectMongo(ctx)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(client, database, seed), nil
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}
}

// validatePatient rejects empty values only. Names and emails are stored
// exactly as given.
func validatePatient(name, email string) error {
	if name == "" || email == "" {
		return util.NewValidationError(msgPatientFieldsRequired)
	}
	return nil
}

func validateAppointment(req model.AppointmentRequest) error {
	if req.Patient == "" || req.Doctor == "" || req.Date == "" || req.Time == "" {
		return util.NewValidationError(msgAppointmentFieldsRequired)
	}
	return nil
}
