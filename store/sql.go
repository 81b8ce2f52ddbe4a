package store

import (
	"context"
	"errors"

	"github.com/ariebrainware/hospital-booking/model"
	"github.com/ariebrainware/hospital-booking/util"
	"gorm.io/gorm"
)

// SQLStore is the gorm-backed RecordStore used with sqlite, MySQL and PostgreSQL.
type SQLStore struct {
	db   *gorm.DB
	seed []model.Doctor
}

// NewSQLStore wraps an open gorm connection. seed is inserted by Initialize
// when the doctors table is empty.
func NewSQLStore(db *gorm.DB, seed []model.Doctor) *SQLStore {
	return &SQLStore{db: db, seed: seed}
}

func (s *SQLStore) Initialize(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&model.Patient{}, &model.Doctor{}, &model.Appointment{}, &model.AuditLog{}); err != nil {
		return util.NewInternalError("failed to migrate schema", err)
	}
	if err := model.SeedDoctors(db, s.seed); err != nil {
		return util.NewInternalError("failed to seed doctors", err)
	}
	return nil
}

func (s *SQLStore) CreatePatient(ctx context.Context, name, email string) (model.Patient, error) {
	if err := validatePatient(name, email); err != nil {
		return model.Patient{}, err
	}

	patient := model.Patient{Name: name, Email: email}
	if err := s.db.WithContext(ctx).Create(&patient).Error; err != nil {
		return model.Patient{}, util.NewInternalError("failed to create patient", err)
	}
	return patient, nil
}

func (s *SQLStore) FindPatientByName(ctx context.Context, name string) (model.Patient, error) {
	return findPatientByName(s.db.WithContext(ctx), name)
}

func findPatientByName(db *gorm.DB, name string) (model.Patient, error) {
	if name == "" {
		return model.Patient{}, util.NewNotFoundError(msgPatientNotFound)
	}

	var patient model.Patient
	err := db.Where("name = ?", name).Order("id ASC").First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Patient{}, util.NewNotFoundError(msgPatientNotFound)
	}
	if err != nil {
		return model.Patient{}, util.NewInternalError("failed to look up patient", err)
	}
	return patient, nil
}

func (s *SQLStore) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	doctors := []model.Doctor{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&doctors).Error; err != nil {
		return nil, util.NewInternalError("failed to list doctors", err)
	}
	return doctors, nil
}

func (s *SQLStore) CreateAppointment(ctx context.Context, req model.AppointmentRequest) (model.Booking, error) {
	if err := validateAppointment(req); err != nil {
		return model.Booking{}, err
	}

	var booking model.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		patient, err := findPatientByName(tx, req.Patient)
		if err != nil {
			return err
		}

		appointment := model.Appointment{
			Patient: req.Patient,
			Doctor:  req.Doctor,
			Date:    req.Date,
			Time:    req.Time,
			Status:  model.StatusBooked,
		}
		if err := tx.Create(&appointment).Error; err != nil {
			return util.NewInternalError("failed to create appointment", err)
		}

		booking = model.Booking{Appointment: appointment, PatientEmail: patient.Email}
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

func (s *SQLStore) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	appointments := []model.Appointment{}
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&appointments).Error; err != nil {
		return nil, util.NewInternalError("failed to list appointments", err)
	}
	return appointments, nil
}

func (s *SQLStore) DeleteAppointment(ctx context.Context, id uint) error {
	if id == 0 {
		return util.NewValidationError(msgAppointmentIDRequired)
	}
	if err := s.db.WithContext(ctx).Delete(&model.Appointment{}, id).Error; err != nil {
		return util.NewInternalError("failed to delete appointment", err)
	}
	return nil
}

func (s *SQLStore) RecordAudit(ctx context.Context, entry *model.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
