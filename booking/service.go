// Package booking holds the protected operations of the hospital backend.
// Every method takes the caller's auth.Principal and refuses anonymous
// callers before touching the record store.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/ariebrainware/hospital-booking/auth"
	"github.com/ariebrainware/hospital-booking/model"
	"github.com/ariebrainware/hospital-booking/notify"
	"github.com/ariebrainware/hospital-booking/store"
	"github.com/ariebrainware/hospital-booking/util"
	"github.com/rs/zerolog/log"
)

const defaultNotifyTimeout = 10 * time.Second

// Caller describes where a request came from, for the audit trail.
type Caller struct {
	IP        string
	UserAgent string
}

type Service struct {
	store         store.RecordStore
	gateway       notify.Gateway
	notifyTimeout time.Duration
}

func NewService(s store.RecordStore, g notify.Gateway, notifyTimeout time.Duration) *Service {
	if g == nil {
		g = notify.Noop{}
	}
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &Service{store: s, gateway: g, notifyTimeout: notifyTimeout}
}

func (s *Service) CreatePatient(ctx context.Context, p auth.Principal, caller Caller, name, email string) (model.Patient, error) {
	if err := p.Require(); err != nil {
		return model.Patient{}, err
	}

	patient, err := s.store.CreatePatient(ctx, name, email)
	if err != nil {
		return model.Patient{}, err
	}

	util.LogAuditEvent(util.AuditEvent{
		EventType: util.EventPatientCreated,
		Actor:     p.Identity.Email,
		IP:        caller.IP,
		UserAgent: caller.UserAgent,
		Message:   "Patient registered",
		Details:   map[string]interface{}{"patient_id": patient.ID},
	})
	return patient, nil
}

func (s *Service) ListDoctors(ctx context.Context, p auth.Principal) ([]model.Doctor, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	return s.store.ListDoctors(ctx)
}

// BookAppointment stores the appointment and then sends the confirmation
// email once. The notification result never changes the booking outcome.
func (s *Service) BookAppointment(ctx context.Context, p auth.Principal, caller Caller, req model.AppointmentRequest) (model.Booking, notify.Result, error) {
	if err := p.Require(); err != nil {
		return model.Booking{}, notify.Result{}, err
	}

	booking, err := s.store.CreateAppointment(ctx, req)
	if err != nil {
		return model.Booking{}, notify.Result{}, err
	}

	util.LogAuditEvent(util.AuditEvent{
		EventType: util.EventAppointmentBooked,
		Actor:     p.Identity.Email,
		IP:        caller.IP,
		UserAgent: caller.UserAgent,
		Message:   "Appointment booked",
		Details: map[string]interface{}{
			"appointment_id": booking.Appointment.ID,
			"doctor":         booking.Appointment.Doctor,
			"date":           booking.Appointment.Date,
			"time":           booking.Appointment.Time,
		},
	})

	result := s.notifyBooked(ctx, booking)
	return booking, result, nil
}

func (s *Service) notifyBooked(ctx context.Context, booking model.Booking) notify.Result {
	msg, err := notify.BookingConfirmation(booking)
	if err != nil {
		return notify.Failed(err.Error())
	}

	// detached from request cancellation, bounded by notifyTimeout
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	result := s.send(ctx, msg)
	logger := log.With().Uint("appointment_id", booking.Appointment.ID).Str("notification", result.Status.String()).Logger()
	switch result.Status {
	case notify.StatusOK:
		logger.Info().Msg("booking confirmation sent")
	case notify.StatusSkipped:
		logger.Warn().Str("reason", result.Reason).Msg("booking confirmation skipped")
	default:
		logger.Error().Str("reason", result.Reason).Msg("booking confirmation failed, appointment kept")
		util.LogAuditEvent(util.AuditEvent{
			EventType: util.EventNotificationFailed,
			Message:   "Booking confirmation failed",
			Details:   map[string]interface{}{"appointment_id": booking.Appointment.ID, "reason": result.Reason},
		})
	}
	return result
}

func (s *Service) send(ctx context.Context, msg notify.Message) (res notify.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = notify.Failed(fmt.Sprintf("gateway panic: %v", r))
		}
	}()
	return s.gateway.Send(ctx, msg)
}

func (s *Service) ListAppointments(ctx context.Context, p auth.Principal) ([]model.Appointment, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	return s.store.ListAppointments(ctx)
}

func (s *Service) DeleteAppointment(ctx context.Context, p auth.Principal, caller Caller, id uint) error {
	if err := p.Require(); err != nil {
		return err
	}
	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		return err
	}

	util.LogAuditEvent(util.AuditEvent{
		EventType: util.EventAppointmentDeleted,
		Actor:     p.Identity.Email,
		IP:        caller.IP,
		UserAgent: caller.UserAgent,
		Message:   "Appointment deleted",
		Details:   map[string]interface{}{"appointment_id": id},
	})
	return nil
}
