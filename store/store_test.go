package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ariebrainware/hospital-booking/model"
	"github.com/ariebrainware/hospital-booking/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLTestStore(t *testing.T, seedName string) *SQLStore {
	t.Helper()
	dsn := fmt.Sprintf("file:store_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	seed, err := model.DoctorSeed(seedName)
	require.NoError(t, err)

	s := NewSQLStore(db, seed)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// runStoreContract exercises the behaviour every RecordStore must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) RecordStore) {
	ctx := context.Background()

	t.Run("registered patient is found by exact name", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreatePatient(ctx, "Asha Rao", "asha@example.com")
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Asha Rao", created.Name)

		found, err := s.FindPatientByName(ctx, "Asha Rao")
		require.NoError(t, err)
		assert.Equal(t, "asha@example.com", found.Email)

		for _, other := range []string{"asha rao", "Asha  Rao", " Asha Rao", "Asha Rao "} {
			_, err = s.FindPatientByName(ctx, other)
			assert.True(t, util.IsErrorType(err, util.ErrorTypeNotFound), "lookup %q", other)
		}
	})

	t.Run("names are stored as submitted", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreatePatient(ctx, "  Asha  ", " asha@example.com")
		require.NoError(t, err)
		assert.Equal(t, "  Asha  ", created.Name)
		assert.Equal(t, " asha@example.com", created.Email)

		_, err = s.FindPatientByName(ctx, "Asha")
		assert.True(t, util.IsErrorType(err, util.ErrorTypeNotFound))

		_, err = s.CreateAppointment(ctx, model.AppointmentRequest{Patient: "  Asha  ", Doctor: "Dr. Anita Rao", Date: "2024-05-01", Time: "10:00"})
		require.NoError(t, err)
		_, err = s.CreateAppointment(ctx, model.AppointmentRequest{Patient: "Asha", Doctor: "Dr. Anita Rao", Date: "2024-05-01", Time: "10:00"})
		assert.True(t, util.IsErrorType(err, util.ErrorTypeNotFound))
	})

	t.Run("patient requires name and email", func(t *testing.T) {
		s := newStore(t)
		for _, in := range [][2]string{{"", "a@b.c"}, {"Asha", ""}, {"", ""}} {
			_, err := s.CreatePatient(ctx, in[0], in[1])
			assert.True(t, util.IsErrorType(err, util.ErrorTypeValidation), "input %q", in)
		}

		// only empty values are rejected
		_, err := s.CreatePatient(ctx, "   ", "a@b.c")
		assert.NoError(t, err)
	})

	t.Run("duplicate emails are allowed", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CreatePatient(ctx, "Asha", "shared@example.com")
		require.NoError(t, err)
		_, err = s.CreatePatient(ctx, "Ravi", "shared@example.com")
		assert.NoError(t, err)
	})

	t.Run("doctors are seeded once", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Initialize(ctx))

		doctors, err := s.ListDoctors(ctx)
		require.NoError(t, err)
		assert.Len(t, doctors, 5)
		assert.Equal(t, "Dr. Rajesh Kumar", doctors[0].Name)
		assert.Equal(t, "Cardiologist", doctors[0].Specialization)
	})

	t.Run("booking unknown patient writes nothing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CreateAppointment(ctx, model.AppointmentRequest{Patient: "Nobody", Doctor: "Dr. Anita Rao", Date: "2024-05-01", Time: "10:00"})
		assert.True(t, util.IsErrorType(err, util.ErrorTypeNotFound))

		list, err := s.ListAppointments(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("booking with empty field writes nothing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CreatePatient(ctx, "Asha", "asha@example.com")
		require.NoError(t, err)

		full := model.AppointmentRequest{Patient: "Asha", Doctor: "Dr. Anita Rao", Date: "2024-05-01", Time: "10:00"}
		variants := []model.AppointmentRequest{full, full, full, full}
		variants[0].Patient = ""
		variants[1].Doctor = ""
		variants[2].Date = ""
		variants[3].Time = ""
		for _, req := range variants {
			_, err := s.CreateAppointment(ctx, req)
			assert.True(t, util.IsErrorType(err, util.ErrorTypeValidation), "request %+v", req)
		}

		list, err := s.ListAppointments(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("appointments list newest first", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CreatePatient(ctx, "Asha", "asha@example.com")
		require.NoError(t, err)

		const n = 4
		for i := 0; i < n; i++ {
			booking, err := s.CreateAppointment(ctx, model.AppointmentRequest{
				Patient: "Asha", Doctor: "Dr. Anita Rao", Date: "2024-05-01", Time: fmt.Sprintf("1%d:00", i),
			})
			require.NoError(t, err)
			assert.Equal(t, uint(i+1), booking.Appointment.ID)
			assert.Equal(t, model.StatusBooked, booking.Appointment.Status)
			assert.Equal(t, "asha@example.com", booking.PatientEmail)
		}

		list, err := s.ListAppointments(ctx)
		require.NoError(t, err)
		require.Len(t, list, n)
		for i := 1; i < n; i++ {
			assert.Greater(t, list[i-1].ID, list[i].ID)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CreatePatient(ctx, "Asha", "asha@example.com")
		require.NoError(t, err)
		booking, err := s.CreateAppointment(ctx, model.AppointmentRequest{Patient: "Asha", Doctor: "Dr. Anita Rao", Date: "2024-05-01", Time: "10:00"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteAppointment(ctx, 999))
		list, err := s.ListAppointments(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, s.DeleteAppointment(ctx, booking.Appointment.ID))
		require.NoError(t, s.DeleteAppointment(ctx, booking.Appointment.ID))
		list, err = s.ListAppointments(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("delete requires an id", func(t *testing.T) {
		s := newStore(t)
		err := s.DeleteAppointment(ctx, 0)
		assert.True(t, util.IsErrorType(err, util.ErrorTypeValidation))
	})

	t.Run("audit entries are recorded", func(t *testing.T) {
		s := newStore(t)
		entry := &model.AuditLog{EventType: "LOGIN_SUCCESS", Actor: "admin@hospital.test", Details: []byte(`{"k":"v"}`)}
		require.NoError(t, s.RecordAudit(ctx, entry))
		assert.NotZero(t, entry.ID)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(ctx))
	})
}

func TestSQLStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) RecordStore {
		return newSQLTestStore(t, model.SeedStandard)
	})
}

func TestSQLStore_ExtendedSeed(t *testing.T) {
	s := newSQLTestStore(t, model.SeedExtended)

	doctors, err := s.ListDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, doctors, 10)
	assert.Equal(t, "Dr. Anita Rao", doctors[0].Name)
	assert.Equal(t, "10:00,11:00,14:00", doctors[0].Slots)
}

func TestSQLStore_DenormalizedNamesSurvivePatientRemoval(t *testing.T) {
	s := newSQLTestStore(t, model.SeedStandard)
	ctx := context.Background()

	patient, err := s.CreatePatient(ctx, "Asha", "asha@example.com")
	require.NoError(t, err)
	_, err = s.CreateAppointment(ctx, model.AppointmentRequest{Patient: "Asha", Doctor: "Dr. Anita Rao", Date: "2024-05-01", Time: "10:00"})
	require.NoError(t, err)

	require.NoError(t, s.db.Delete(&model.Patient{}, patient.ID).Error)

	list, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].Patient)
}

func TestSQLStore_FirstPatientWinsOnDuplicateName(t *testing.T) {
	s := newSQLTestStore(t, model.SeedStandard)
	ctx := context.Background()

	_, err := s.CreatePatient(ctx, "Asha", "first@example.com")
	require.NoError(t, err)
	_, err = s.CreatePatient(ctx, "Asha", "second@example.com")
	require.NoError(t, err)

	booking, err := s.CreateAppointment(ctx, model.AppointmentRequest{Patient: "Asha", Doctor: "Dr. Anita Rao", Date: "2024-05-01", Time: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", booking.PatientEmail)
}

func TestSQLStore_ClosedDatabaseIsInternalError(t *testing.T) {
	s := newSQLTestStore(t, model.SeedStandard)
	require.NoError(t, s.Close())

	_, err := s.ListAppointments(context.Background())
	assert.True(t, util.IsErrorType(err, util.ErrorTypeInternal))
	assert.Error(t, s.Ping(context.Background()))
}
