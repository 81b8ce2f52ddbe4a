package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentModel_CreateAndOrder(t *testing.T) {
	db := setupTestDB(t, "appointment_order", &Appointment{})

	for _, p := range []string{"Asha", "Ravi", "Meena"} {
		err := db.Create(&Appointment{Patient: p, Doctor: "Dr. Anita Rao", Date: "2024-05-01", Time: "10:00", Status: StatusBooked}).Error
		assert.NoError(t, err)
	}

	var appointments []Appointment
	err := db.Order("id DESC").Find(&appointments).Error
	assert.NoError(t, err)
	assert.Len(t, appointments, 3)
	assert.Equal(t, "Meena", appointments[0].Patient)
	assert.Equal(t, "Asha", appointments[2].Patient)
}

func TestAppointmentModel_HardDelete(t *testing.T) {
	db := setupTestDB(t, "appointment_delete", &Appointment{})

	a := Appointment{Patient: "Asha", Doctor: "Dr. Anita Rao", Date: "2024-05-01", Time: "10:00", Status: StatusBooked}
	db.Create(&a)

	assert.NoError(t, db.Delete(&Appointment{}, a.ID).Error)

	var count int64
	db.Unscoped().Model(&Appointment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
