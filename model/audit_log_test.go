package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditLogModel_Create(t *testing.T) {
	db := setupTestDB(t, "audit_create", &AuditLog{})

	entry := AuditLog{
		EventType: "LOGIN_SUCCESS",
		Actor:     "admin@hospital.test",
		IP:        "192.168.1.1",
		Action:    "Admin logged in",
	}

	err := db.Create(&entry).Error
	assert.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.NotZero(t, entry.CreatedAt)
}

func TestAuditLogModel_AllFields(t *testing.T) {
	db := setupTestDB(t, "audit_fields", &AuditLog{})

	entry := AuditLog{
		EventType: "APPOINTMENT_BOOKED",
		Actor:     "admin@hospital.test",
		IP:        "10.0.0.1",
		UserAgent: "Mozilla/5.0",
		Location:  "Kochi/India",
		Action:    "Appointment booked",
		Details:   []byte(`{"appointment_id":1}`),
	}

	err := db.Create(&entry).Error
	assert.NoError(t, err)

	var found AuditLog
	db.First(&found, entry.ID)
	assert.Equal(t, "APPOINTMENT_BOOKED", found.EventType)
	assert.Equal(t, "admin@hospital.test", found.Actor)
	assert.Equal(t, "10.0.0.1", found.IP)
	assert.Equal(t, "Mozilla/5.0", found.UserAgent)
	assert.Equal(t, "Kochi/India", found.Location)
	assert.Equal(t, "Appointment booked", found.Action)
	assert.JSONEq(t, `{"appointment_id":1}`, string(found.Details))
}

func TestAuditLogModel_FilterByEventType(t *testing.T) {
	db := setupTestDB(t, "audit_filter", &AuditLog{})

	db.Create(&AuditLog{EventType: "LOGIN_FAILURE", Actor: "a@test.com"})
	db.Create(&AuditLog{EventType: "LOGIN_FAILURE", Actor: "b@test.com"})
	db.Create(&AuditLog{EventType: "LOGOUT", Actor: "a@test.com"})

	var failures []AuditLog
	err := db.Where("event_type = ?", "LOGIN_FAILURE").Find(&failures).Error
	assert.NoError(t, err)
	assert.Len(t, failures, 2)
}
