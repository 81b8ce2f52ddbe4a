package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Doctor is seeded reference data. Slots is a comma-separated list of times
// kept for reference; it is not part of the API response.
type Doctor struct {
	ID             uint   `json:"-" gorm:"primaryKey" bson:"_id"`
	Name           string `json:"name" gorm:"column:name;type:varchar(191);not null" bson:"name"`
	Specialization string `json:"specialization" gorm:"column:specialization;type:varchar(191);not null" bson:"specialization"`
	Slots          string `json:"-" gorm:"column:slots;type:varchar(255)" bson:"slots,omitempty"`
}

const (
	SeedStandard = "standard"
	SeedExtended = "extended"
)

var standardDoctors = []Doctor{
	{Name: "Dr. Rajesh Kumar", Specialization: "Cardiologist"},
	{Name: "Dr. Anita Rao", Specialization: "Gynecologist"},
	{Name: "Dr. Sunil Mehta", Specialization: "Orthopedic"},
	{Name: "Dr. Neha Sharma", Specialization: "Dermatologist"},
	{Name: "Dr. Arjun Pillai", Specialization: "Neurologist"},
}

var extendedDoctors = []Doctor{
	{Name: "Dr. Anita Rao", Specialization: "Gynecologist", Slots: "10:00,11:00,14:00"},
	{Name: "Dr. Rajesh Kumar", Specialization: "Cardiologist", Slots: "09:00,13:00,16:00"},
	{Name: "Dr. Meera Nair", Specialization: "Dermatologist", Slots: "11:00,15:00"},
	{Name: "Dr. Arun Menon", Specialization: "Orthopedic", Slots: "10:30,12:30"},
	{Name: "Dr. Priya Shah", Specialization: "Pediatrician", Slots: "09:30,14:30"},
	{Name: "Dr. Sanjay Verma", Specialization: "Neurologist", Slots: "10:00,16:00"},
	{Name: "Dr. Kavya Iyer", Specialization: "ENT", Slots: "11:00,13:00"},
	{Name: "Dr. Mohit Jain", Specialization: "General Physician", Slots: "09:00,11:00,17:00"},
	{Name: "Dr. Sneha Paul", Specialization: "Psychiatrist", Slots: "12:00,15:00"},
	{Name: "Dr. Ramesh Pillai", Specialization: "Urologist", Slots: "10:00,14:00"},
}

// DoctorSeed returns a fresh copy of the named seed set.
func DoctorSeed(name string) ([]Doctor, error) {
	var src []Doctor
	switch name {
	case "", SeedStandard:
		src = standardDoctors
	case SeedExtended:
		src = extendedDoctors
	default:
		return nil, fmt.Errorf("unknown doctor seed %q", name)
	}
	return append([]Doctor(nil), src...), nil
}

// SeedDoctors inserts doctors only when the doctors table is empty.
func SeedDoctors(db *gorm.DB, doctors []Doctor) error {
	if len(doctors) == 0 {
		return nil
	}
	var count int64
	if err := db.Model(&Doctor{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := db.Create(&doctors).Error; err != nil {
		return fmt.Errorf("failed to seed doctors: %w", err)
	}
	return nil
}
