package domain

import (
	"context"
	"errors"
	"time"

	"github.com/rs/xid"
)

// DefaultPatientID identifies the patient on whose behalf the assistant acts
// when a tool call does not name one.
const DefaultPatientID = "current"

const (
	StatusSuccess = "success"

	appointmentIDPrefix = "APT-"
	reminderIDPrefix    = "REM-"
)

var (
	ErrPatientNotFound    = errors.New("patient record not found")
	ErrInvalidAppointment = errors.New("invalid appointment")
	ErrInvalidReminder    = errors.New("invalid medication reminder")
)

type Appointment struct {
	ID         string    `json:"id" bson:"id"`
	PatientID  string    `json:"patient_id" bson:"patient_id"`
	DoctorName string    `json:"doctor_name" bson:"doctor_name"`
	Date       string    `json:"date" bson:"date"`
	Reason     string    `json:"reason" bson:"reason"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

type MedicationReminder struct {
	ID           string    `json:"id" bson:"id"`
	PatientID    string    `json:"patient_id" bson:"patient_id"`
	MedicineName string    `json:"medicine_name" bson:"medicine_name"`
	Time         string    `json:"time" bson:"time"`
	Frequency    string    `json:"frequency,omitempty" bson:"frequency,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type Vitals struct {
	BloodPressure string `json:"bp" bson:"bp"`
	HeartRate     int    `json:"heartRate" bson:"heart_rate"`
}

type PatientRecord struct {
	PatientID    string   `json:"patientId" bson:"patient_id"`
	PatientName  string   `json:"patientName" bson:"patient_name"`
	Age          int      `json:"age" bson:"age"`
	Conditions   []string `json:"conditions" bson:"conditions"`
	LastVisit    string   `json:"lastVisit" bson:"last_visit"`
	RecentVitals Vitals   `json:"recentVitals" bson:"recent_vitals"`
}

// AppointmentBook persists booked appointments.
type AppointmentBook interface {
	Book(ctx context.Context, appointment Appointment) error
}

// ReminderBook persists medication reminders.
type ReminderBook interface {
	Schedule(ctx context.Context, reminder MedicationReminder) error
}

type PatientRecordProvider interface {
	GetPatientRecord(ctx context.Context, patientID string) (PatientRecord, error)
}

// HealthStore is the downstream collaborator the health tools call into.
type HealthStore interface {
	AppointmentBook
	ReminderBook
	PatientRecordProvider

	SavePatientRecord(ctx context.Context, record PatientRecord) error
	Close(ctx context.Context) error
}

func NewAppointmentID() string {
	return appointmentIDPrefix + xid.New().String()
}

func NewReminderID() string {
	return reminderIDPrefix + xid.New().String()
}

// DemoPatientRecord is the record served for DefaultPatientID out of the box.
func DemoPatientRecord() PatientRecord {
	return PatientRecord{
		PatientID:   DefaultPatientID,
		PatientName: "Raj Aryan",
		Age:         25,
		Conditions:  []string{"Seasonal Allergies"},
		LastVisit:   "2023-10-15",
		RecentVitals: Vitals{
			BloodPressure: "120/80",
			HeartRate:     72,
		},
	}
}

func (a Appointment) Validate() error {
	if a.ID == "" || a.DoctorName == "" || a.Date == "" || a.Reason == "" {
		return ErrInvalidAppointment
	}

	return nil
}

func (r MedicationReminder) Validate() error {
	if r.ID == "" || r.MedicineName == "" || r.Time == "" {
		return ErrInvalidReminder
	}

	return nil
}
