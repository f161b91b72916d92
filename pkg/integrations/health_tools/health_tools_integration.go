package health_tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/svasthya/svasthya/pkg/ai-sdk/tool"
	"github.com/svasthya/svasthya/pkg/domain"
)

type HealthToolsIntegrationDependencies struct {
	Store domain.HealthStore

	// PatientID is the patient acting through the assistant. Defaults to domain.DefaultPatientID.
	PatientID string
	Now       func() time.Time
}

type HealthToolsIntegration struct {
	store     domain.HealthStore
	patientID string
	now       func() time.Time
}

func NewHealthToolsIntegration(deps HealthToolsIntegrationDependencies) *HealthToolsIntegration {
	patientID := deps.PatientID
	if patientID == "" {
		patientID = domain.DefaultPatientID
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &HealthToolsIntegration{
		store:     deps.Store,
		patientID: patientID,
		now:       now,
	}
}

// Implementations maps every tool name to its executable implementation.
func (i *HealthToolsIntegration) Implementations() map[string]tool.Func {
	return map[string]tool.Func{
		ToolBookAppointment:       tool.Typed(ToolBookAppointment, i.BookAppointment),
		ToolSetMedicationReminder: tool.Typed(ToolSetMedicationReminder, i.SetMedicationReminder),
		ToolGetPatientRecords:     tool.Typed(ToolGetPatientRecords, i.GetPatientRecords),
	}
}

// NewRegistry builds the registry of health tools, failing if the manifest and
// the implementations disagree.
func (i *HealthToolsIntegration) NewRegistry() (*tool.Registry, error) {
	return tool.NewRegistry(Definitions(), i.Implementations())
}

func (i *HealthToolsIntegration) BookAppointment(ctx context.Context, args BookAppointmentArgs) (BookAppointmentResult, error) {
	log.Info().
		Str("tool", ToolBookAppointment).
		Str("doctor_name", args.DoctorName).
		Str("date", args.Date).
		Msg("Executing tool")

	appointment := domain.Appointment{
		ID:         domain.NewAppointmentID(),
		PatientID:  i.patientID,
		DoctorName: args.DoctorName,
		Date:       args.Date,
		Reason:     args.Reason,
		CreatedAt:  i.now(),
	}

	if err := i.store.Book(ctx, appointment); err != nil {
		return BookAppointmentResult{}, fmt.Errorf("failed to book appointment: %w", err)
	}

	return BookAppointmentResult{
		Status:        domain.StatusSuccess,
		Message:       fmt.Sprintf("Appointment booked with %s on %s for %s.", args.DoctorName, args.Date, args.Reason),
		AppointmentID: appointment.ID,
	}, nil
}

func (i *HealthToolsIntegration) SetMedicationReminder(ctx context.Context, args SetMedicationReminderArgs) (SetMedicationReminderResult, error) {
	log.Info().
		Str("tool", ToolSetMedicationReminder).
		Str("medicine_name", args.MedicineName).
		Str("time", args.Time).
		Str("frequency", args.Frequency).
		Msg("Executing tool")

	reminder := domain.MedicationReminder{
		ID:           domain.NewReminderID(),
		PatientID:    i.patientID,
		MedicineName: args.MedicineName,
		Time:         args.Time,
		Frequency:    args.Frequency,
		CreatedAt:    i.now(),
	}

	if err := i.store.Schedule(ctx, reminder); err != nil {
		return SetMedicationReminderResult{}, fmt.Errorf("failed to set medication reminder: %w", err)
	}

	message := fmt.Sprintf("Reminder set for %s at %s.", args.MedicineName, args.Time)
	if args.Frequency != "" {
		message = fmt.Sprintf("Reminder set for %s at %s (%s).", args.MedicineName, args.Time, args.Frequency)
	}

	return SetMedicationReminderResult{
		Status:     domain.StatusSuccess,
		Message:    message,
		ReminderID: reminder.ID,
	}, nil
}

func (i *HealthToolsIntegration) GetPatientRecords(ctx context.Context, args GetPatientRecordsArgs) (GetPatientRecordsResult, error) {
	patientID := args.PatientID
	if patientID == "" {
		patientID = i.patientID
	}

	log.Info().
		Str("tool", ToolGetPatientRecords).
		Str("patient_id", patientID).
		Msg("Executing tool")

	record, err := i.store.GetPatientRecord(ctx, patientID)
	if errors.Is(err, domain.ErrPatientNotFound) && patientID != i.patientID {
		// models fill patientId with names or invented ids; the assistant only serves the acting patient
		log.Warn().
			Str("tool", ToolGetPatientRecords).
			Str("patient_id", patientID).
			Msg("Unknown patient id, using the acting patient")

		record, err = i.store.GetPatientRecord(ctx, i.patientID)
	}
	if err != nil {
		return GetPatientRecordsResult{}, fmt.Errorf("failed to get patient records: %w", err)
	}

	return GetPatientRecordsResult{
		PatientName:  record.PatientName,
		Age:          record.Age,
		Conditions:   record.Conditions,
		LastVisit:    record.LastVisit,
		RecentVitals: record.RecentVitals,
	}, nil
}
