package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/svasthya/svasthya/pkg/domain"
)

// Store keeps health data in process memory. It is safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	appointments map[string]domain.Appointment
	reminders    map[string]domain.MedicationReminder
	patients     map[string]domain.PatientRecord
}

// New creates a store seeded with the given patient records.
func New(records ...domain.PatientRecord) *Store {
	s := &Store{
		appointments: make(map[string]domain.Appointment),
		reminders:    make(map[string]domain.MedicationReminder),
		patients:     make(map[string]domain.PatientRecord),
	}

	for _, record := range records {
		s.patients[record.PatientID] = record
	}

	return s
}

func (s *Store) Book(ctx context.Context, appointment domain.Appointment) error {
	if err := appointment.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[appointment.ID]; ok {
		return fmt.Errorf("appointment %s already exists", appointment.ID)
	}

	s.appointments[appointment.ID] = appointment

	return nil
}

func (s *Store) Schedule(ctx context.Context, reminder domain.MedicationReminder) error {
	if err := reminder.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[reminder.ID]; ok {
		return fmt.Errorf("reminder %s already exists", reminder.ID)
	}

	s.reminders[reminder.ID] = reminder

	return nil
}

func (s *Store) GetPatientRecord(ctx context.Context, patientID string) (domain.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.patients[patientID]
	if !ok {
		return domain.PatientRecord{}, fmt.Errorf("%w: %s", domain.ErrPatientNotFound, patientID)
	}

	record.Conditions = append([]string(nil), record.Conditions...)

	return record, nil
}

func (s *Store) SavePatientRecord(ctx context.Context, record domain.PatientRecord) error {
	if record.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.patients[record.PatientID] = record

	return nil
}

// Appointments returns the stored appointments for a patient.
func (s *Store) Appointments(patientID string) []domain.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Appointment
	for _, appointment := range s.appointments {
		if appointment.PatientID == patientID {
			result = append(result, appointment)
		}
	}

	return result
}

// Reminders returns the stored medication reminders for a patient.
func (s *Store) Reminders(patientID string) []domain.MedicationReminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.MedicationReminder
	for _, reminder := range s.reminders {
		if reminder.PatientID == patientID {
			result = append(result, reminder)
		}
	}

	return result
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}
