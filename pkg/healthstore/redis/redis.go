package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/svasthya/svasthya/pkg/domain"
)

// Store keeps health data in Redis. Appointments, reminders and patient
// records live in one hash per kind keyed by id; per-patient sorted sets index
// appointments and reminders by creation time.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

type Opts struct {
	Address   string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Opts) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, opts.KeyPrefix), nil
}

func NewWithClient(client *redis.Client, keyPrefix string) *Store {
	return &Store{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *Store) key(parts ...string) string {
	if s.keyPrefix != "" {
		parts = append([]string{s.keyPrefix}, parts...)
	}

	return strings.Join(parts, ":")
}

func (s *Store) appointmentsKey() string {
	return s.key("appointments")
}

func (s *Store) remindersKey() string {
	return s.key("reminders")
}

func (s *Store) patientsKey() string {
	return s.key("patients")
}

func (s *Store) patientIndexKey(patientID, kind string) string {
	return s.key("patients", patientID, kind)
}

func (s *Store) Book(ctx context.Context, appointment domain.Appointment) error {
	if err := appointment.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(appointment)
	if err != nil {
		return fmt.Errorf("failed to marshal appointment: %w", err)
	}

	err = s.insert(ctx, s.appointmentsKey(), s.patientIndexKey(appointment.PatientID, "appointments"),
		appointment.ID, data, float64(appointment.CreatedAt.UnixMilli()))
	if err != nil {
		return fmt.Errorf("failed to save appointment: %w", err)
	}

	return nil
}

func (s *Store) Schedule(ctx context.Context, reminder domain.MedicationReminder) error {
	if err := reminder.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(reminder)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder: %w", err)
	}

	err = s.insert(ctx, s.remindersKey(), s.patientIndexKey(reminder.PatientID, "reminders"),
		reminder.ID, data, float64(reminder.CreatedAt.UnixMilli()))
	if err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}

	return nil
}

// insert stores a document under id and indexes it in one MULTI/EXEC, so a
// document is never visible without its index entry.
func (s *Store) insert(ctx context.Context, hashKey, indexKey, id string, data []byte, score float64) error {
	var created *redis.BoolCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.HSetNX(ctx, hashKey, id, string(data))
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: score, Member: id})
		return nil
	})
	if err != nil {
		return err
	}

	if !created.Val() {
		return fmt.Errorf("%s already exists", id)
	}

	return nil
}

func (s *Store) GetPatientRecord(ctx context.Context, patientID string) (domain.PatientRecord, error) {
	data, err := s.client.HGet(ctx, s.patientsKey(), patientID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PatientRecord{}, fmt.Errorf("%w: %s", domain.ErrPatientNotFound, patientID)
		}
		return domain.PatientRecord{}, fmt.Errorf("failed to get patient record: %w", err)
	}

	var record domain.PatientRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return domain.PatientRecord{}, fmt.Errorf("failed to unmarshal patient record: %w", err)
	}

	return record, nil
}

func (s *Store) SavePatientRecord(ctx context.Context, record domain.PatientRecord) error {
	if record.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal patient record: %w", err)
	}

	if err := s.client.HSet(ctx, s.patientsKey(), record.PatientID, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to save patient record: %w", err)
	}

	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Close()
}
