package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/svasthya/svasthya/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	appointmentsCollection = "appointments"
	remindersCollection    = "medication_reminders"
	patientsCollection     = "patient_records"
)

// Store implements domain.HealthStore using MongoDB
type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect opens a client for uri and returns a store bound to database
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := New(client.Database(database))
	store.client = client

	return store, nil
}

// New creates a store on an existing database handle
func New(database *mongo.Database) *Store {
	store := &Store{
		database: database,
	}
	store.ensureIndexes()
	return store
}

func (s *Store) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		appointmentsCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		remindersCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		patientsCollection: {
			{Keys: bson.D{{Key: "patient_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collection, models := range indexes {
		if _, err := s.database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			log.Warn().Err(err).Str("collection", collection).Msg("Failed to create indexes")
		}
	}
}

func (s *Store) Book(ctx context.Context, appointment domain.Appointment) error {
	if err := appointment.Validate(); err != nil {
		return err
	}

	_, err := s.database.Collection(appointmentsCollection).InsertOne(ctx, appointment)
	if err != nil {
		return fmt.Errorf("failed to save appointment: %w", err)
	}

	return nil
}

func (s *Store) Schedule(ctx context.Context, reminder domain.MedicationReminder) error {
	if err := reminder.Validate(); err != nil {
		return err
	}

	_, err := s.database.Collection(remindersCollection).InsertOne(ctx, reminder)
	if err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}

	return nil
}

func (s *Store) GetPatientRecord(ctx context.Context, patientID string) (domain.PatientRecord, error) {
	var record domain.PatientRecord

	err := s.database.Collection(patientsCollection).FindOne(ctx, bson.M{"patient_id": patientID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.PatientRecord{}, fmt.Errorf("%w: %s", domain.ErrPatientNotFound, patientID)
		}
		return domain.PatientRecord{}, fmt.Errorf("failed to find patient record: %w", err)
	}

	return record, nil
}

func (s *Store) SavePatientRecord(ctx context.Context, record domain.PatientRecord) error {
	if record.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}

	opts := options.Replace().SetUpsert(true)
	_, err := s.database.Collection(patientsCollection).ReplaceOne(ctx, bson.M{"patient_id": record.PatientID}, record, opts)
	if err != nil {
		return fmt.Errorf("failed to save patient record: %w", err)
	}

	return nil
}

// Close disconnects the client when the store owns it
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}

	return s.client.Disconnect(ctx)
}
