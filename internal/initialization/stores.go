package initialization

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/svasthya/svasthya/pkg/domain"
	"github.com/svasthya/svasthya/pkg/healthstore/inmemory"
	"github.com/svasthya/svasthya/pkg/healthstore/mongodb"
	"github.com/svasthya/svasthya/pkg/healthstore/redis"
)

// NewHealthStore connects the configured backend and seeds the demo patient
// record when enabled
func NewHealthStore(ctx context.Context, config Config) (domain.HealthStore, error) {
	var (
		store domain.HealthStore
		err   error
	)

	switch config.StoreBackend {
	case StoreMemory:
		store = inmemory.New()
	case StoreRedis:
		store, err = redis.New(ctx, redis.Opts{
			Address:   config.RedisAddress,
			Password:  config.RedisPassword,
			DB:        config.RedisDB,
			KeyPrefix: config.RedisKeyPrefix,
		})
	case StoreMongoDB:
		store, err = mongodb.Connect(ctx, config.MongoURI, config.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", config.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("store", config.StoreBackend).Msg("Health store ready")

	if config.SeedDemoPatient {
		if err := seedDemoPatient(ctx, store); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
	}

	return store, nil
}

func seedDemoPatient(ctx context.Context, store domain.HealthStore) error {
	_, err := store.GetPatientRecord(ctx, domain.DefaultPatientID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrPatientNotFound) {
		return fmt.Errorf("failed to check demo patient record: %w", err)
	}

	if err := store.SavePatientRecord(ctx, domain.DemoPatientRecord()); err != nil {
		return fmt.Errorf("failed to seed demo patient record: %w", err)
	}

	log.Debug().Str("patient_id", domain.DefaultPatientID).Msg("Seeded demo patient record")

	return nil
}
