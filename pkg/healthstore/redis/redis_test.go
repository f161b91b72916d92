package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svasthya/svasthya/pkg/domain"
)

func TestStore_Keys(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   map[string]string
	}{
		{
			name:   "with prefix",
			prefix: "svasthya",
			want: map[string]string{
				"appointments": "svasthya:appointments",
				"reminders":    "svasthya:reminders",
				"patients":     "svasthya:patients",
				"index":        "svasthya:patients:current:appointments",
			},
		},
		{
			name: "without prefix",
			want: map[string]string{
				"appointments": "appointments",
				"reminders":    "reminders",
				"patients":     "patients",
				"index":        "patients:current:appointments",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Store{keyPrefix: tt.prefix}

			assert.Equal(t, tt.want["appointments"], s.appointmentsKey())
			assert.Equal(t, tt.want["reminders"], s.remindersKey())
			assert.Equal(t, tt.want["patients"], s.patientsKey())
			assert.Equal(t, tt.want["index"], s.patientIndexKey("current", "appointments"))
		})
	}
}

// pipelineRecorder answers pipelines without a server and records the
// commands of each one.
type pipelineRecorder struct {
	created bool
	err     error

	mu      sync.Mutex
	batches [][]string
}

func (h *pipelineRecorder) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *pipelineRecorder) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		return errors.New("unexpected standalone command: " + cmd.Name())
	}
}

func (h *pipelineRecorder) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		var names []string
		for _, cmd := range cmds {
			names = append(names, cmd.Name())
			if boolCmd, ok := cmd.(*redis.BoolCmd); ok {
				boolCmd.SetVal(h.created)
			}
		}

		h.mu.Lock()
		h.batches = append(h.batches, names)
		h.mu.Unlock()

		return h.err
	}
}

func newRecordedStore(t *testing.T, recorder *pipelineRecorder) *Store {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(recorder)
	t.Cleanup(func() { _ = client.Close() })

	return NewWithClient(client, "svasthya")
}

func testAppointment() domain.Appointment {
	return domain.Appointment{
		ID:         domain.NewAppointmentID(),
		PatientID:  domain.DefaultPatientID,
		DoctorName: "Dr. Smith",
		Date:       "2024-03-05",
		Reason:     "Fever",
		CreatedAt:  time.Now(),
	}
}

func TestStore_WritesDocumentAndIndexInOneTransaction(t *testing.T) {
	recorder := &pipelineRecorder{created: true}
	store := newRecordedStore(t, recorder)

	require.NoError(t, store.Book(context.Background(), testAppointment()))
	require.NoError(t, store.Schedule(context.Background(), domain.MedicationReminder{
		ID:           domain.NewReminderID(),
		PatientID:    domain.DefaultPatientID,
		MedicineName: "Cetirizine",
		Time:         "21:00",
		CreatedAt:    time.Now(),
	}))

	require.Len(t, recorder.batches, 2)
	for _, batch := range recorder.batches {
		assert.Contains(t, batch, "multi")
		assert.Contains(t, batch, "hsetnx")
		assert.Contains(t, batch, "zadd")
		assert.Contains(t, batch, "exec")
	}
}

func TestStore_BookFailures(t *testing.T) {
	t.Run("duplicate id", func(t *testing.T) {
		store := newRecordedStore(t, &pipelineRecorder{created: false})

		err := store.Book(context.Background(), testAppointment())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("transaction failure", func(t *testing.T) {
		store := newRecordedStore(t, &pipelineRecorder{err: errors.New("connection reset")})

		err := store.Book(context.Background(), testAppointment())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("invalid appointment", func(t *testing.T) {
		recorder := &pipelineRecorder{created: true}
		store := newRecordedStore(t, recorder)

		err := store.Book(context.Background(), domain.Appointment{ID: "APT-1"})
		assert.ErrorIs(t, err, domain.ErrInvalidAppointment)
		assert.Empty(t, recorder.batches)
	})
}
