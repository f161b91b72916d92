package health_agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svasthya/svasthya/pkg/ai-sdk/provider"
	"github.com/svasthya/svasthya/pkg/ai-sdk/provider/providertest"
	"github.com/svasthya/svasthya/pkg/ai-sdk/tool"
	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
	"github.com/svasthya/svasthya/pkg/domain"
	"github.com/svasthya/svasthya/pkg/healthstore/inmemory"
	"github.com/svasthya/svasthya/pkg/integrations/health_tools"
)

type executedCall struct {
	Name string
	Args tool.Arguments
}

// recordingExecutor wraps a real executor and records every call it receives.
type recordingExecutor struct {
	inner *tool.Executor

	mu    sync.Mutex
	calls []executedCall
}

func (e *recordingExecutor) Execute(ctx context.Context, name string, args tool.Arguments) (tool.Result, error) {
	e.mu.Lock()
	e.calls = append(e.calls, executedCall{Name: name, Args: args})
	e.mu.Unlock()

	return e.inner.Execute(ctx, name, args)
}

func (e *recordingExecutor) Calls() []executedCall {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]executedCall(nil), e.calls...)
}

type fixture struct {
	agent    *HealthAgent
	executor *recordingExecutor
	store    *inmemory.Store
}

func newFixture(t *testing.T, model provider.LanguageModel) fixture {
	t.Helper()

	return newFixtureWithStore(t, model, inmemory.New(domain.DemoPatientRecord()))
}

func newFixtureWithStore(t *testing.T, model provider.LanguageModel, store *inmemory.Store) fixture {
	t.Helper()

	integration := health_tools.NewHealthToolsIntegration(health_tools.HealthToolsIntegrationDependencies{Store: store})

	registry, err := integration.NewRegistry()
	require.NoError(t, err)

	executor := &recordingExecutor{inner: tool.NewExecutor(registry)}

	healthAgent, err := NewHealthAgent(HealthAgentDependencies{
		Model:    model,
		Catalog:  registry,
		Executor: executor,
	})
	require.NoError(t, err)

	return fixture{agent: healthAgent, executor: executor, store: store}
}

func bookingCall() types.ToolCall {
	return types.ToolCall{
		ID:   "call-1",
		Name: health_tools.ToolBookAppointment,
		Arguments: map[string]any{
			"doctorName": "Dr. Smith",
			"date":       "2024-03-05",
			"reason":     "Fever",
		},
	}
}

func TestNewHealthAgent_Validation(t *testing.T) {
	_, err := NewHealthAgent(HealthAgentDependencies{})
	assert.ErrorIs(t, err, types.ErrProviderNotSet)

	_, err = NewHealthAgent(HealthAgentDependencies{Model: providertest.Sequence()})
	assert.Error(t, err)
}

func TestRun_PlainTextIsReturnedVerbatim(t *testing.T) {
	texts := []string{
		"Drink plenty of water and rest.",
		"  leading and trailing spaces are kept  ",
		"",
	}

	for _, text := range texts {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			model := providertest.Sequence(providertest.Text(text))
			f := newFixture(t, model)

			outcome := f.agent.Run(context.Background(), Query{Text: "How do I treat a cold?"})

			require.NoError(t, outcome.Err)
			assert.Equal(t, StateResponded, outcome.State)
			assert.Equal(t, text, outcome.Text)
			assert.Nil(t, outcome.ToolCall)
			assert.Equal(t, 1, model.Calls())
			assert.Empty(t, f.executor.Calls())

			assert.Equal(t, Response{Text: text}, f.agent.ProcessQuery(context.Background(), Query{Text: "again"}))
		})
	}
}

func TestRun_BookAppointment(t *testing.T) {
	call := bookingCall()
	model := providertest.Sequence(
		providertest.Call("", call),
		providertest.Text("Your appointment with Dr. Smith is confirmed for March 5th."),
	)
	f := newFixture(t, model)

	outcome := f.agent.Run(context.Background(), Query{Text: "Book me with Dr. Smith on 2024-03-05, I have a fever"})

	require.NoError(t, outcome.Err)
	assert.Equal(t, StateResponded, outcome.State)
	assert.Equal(t, "Your appointment with Dr. Smith is confirmed for March 5th.", outcome.Text)

	calls := f.executor.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, health_tools.ToolBookAppointment, calls[0].Name)
	assert.Equal(t, tool.Arguments(call.Arguments), calls[0].Args)

	appointmentID, ok := outcome.ToolResult["appointmentId"].(string)
	require.True(t, ok)
	assert.NotContains(t, outcome.Text, appointmentID)
	assert.Len(t, f.store.Appointments(domain.DefaultPatientID), 1)

	requests := model.Requests()
	require.Len(t, requests, 2)

	followUp := requests[1].Messages[len(requests[1].Messages)-1]
	assert.Equal(t, types.RoleTool, followUp.Role)
	require.Len(t, followUp.ToolResults, 1)
	assert.Equal(t, "call-1", followUp.ToolResults[0].ToolCallID)
	assert.Equal(t, health_tools.ToolBookAppointment, followUp.ToolResults[0].ToolName)
	assert.Equal(t, map[string]any(outcome.ToolResult), followUp.ToolResults[0].Data)
}

func TestRun_ToolManifestIsAdvertised(t *testing.T) {
	model := providertest.Sequence(providertest.Text("hello"))
	f := newFixture(t, model)

	f.agent.Run(context.Background(), Query{Text: "hi"})

	requests := model.Requests()
	require.Len(t, requests, 1)
	require.Len(t, requests[0].Tools, 3)
	assert.Equal(t, health_tools.ToolBookAppointment, requests[0].Tools[0].Name)
	assert.Equal(t, health_tools.ToolSetMedicationReminder, requests[0].Tools[1].Name)
	assert.Equal(t, health_tools.ToolGetPatientRecords, requests[0].Tools[2].Name)
	assert.Equal(t, DefaultSystemPrompt, requests[0].System)
}

func TestRun_UnknownToolFallsBackToText(t *testing.T) {
	model := providertest.Sequence(
		providertest.Call("I can't cancel appointments yet.", types.ToolCall{ID: "x", Name: "cancelAppointment"}),
	)
	f := newFixture(t, model)

	outcome := f.agent.Run(context.Background(), Query{Text: "Cancel my appointment"})

	require.NoError(t, outcome.Err)
	assert.Equal(t, StateResponded, outcome.State)
	assert.Equal(t, "I can't cancel appointments yet.", outcome.Text)
	assert.Empty(t, f.executor.Calls())
	assert.Equal(t, 1, model.Calls())
}

func TestRun_OnlyFirstToolCallIsExecuted(t *testing.T) {
	reminder := types.ToolCall{
		ID:        "call-2",
		Name:      health_tools.ToolSetMedicationReminder,
		Arguments: map[string]any{"medicineName": "Cetirizine", "time": "21:00"},
	}
	model := providertest.Sequence(
		providertest.Call("", bookingCall(), reminder, bookingCall()),
		providertest.Text("Booked."),
	)
	f := newFixture(t, model)

	outcome := f.agent.Run(context.Background(), Query{Text: "Book and remind"})

	require.NoError(t, outcome.Err)
	assert.Equal(t, "Booked.", outcome.Text)
	assert.Equal(t, 2, outcome.IgnoredCalls)
	require.NotNil(t, outcome.ToolCall)
	assert.Equal(t, health_tools.ToolBookAppointment, outcome.ToolCall.Name)

	calls := f.executor.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, health_tools.ToolBookAppointment, calls[0].Name)
	assert.Empty(t, f.store.Reminders(domain.DefaultPatientID))
}

func TestRun_Failures(t *testing.T) {
	missingReason := bookingCall()
	delete(missingReason.Arguments, "reason")

	recordsCall := types.ToolCall{
		ID:        "call-3",
		Name:      health_tools.ToolGetPatientRecords,
		Arguments: map[string]any{},
	}

	tests := []struct {
		name      string
		model     provider.LanguageModel
		store     *inmemory.Store
		query     string
		wantErr   error
		wantKind  string
		wantCalls int
	}{
		{
			name:     "empty query",
			model:    providertest.Sequence(providertest.Text("unused")),
			query:    "   ",
			wantErr:  ErrInvalidQuery,
			wantKind: "invalid_request",
		},
		{
			name:     "transport failure on first turn",
			model:    providertest.Failing(errors.New("connection refused")),
			query:    "hello",
			wantErr:  types.ErrModelTransportFailed,
			wantKind: "model_transport_failed",
		},
		{
			name:     "timeout on first turn",
			model:    providertest.Failing(context.DeadlineExceeded),
			query:    "hello",
			wantErr:  types.ErrModelTimeout,
			wantKind: "model_timeout",
		},
		{
			name:      "missing required argument",
			model:     providertest.Sequence(providertest.Call("", missingReason)),
			query:     "book something",
			wantErr:   tool.ErrInvalidArguments,
			wantKind:  "invalid_tool_arguments",
			wantCalls: 1,
		},
		{
			name:      "downstream failure",
			model:     providertest.Sequence(providertest.Call("", recordsCall)),
			store:     inmemory.New(),
			query:     "show my records",
			wantErr:   tool.ErrExecutionFailed,
			wantKind:  "tool_execution_failed",
			wantCalls: 1,
		},
		{
			name:     "reply withheld by content filter",
			model:    providertest.Sequence(providertest.Blocked()),
			query:    "hello",
			wantErr:  types.ErrEmptyResponse,
			wantKind: "model_empty_response",
		},
		{
			name:      "follow-up withheld by content filter",
			model:     providertest.Sequence(providertest.Call("", bookingCall()), providertest.Blocked()),
			query:     "book",
			wantErr:   types.ErrEmptyResponse,
			wantKind:  "model_empty_response",
			wantCalls: 1,
		},
		{
			name: "transport failure on follow-up",
			model: func() provider.LanguageModel {
				var mu sync.Mutex
				turn := 0
				return providertest.New(func(context.Context, provider.GenerateRequest) (*types.GenerateResponse, error) {
					mu.Lock()
					defer mu.Unlock()
					turn++
					if turn == 1 {
						return providertest.Call("", bookingCall()), nil
					}
					return nil, errors.New("502 bad gateway")
				})
			}(),
			query:     "book",
			wantErr:   types.ErrModelTransportFailed,
			wantKind:  "model_transport_failed",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.store
			if store == nil {
				store = inmemory.New(domain.DemoPatientRecord())
			}
			f := newFixtureWithStore(t, tt.model, store)

			outcome := f.agent.Run(context.Background(), Query{Text: tt.query})

			assert.True(t, outcome.Failed())
			assert.Equal(t, StateFailed, outcome.State)
			assert.ErrorIs(t, outcome.Err, tt.wantErr)
			assert.Equal(t, tt.wantKind, ErrorKind(outcome.Err))
			assert.Len(t, f.executor.Calls(), tt.wantCalls)

			response := f.agent.ProcessQuery(context.Background(), Query{Text: tt.query})
			assert.Equal(t, ApologyMessage, response.Text)
		})
	}
}

func TestRun_PatientRecordsForUnrecognisedPatientID(t *testing.T) {
	for _, patientID := range []string{"Raj Aryan", "user123", "me"} {
		t.Run(patientID, func(t *testing.T) {
			call := types.ToolCall{
				ID:        "call-4",
				Name:      health_tools.ToolGetPatientRecords,
				Arguments: map[string]any{"patientId": patientID},
			}
			model := providertest.Sequence(
				providertest.Call("", call),
				providertest.Text("You have Seasonal Allergies."),
			)
			f := newFixture(t, model)

			outcome := f.agent.Run(context.Background(), Query{Text: "What are my conditions?"})

			require.NoError(t, outcome.Err)
			assert.Equal(t, StateResponded, outcome.State)
			assert.Equal(t, "You have Seasonal Allergies.", outcome.Text)
			require.NotNil(t, outcome.ToolResult)
			assert.Equal(t, "Raj Aryan", outcome.ToolResult["patientName"])
		})
	}
}

func TestRun_ConcurrentRequestsAreIsolated(t *testing.T) {
	const requests = 20

	// The scripted model answers the first turn with a reminder for the
	// medicine named in the query and echoes the reminder it receives back.
	model := providertest.New(func(_ context.Context, req provider.GenerateRequest) (*types.GenerateResponse, error) {
		last := req.Messages[len(req.Messages)-1]

		if last.Role == types.RoleUser {
			return providertest.Call("", types.ToolCall{
				ID:        "call-" + last.Content,
				Name:      health_tools.ToolSetMedicationReminder,
				Arguments: map[string]any{"medicineName": last.Content, "time": "08:00"},
			}), nil
		}

		if len(last.ToolResults) != 1 {
			return nil, fmt.Errorf("expected one tool result, got %d", len(last.ToolResults))
		}
		return providertest.Text(fmt.Sprintf("%s|%s|%d", req.Messages[0].Content, last.ToolResults[0].Data["message"], len(req.Messages))), nil
	})
	f := newFixture(t, model)

	var wg sync.WaitGroup
	results := make([]string, requests)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.agent.ProcessQuery(context.Background(), Query{Text: fmt.Sprintf("medicine-%d", i)}).Text
		}(i)
	}
	wg.Wait()

	for i, result := range results {
		medicine := fmt.Sprintf("medicine-%d", i)
		parts := strings.Split(result, "|")
		require.Len(t, parts, 3, result)

		assert.Equal(t, medicine, parts[0])
		assert.Equal(t, fmt.Sprintf("Reminder set for %s at 08:00.", medicine), parts[1])
		assert.Equal(t, "3", parts[2], "each follow-up carries exactly one exchange")
	}

	assert.Len(t, f.executor.Calls(), requests)
	assert.Len(t, f.store.Reminders(domain.DefaultPatientID), requests)
}

func TestResponseFor(t *testing.T) {
	assert.Equal(t, Response{Text: "Rest well."}, ResponseFor(Outcome{Text: "Rest well.", State: StateResponded}))
	assert.Equal(t, Response{Text: ""}, ResponseFor(Outcome{State: StateResponded}))

	failed := Outcome{
		Text:     "partial text",
		State:    StateFailed,
		ToolCall: &types.ToolCall{Name: health_tools.ToolBookAppointment},
		Err:      fmt.Errorf("%w: boom", tool.ErrExecutionFailed),
	}
	assert.Equal(t, Response{Text: ApologyMessage}, ResponseFor(failed))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "unknown_tool", ErrorKind(fmt.Errorf("%w: foo", tool.ErrUnknownTool)))
	assert.Equal(t, "invalid_request", ErrorKind(ErrEmptyReport))
	assert.Equal(t, "model_empty_response", ErrorKind(fmt.Errorf("%w: %w", types.ErrModelTransportFailed, types.ErrEmptyResponse)))
	assert.Equal(t, "internal", ErrorKind(errors.New("boom")))
}
