package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svasthya/svasthya/pkg/ai-sdk/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestToolsCommand(t *testing.T) {
	out, err := execute(t, "tools")
	require.NoError(t, err)

	var manifest []types.Tool
	require.NoError(t, json.Unmarshal([]byte(out), &manifest))
	require.Len(t, manifest, 3)

	assert.Equal(t, "bookAppointment", manifest[0].Name)
	assert.Equal(t, []any{"doctorName", "date", "reason"}, manifest[0].Parameters["required"])
	assert.Equal(t, []string{"medicineName", "time", "frequency"}, manifest[1].PropertyOrder)
	assert.NotContains(t, manifest[2].Parameters, "required")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "svasthya ")
	assert.Contains(t, out, "go:")
}

func TestAskCommand_RequiresQuery(t *testing.T) {
	_, err := execute(t, "ask")
	assert.Error(t, err)
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "analyze", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read report")
}

func TestAnalyzeCommand_InvalidConfig(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(report, []byte("Hb 11"), 0o600))

	t.Setenv("LLM_PROVIDER", "unknown-provider")

	_, err := execute(t, "analyze", report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

type stubCloser struct {
	err    error
	closed bool
}

func (c *stubCloser) Close(ctx context.Context) error {
	c.closed = true
	_, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return errors.New("close called without a deadline")
	}
	return c.err
}

func TestCloseContainer(t *testing.T) {
	for _, closeErr := range []error{nil, errors.New("connection already closed")} {
		c := &stubCloser{err: closeErr}

		assert.NotPanics(t, func() { closeContainer(c) })
		assert.True(t, c.closed)
	}
}
