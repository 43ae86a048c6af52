package decor8_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diygenie-backend/internal/decor8"
)

func TestStub_SubmitRequiresImage(t *testing.T) {
	stub := decor8.NewStub()

	_, err := stub.Submit(decor8.SubmitRequest{})
	assert.ErrorIs(t, err, decor8.ErrInvalidResponse)

	jobID, err := stub.Submit(decor8.SubmitRequest{ImageURL: "https://x/img.jpg"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(jobID, "stub-"))
}

func TestStub_JobStatusIsDeterministic(t *testing.T) {
	stub := decor8.NewStub()

	first, err := stub.JobStatus("stub-abc")
	require.NoError(t, err)
	second, err := stub.JobStatus("stub-abc")
	require.NoError(t, err)

	assert.Equal(t, decor8.StateDone, first.State)
	assert.Equal(t, first, second)
	assert.Equal(t, decor8.StubResultURL("stub-abc"), first.ResultURL)
	assert.NotEmpty(t, first.ResultURL)
}
