package app

import (
	"context"
	"testing"

	"dcimsync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSkipsFailedFiles(t *testing.T) {
	transport := &mockTransport{
		content:  map[string]string{"A.JPG": "a", "C.JPG": "c"},
		failures: map[string]int{"B.JPG": 10},
	}
	recorder := &mockRecorder{}
	var progress [][2]int
	e := &Executor{
		Fetcher:  newFetcher(t, transport, &fakeClock{}),
		Recorder: recorder,
		OnProgress: func(current, total int) {
			progress = append(progress, [2]int{current, total})
		},
	}

	plan := domain.FetchPlan{Source: x100s, Items: files("A.JPG", "B.JPG", "C.JPG")}
	result, err := e.Execute(context.Background(), plan)
	require.NoError(t, err)

	assert.Len(t, result.Staged, 2)
	assert.Equal(t, []string{"B.JPG"}, result.Failed)
	assert.Equal(t, 2, recorder.fetched)
	assert.Equal(t, 1, recorder.skipped)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
}

func TestExecuteStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := &Executor{Fetcher: newFetcher(t, &mockTransport{}, &fakeClock{})}

	result, err := e.Execute(ctx, domain.FetchPlan{Source: x100s, Items: files("A.JPG")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Staged)
}

func TestExecuteRequiresFetcher(t *testing.T) {
	_, err := (&Executor{}).Execute(context.Background(), domain.FetchPlan{})
	assert.Error(t, err)
}
