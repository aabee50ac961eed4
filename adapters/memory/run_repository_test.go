package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"csvpilot/domain/core"
	"csvpilot/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(runID, sessionID string, startedAt time.Time) ports.RunRecord {
	return ports.RunRecord{
		RunID:     core.RunID(runID),
		SessionID: core.SessionID(sessionID),
		DatasetID: "ds_x",
		StartedAt: core.NewTimestamp(startedAt),
	}
}

func TestSaveAndGetRun(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveRun(ctx, record("run_1", "sess_a", time.Now())))

	got, err := repo.GetRun(ctx, "run_1")
	require.NoError(t, err)
	assert.Equal(t, core.RunID("run_1"), got.RunID)

	_, err = repo.GetRun(ctx, "run_missing")
	assert.Error(t, err)
}

func TestListRunsNewestFirst(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, repo.SaveRun(ctx, record("run_1", "sess_a", base)))
	require.NoError(t, repo.SaveRun(ctx, record("run_2", "sess_b", base.Add(time.Second))))
	require.NoError(t, repo.SaveRun(ctx, record("run_3", "sess_a", base.Add(2*time.Second))))

	runs, err := repo.ListRuns(ctx, ports.RunFilters{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, core.RunID("run_3"), runs[0].RunID)
	assert.Equal(t, core.RunID("run_1"), runs[2].RunID)
}

func TestListRunsFilteredBySession(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, repo.SaveRun(ctx, record("run_1", "sess_a", base)))
	require.NoError(t, repo.SaveRun(ctx, record("run_2", "sess_b", base.Add(time.Second))))

	runs, err := repo.ListRuns(ctx, ports.RunFilters{SessionID: "sess_a"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, core.RunID("run_1"), runs[0].RunID)
}

func TestListRunsLimitAndOffset(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("run_%c", 'a'+i)
		require.NoError(t, repo.SaveRun(ctx, record(name, "sess_a", base.Add(time.Duration(i)*time.Second))))
	}

	runs, err := repo.ListRuns(ctx, ports.RunFilters{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, core.RunID("run_d"), runs[0].RunID)

	runs, err = repo.ListRuns(ctx, ports.RunFilters{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, runs)
}
