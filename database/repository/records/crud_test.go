package recordsRepo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"voicetask/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecordRepo_CapsAtMaxExecutions(t *testing.T) {
	repo, err := NewFileRecordRepo(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < models.MaxExecutions+5; i++ {
		_, err := repo.Append(ctx, models.Execution{
			ID:         fmt.Sprintf("e%03d", i),
			WorkflowID: "wf",
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, models.MaxExecutions)
	assert.Equal(t, "e104", all[0].ID, "newest first")
	assert.Equal(t, "e005", all[len(all)-1].ID, "oldest five evicted")
}

func TestFileRecordRepo_ListLimitAndByWorkflow(t *testing.T) {
	repo, err := NewFileRecordRepo(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for i, wf := range []string{"a", "b", "a", "a"} {
		_, err := repo.Append(ctx, models.Execution{ID: fmt.Sprint(i), WorkflowID: wf})
		require.NoError(t, err)
	}

	latest, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "3", latest[0].ID)
	assert.Equal(t, "2", latest[1].ID)

	byA, err := repo.ListByWorkflow(ctx, "a")
	require.NoError(t, err)
	require.Len(t, byA, 3)
	assert.Equal(t, "3", byA[0].ID)
}

func TestFileRecordRepo_AssignsIDAndTime(t *testing.T) {
	repo, err := NewFileRecordRepo(t.TempDir())
	require.NoError(t, err)

	id, err := repo.Append(context.Background(), models.Execution{WorkflowID: "wf"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	all, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].ExecutedAt.IsZero())
}
