package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"voicetask/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func prepare(exec models.Execution) models.Execution {
	if exec.ID == "" {
		exec.ID = uuid.New().String()
	}
	if exec.ExecutedAt.IsZero() {
		exec.ExecutedAt = time.Now()
	}
	return exec
}

// Append inserts an execution and evicts the oldest entries beyond the cap.
func (r *mongoRecordRepo) Append(ctx context.Context, exec models.Execution) (string, error) {
	exec = prepare(exec)
	if _, err := r.coll.InsertOne(ctx, exec); err != nil {
		return "", err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "executedAt", Value: -1}}).
		SetSkip(models.MaxExecutions).
		SetProjection(bson.M{"id": 1})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return exec.ID, fmt.Errorf("find evictable executions: %w", err)
	}
	defer cursor.Close(ctx)

	var stale []struct {
		ID string `bson:"id"`
	}
	if err := cursor.All(ctx, &stale); err != nil {
		return exec.ID, fmt.Errorf("decode evictable executions: %w", err)
	}
	if len(stale) == 0 {
		return exec.ID, nil
	}
	ids := make([]string, 0, len(stale))
	for _, s := range stale {
		ids = append(ids, s.ID)
	}
	if _, err := r.coll.DeleteMany(ctx, bson.M{"id": bson.M{"$in": ids}}); err != nil {
		return exec.ID, fmt.Errorf("evict executions: %w", err)
	}
	return exec.ID, nil
}

// List returns the most recent executions first. limit <= 0 means all.
func (r *mongoRecordRepo) List(ctx context.Context, limit int) ([]models.Execution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "executedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.Execution{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListByWorkflow fetches every execution of one workflow, most recent first.
func (r *mongoRecordRepo) ListByWorkflow(ctx context.Context, workflowID string) ([]models.Execution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "executedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"workflowId": workflowID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.Execution{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Append stores the execution at the end of the log and drops the oldest beyond the cap.
func (r *fileRecordRepo) Append(_ context.Context, exec models.Execution) (string, error) {
	exec = prepare(exec)
	err := r.coll.Mutate(func(all []models.Execution) ([]models.Execution, error) {
		all = append(all, exec)
		if over := len(all) - models.MaxExecutions; over > 0 {
			all = all[over:]
		}
		return all, nil
	})
	if err != nil {
		return "", err
	}
	return exec.ID, nil
}

func (r *fileRecordRepo) List(_ context.Context, limit int) ([]models.Execution, error) {
	all, err := r.coll.All()
	if err != nil {
		return nil, err
	}
	out := make([]models.Execution, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fileRecordRepo) ListByWorkflow(_ context.Context, workflowID string) ([]models.Execution, error) {
	all, err := r.coll.All()
	if err != nil {
		return nil, err
	}
	out := []models.Execution{}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].WorkflowID == workflowID {
			out = append(out, all[i])
		}
	}
	return out, nil
}
