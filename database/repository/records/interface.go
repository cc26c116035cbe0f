package recordsRepo

import (
	"context"

	"voicetask/database"
	"voicetask/database/repository/filestore"
	"voicetask/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ExecutionRepository is the append-only execution log, capped at models.MaxExecutions.
type ExecutionRepository interface {
	Append(ctx context.Context, exec models.Execution) (string, error)
	List(ctx context.Context, limit int) ([]models.Execution, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]models.Execution, error)
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns an ExecutionRepository backed by MongoDB.
func NewMongoRecordRepo() ExecutionRepository {
	return &mongoRecordRepo{
		coll: database.DB().Collection("executions"),
	}
}

type fileRecordRepo struct {
	coll *filestore.Collection[models.Execution]
}

// NewFileRecordRepo returns an ExecutionRepository stored in <dir>/executions.json.
func NewFileRecordRepo(dir string) (ExecutionRepository, error) {
	coll, err := filestore.NewCollection[models.Execution](dir, "executions")
	if err != nil {
		return nil, err
	}
	return &fileRecordRepo{coll: coll}, nil
}
