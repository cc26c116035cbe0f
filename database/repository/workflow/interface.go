package workflowRepo

import (
	"context"
	"errors"

	"voicetask/database"
	"voicetask/database/repository/filestore"
	"voicetask/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no workflow has the requested ID.
var ErrNotFound = errors.New("workflow not found")

// WorkflowRepository is a keyed CRUD store for workflow definitions. List returns storage order.
type WorkflowRepository interface {
	Create(ctx context.Context, w models.Workflow) error
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	List(ctx context.Context) ([]models.Workflow, error)
	Update(ctx context.Context, w models.Workflow) error
	Delete(ctx context.Context, id string) error
}

type mongoWorkflowRepo struct {
	coll *mongo.Collection
}

// NewMongoWorkflowRepo returns a WorkflowRepository backed by MongoDB.
func NewMongoWorkflowRepo() WorkflowRepository {
	return &mongoWorkflowRepo{coll: database.DB().Collection("workflows")}
}

type fileWorkflowRepo struct {
	coll *filestore.Collection[models.Workflow]
}

// NewFileWorkflowRepo returns a WorkflowRepository stored in <dir>/workflows.json.
func NewFileWorkflowRepo(dir string) (WorkflowRepository, error) {
	coll, err := filestore.NewCollection[models.Workflow](dir, "workflows")
	if err != nil {
		return nil, err
	}
	return &fileWorkflowRepo{coll: coll}, nil
}
