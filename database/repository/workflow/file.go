package workflowRepo

import (
	"context"
	"fmt"

	"voicetask/models"
)

func (r *fileWorkflowRepo) Create(_ context.Context, w models.Workflow) error {
	return r.coll.Mutate(func(all []models.Workflow) ([]models.Workflow, error) {
		for _, existing := range all {
			if existing.ID == w.ID {
				return nil, fmt.Errorf("workflow %s already exists", w.ID)
			}
		}
		return append(all, w), nil
	})
}

func (r *fileWorkflowRepo) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	w, ok, err := r.coll.Find(func(w models.Workflow) bool { return w.ID == id })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (r *fileWorkflowRepo) List(_ context.Context) ([]models.Workflow, error) {
	return r.coll.All()
}

func (r *fileWorkflowRepo) Update(_ context.Context, w models.Workflow) error {
	return r.coll.Mutate(func(all []models.Workflow) ([]models.Workflow, error) {
		for i := range all {
			if all[i].ID == w.ID {
				all[i] = w
				return all, nil
			}
		}
		return nil, ErrNotFound
	})
}

func (r *fileWorkflowRepo) Delete(_ context.Context, id string) error {
	return r.coll.Mutate(func(all []models.Workflow) ([]models.Workflow, error) {
		for i := range all {
			if all[i].ID == id {
				return append(all[:i], all[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}
