package workflowRepo

import (
	"context"
	"errors"

	"voicetask/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoWorkflowRepo) Create(ctx context.Context, w models.Workflow) error {
	_, err := r.coll.InsertOne(ctx, w)
	return err
}

func (r *mongoWorkflowRepo) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	var w models.Workflow
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// List returns workflows in insertion order.
func (r *mongoWorkflowRepo) List(ctx context.Context) ([]models.Workflow, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workflows := []models.Workflow{}
	if err := cursor.All(ctx, &workflows); err != nil {
		return nil, err
	}
	return workflows, nil
}

func (r *mongoWorkflowRepo) Update(ctx context.Context, w models.Workflow) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": w.ID}, w)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoWorkflowRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
