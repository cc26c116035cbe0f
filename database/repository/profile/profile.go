package profileRepo

import (
	"context"
	"errors"

	"voicetask/database"
	"voicetask/database/repository/filestore"
	"voicetask/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned before the profile has ever been saved.
var ErrNotFound = errors.New("profile not found")

// ProfileRepository stores the singleton profile.
type ProfileRepository interface {
	Get(ctx context.Context) (*models.Profile, error)
	Save(ctx context.Context, p models.Profile) error
}

type mongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo returns a ProfileRepository backed by MongoDB.
func NewMongoProfileRepo() ProfileRepository {
	return &mongoProfileRepo{coll: database.DB().Collection("profile")}
}

func (r *mongoProfileRepo) Get(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	err := r.coll.FindOne(ctx, bson.M{"id": models.ProfileID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoProfileRepo) Save(ctx context.Context, p models.Profile) error {
	p.ID = models.ProfileID
	_, err := r.coll.ReplaceOne(ctx, bson.M{"id": models.ProfileID}, p, options.Replace().SetUpsert(true))
	return err
}

type fileProfileRepo struct {
	coll *filestore.Collection[models.Profile]
}

// NewFileProfileRepo returns a ProfileRepository stored in <dir>/profile.json.
func NewFileProfileRepo(dir string) (ProfileRepository, error) {
	coll, err := filestore.NewCollection[models.Profile](dir, "profile")
	if err != nil {
		return nil, err
	}
	return &fileProfileRepo{coll: coll}, nil
}

func (r *fileProfileRepo) Get(_ context.Context) (*models.Profile, error) {
	p, ok, err := r.coll.Find(func(p models.Profile) bool { return p.ID == models.ProfileID })
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *fileProfileRepo) Save(_ context.Context, p models.Profile) error {
	p.ID = models.ProfileID
	return r.coll.Mutate(func([]models.Profile) ([]models.Profile, error) {
		return []models.Profile{p}, nil
	})
}
