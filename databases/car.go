package databases

//go generate: mockery --name CarDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/car-spec-api/models"
)

const carName = "cars"

// CarDatabase contains the methods to use with the car database
type CarDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Car, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Car, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	Aggregate(ctx context.Context, pipeline interface{}, results interface{}) error
	InsertOne(ctx context.Context, car *models.Car) error
	ReplaceOne(ctx context.Context, filter interface{}, car *models.Car) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type carDatabase struct {
	db DatabaseHelper
}

// NewCarDatabase initializes a new instance of car database with the provided db connection
func NewCarDatabase(db DatabaseHelper) CarDatabase {
	return &carDatabase{
		db: db,
	}
}

func (c *carDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Car, error) {
	car := &models.Car{}
	err := c.db.Collection(carName).FindOne(ctx, filter).Decode(&car)
	if err != nil {
		return nil, err
	}
	return car, nil
}

func (c *carDatabase) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Car, error) {
	var cars []models.Car
	cursor, err := c.db.Collection(carName).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	err = cursor.All(ctx, &cars)
	if err != nil {
		return nil, err
	}
	return cars, nil
}

func (c *carDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(carName).CountDocuments(ctx, filter)
}

func (c *carDatabase) Aggregate(ctx context.Context, pipeline interface{}, results interface{}) error {
	cursor, err := c.db.Collection(carName).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, results)
}

func (c *carDatabase) InsertOne(ctx context.Context, car *models.Car) error {
	_, err := c.db.Collection(carName).InsertOne(ctx, car)
	return err
}

func (c *carDatabase) ReplaceOne(ctx context.Context, filter interface{}, car *models.Car) (int64, error) {
	return c.db.Collection(carName).ReplaceOne(ctx, filter, car)
}

func (c *carDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(carName).DeleteOne(ctx, filter)
}

// EnsureIndexes creates the indexes the catalog queries lean on
func (c *carDatabase) EnsureIndexes(ctx context.Context) error {
	for _, key := range []string{"brand", "model", "year"} {
		_, err := c.db.Collection(carName).CreateIndex(ctx, mongo.IndexModel{Keys: bson.D{{Key: key, Value: 1}}})
		if err != nil {
			return err
		}
	}
	return nil
}
