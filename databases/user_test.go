package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/car-spec-api/config"
	"github.com/linesmerrill/car-spec-api/databases"
	"github.com/linesmerrill/car-spec-api/databases/mocks"
	"github.com/linesmerrill/car-spec-api/models"
)

func TestNewUserDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	userDB := databases.NewUserDatabase(db)

	assert.NotEmpty(t, userDB)
}

func TestUserDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).Username = "mocked-user"
		(*arg).IsAdmin = true
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"username": "broken"}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"username": "mocked-user"}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "users").Return(collectionHelper)

	userDba := databases.NewUserDatabase(dbHelper)

	user, err := userDba.FindOne(context.Background(), bson.M{"username": "broken"})

	assert.Empty(t, user)
	assert.EqualError(t, err, "mocked-error")

	user, err = userDba.FindOne(context.Background(), bson.M{"username": "mocked-user"})

	assert.Equal(t, "mocked-user", user.Username)
	assert.True(t, user.IsAdmin)
	assert.NoError(t, err)
}

func TestUserDatabase_InsertOne(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	insertResult := &mocks.InsertOneResultHelper{}

	user := &models.User{ID: 1, Username: "admin"}
	collectionHelper.On("InsertOne", context.Background(), user).Return(insertResult, nil)
	dbHelper.On("Collection", "users").Return(collectionHelper)

	err := databases.NewUserDatabase(dbHelper).InsertOne(context.Background(), user)

	assert.NoError(t, err)
	collectionHelper.AssertExpectations(t)
}

func TestUserDatabase_EnsureIndexes(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("CreateIndex", context.Background(), mock.Anything).Return("username_1", nil).Run(func(args mock.Arguments) {
		model := args.Get(1).(mongo.IndexModel)
		assert.True(t, *model.Options.Unique)
	})
	dbHelper.On("Collection", "users").Return(collectionHelper)

	err := databases.NewUserDatabase(dbHelper).EnsureIndexes(context.Background())

	assert.NoError(t, err)
}
