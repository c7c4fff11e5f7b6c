package users_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/car-spec-api/databases/mocks"
	"github.com/linesmerrill/car-spec-api/models"
	"github.com/linesmerrill/car-spec-api/users"
)

func newService(t *testing.T) (*users.Service, *mocks.UserDatabase, *mocks.CounterDatabase) {
	t.Helper()
	udb := &mocks.UserDatabase{}
	cdb := &mocks.CounterDatabase{}
	t.Cleanup(func() {
		udb.AssertExpectations(t)
		cdb.AssertExpectations(t)
	})
	return users.NewService(udb, cdb), udb, cdb
}

func TestRegister(t *testing.T) {
	s, udb, cdb := newService(t)
	udb.On("FindOne", mock.Anything, bson.M{"username": "alice"}).Return(nil, mongo.ErrNoDocuments)
	cdb.On("Next", mock.Anything, "users").Return(int64(7), nil)
	udb.On("InsertOne", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == 7 && u.Username == "alice" && !u.IsAdmin &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")) == nil
	})).Return(nil)

	user, err := s.Register(context.Background(), " alice ", "s3cret", false)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestRegister_MissingCredentials(t *testing.T) {
	s, _, _ := newService(t)

	_, err := s.Register(context.Background(), "alice", "", false)
	assert.ErrorIs(t, err, users.ErrMissingCredentials)
}

func TestRegister_Duplicate(t *testing.T) {
	s, udb, _ := newService(t)
	udb.On("FindOne", mock.Anything, bson.M{"username": "alice"}).Return(&models.User{ID: 1, Username: "alice"}, nil)

	_, err := s.Register(context.Background(), "alice", "pw", false)
	assert.ErrorIs(t, err, users.ErrDuplicateUser)
}

func TestRegister_DuplicateKeyOnInsert(t *testing.T) {
	s, udb, cdb := newService(t)
	udb.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)
	cdb.On("Next", mock.Anything, "users").Return(int64(2), nil)
	udb.On("InsertOne", mock.Anything, mock.Anything).Return(mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	})

	_, err := s.Register(context.Background(), "alice", "pw", false)
	assert.ErrorIs(t, err, users.ErrDuplicateUser)
}

func TestRegister_LookupFails(t *testing.T) {
	s, udb, _ := newService(t)
	udb.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	_, err := s.Register(context.Background(), "alice", "pw", false)
	assert.EqualError(t, err, `failed to look up user "alice": mocked-error`)
}

func TestAuthenticate(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	stored := &models.User{ID: 3, Username: "bob", PasswordHash: string(hash), IsAdmin: true}

	tests := []struct {
		name     string
		password string
		found    *models.User
		findErr  error
		wantErr  error
	}{
		{"valid", "pw", stored, nil, nil},
		{"wrong password", "nope", stored, nil, users.ErrInvalidCredentials},
		{"unknown user", "pw", nil, mongo.ErrNoDocuments, users.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, udb, _ := newService(t)
			udb.On("FindOne", mock.Anything, bson.M{"username": "bob"}).Return(tt.found, tt.findErr)

			user, err := s.Authenticate(context.Background(), "bob", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, user.IsAdmin)
		})
	}
}

func TestEnsureAdmin_Existing(t *testing.T) {
	s, udb, _ := newService(t)
	udb.On("FindOne", mock.Anything, bson.M{"username": "root"}).Return(&models.User{Username: "root"}, nil)

	assert.NoError(t, s.EnsureAdmin(context.Background(), "root", "pw"))
}

func TestEnsureAdmin_Creates(t *testing.T) {
	s, udb, cdb := newService(t)
	udb.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)
	cdb.On("Next", mock.Anything, "users").Return(int64(1), nil)
	udb.On("InsertOne", mock.Anything, mock.MatchedBy(func(u *models.User) bool { return u.IsAdmin })).Return(nil)

	assert.NoError(t, s.EnsureAdmin(context.Background(), "root", "pw"))
}
