// Package users registers accounts and checks their credentials.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/car-spec-api/databases"
	"github.com/linesmerrill/car-spec-api/models"
)

const userSequence = "users"

var (
	// ErrMissingCredentials is returned when username or password is blank
	ErrMissingCredentials = errors.New("Username and password required")
	// ErrDuplicateUser is returned when the username is taken
	ErrDuplicateUser = errors.New("User already exists")
	// ErrInvalidCredentials is returned for an unknown user or a wrong password
	ErrInvalidCredentials = errors.New("Invalid credentials")
)

// Service manages user accounts
type Service struct {
	Users    databases.UserDatabase
	Counters databases.CounterDatabase
}

// NewService returns a Service backed by the given collections
func NewService(users databases.UserDatabase, counters databases.CounterDatabase) *Service {
	return &Service{Users: users, Counters: counters}
}

// Register creates a user with a bcrypt hash of password
func (s *Service) Register(ctx context.Context, username, password string, isAdmin bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	_, err := s.Users.FindOne(ctx, bson.M{"username": username})
	if err == nil {
		return nil, ErrDuplicateUser
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	id, err := s.Counters.Next(ctx, userSequence)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate user id: %w", err)
	}

	user := &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user matching username and password
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.Users.FindOne(ctx, bson.M{"username": username})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin creates an admin account unless username already exists.
// An existing account is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.Register(ctx, username, password, true)
	if errors.Is(err, ErrDuplicateUser) {
		zap.S().Debugw("admin user already present", "username", username)
		return nil
	}
	if err != nil {
		return err
	}
	zap.S().Infow("created admin user", "username", username)
	return nil
}
