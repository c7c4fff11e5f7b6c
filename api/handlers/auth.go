package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/car-spec-api/api"
	"github.com/linesmerrill/car-spec-api/config"
	"github.com/linesmerrill/car-spec-api/users"
)

// Auth exported for testing purposes
type Auth struct {
	Users            *users.Service
	Tokens           *api.TokenIssuer
	AllowAdminSignup bool
	QueryTimeout     time.Duration
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

func readCredentials(r *http.Request) credentials {
	var c credentials
	if r.Body == nil {
		return c
	}
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		zap.S().Debugw("unreadable credentials body", "error", err)
	}
	return c
}

// RegisterHandler creates a user account
func (a Auth) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	c := readCredentials(r)
	isAdmin := c.IsAdmin && a.AllowAdminSignup

	ctx, cancel := queryContext(r, a.QueryTimeout)
	defer cancel()
	user, err := a.Users.Register(ctx, c.Username, c.Password, isAdmin)
	switch {
	case errors.Is(err, users.ErrMissingCredentials), errors.Is(err, users.ErrDuplicateUser):
		config.ErrorStatus(err.Error(), http.StatusBadRequest, w, err)
		return
	case err != nil:
		config.ErrorStatus("internal server error", http.StatusInternalServerError, w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"message": "User created", "user": user})
}

// LoginHandler exchanges credentials for an access token
func (a Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	c := readCredentials(r)

	ctx, cancel := queryContext(r, a.QueryTimeout)
	defer cancel()
	user, err := a.Users.Authenticate(ctx, c.Username, c.Password)
	switch {
	case errors.Is(err, users.ErrMissingCredentials):
		config.ErrorStatus(err.Error(), http.StatusBadRequest, w, err)
		return
	case errors.Is(err, users.ErrInvalidCredentials):
		config.ErrorStatus(err.Error(), http.StatusUnauthorized, w, err)
		return
	case err != nil:
		config.ErrorStatus("internal server error", http.StatusInternalServerError, w, err)
		return
	}

	token, err := a.Tokens.Issue(user)
	if err != nil {
		config.ErrorStatus("token generation failed", http.StatusInternalServerError, w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"access_token": token})
}
