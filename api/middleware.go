package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/car-spec-api/config"
)

// AdminGroup is the group granted to tokens carrying the admin claim
const AdminGroup = "admin"

type userKey struct{}

// Guard authenticates bearer tokens. Verified tokens are cached for the
// cache ttl, so a token stays accepted for at most that long past its
// expiry.
type Guard struct {
	authenticator auth.Authenticator
	tokens        *TokenIssuer
}

// NewGuard sets up a go-guardian bearer strategy backed by tokens
func NewGuard(tokens *TokenIssuer, cacheTTL time.Duration) *Guard {
	g := &Guard{authenticator: auth.New(), tokens: tokens}
	cache := store.NewFIFO(context.Background(), cacheTTL)
	g.authenticator.EnableStrategy(bearer.CachedStrategyKey, bearer.New(g.verify, cache))
	return g
}

func (g *Guard) verify(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	var groups []string
	if claims.IsAdmin {
		groups = []string{AdminGroup}
	}
	return auth.NewDefaultUser(claims.Username, claims.Subject, groups, nil), nil
}

// Authenticated rejects requests without a valid bearer token
func (g *Guard) Authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.authenticator.Authenticate(r)
		if err != nil {
			config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
			return
		}
		zap.S().Debugw("user authenticated", "username", user.UserName())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

// AdminOnly rejects requests whose token lacks the admin group
func (g *Guard) AdminOnly(next http.Handler) http.Handler {
	return g.Authenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		if !isAdmin(user) {
			config.ErrorStatus("Admin privileges required", http.StatusForbidden, w, errors.New("missing admin group"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// UserFromContext returns the user stored by Authenticated
func UserFromContext(ctx context.Context) (auth.Info, bool) {
	user, ok := ctx.Value(userKey{}).(auth.Info)
	return user, ok
}

func isAdmin(user auth.Info) bool {
	if user == nil {
		return false
	}
	for _, group := range user.Groups() {
		if group == AdminGroup {
			return true
		}
	}
	return false
}
