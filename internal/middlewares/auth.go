//go:generate mockgen -source=auth.go -destination=mock_auth_test.go -package=middlewares

package middlewares

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/jwt"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
)

// Tokener defines the minimal interface needed by the middleware
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// AccountReader loads the account behind a token.
type AccountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.AccountDB, error)
}

type actorKey struct{}

// WithActor stores the authenticated caller in the context
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated caller, if any.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(models.Actor)
	return actor, ok
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// AuthMiddleware validates the bearer token and reloads the account so that
// deactivated accounts and changed roles take effect immediately.
func AuthMiddleware(tokener Tokener, accounts AccountReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Errorw("authorization failed", "err", err)
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := tokener.GetClaims(ctx, tokenString)
			if err != nil {
				logger.Log.Errorw("authorization failed", "err", err)
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			acc, err := accounts.GetByID(ctx, claims.AccountID)
			if err != nil {
				logger.Log.Errorw("failed to load account", "account_id", claims.AccountID, "err", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if acc == nil || !acc.IsActive {
				logger.Log.Warnw("token for missing or inactive account", "account_id", claims.AccountID)
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx = WithActor(ctx, models.Actor{AccountID: acc.ID, Role: acc.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability lets the request through only when the caller's role grants c.
// It must be mounted after AuthMiddleware.
func RequireCapability(c models.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			}
			if !actor.Role.Can(c) {
				logger.Log.Warnw("capability denied", "account_id", actor.AccountID, "role", actor.Role, "capability", c)
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
