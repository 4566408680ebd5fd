//go:generate mockgen -source=auth.go -destination=mock_auth_test.go -package=handlers

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"github.com/sbilibin2017/gw-labelvaults/internal/services"
)

// Registerer defines the interface that the registration service must implement.
type Registerer interface {
	Register(ctx context.Context, in models.Registration) (*models.AccountDB, string, error)
}

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string) (*models.AccountDB, string, error)
}

// TokenRefresher reissues a session token.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, token string) (string, error)
}

// TokenGetter extracts the bearer token from a request.
type TokenGetter interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// RegisterRequest represents the JSON body for sign-up
// swagger:model RegisterRequest
type RegisterRequest struct {
	// required: true
	// default: jane@example.com
	Email string `json:"email"`

	// Minimum 6 characters
	// required: true
	// default: secret123
	Password string `json:"password"`

	// required: true
	// default: Jane
	FirstName string `json:"first_name"`

	// required: true
	// default: Doe
	LastName string `json:"last_name"`

	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// required: true
	// default: jane@example.com
	Email string `json:"email"`

	// required: true
	// default: secret123
	Password string `json:"password"`
}

// AuthResponse carries the account and its session token
// swagger:model AuthResponse
type AuthResponse struct {
	User  *models.AccountDB `json:"user"`
	Token string            `json:"token"`
}

// TokenResponse carries a fresh session token
// swagger:model TokenResponse
type TokenResponse struct {
	// default: JWT_TOKEN
	Token string `json:"token"`
}

// NewRegisterHandler returns an HTTP handler for account registration.
// @Summary Register account
// @Description Create an account with an empty wallet and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body handlers.RegisterRequest true "Register Request"
// @Success 201 {object} handlers.AuthResponse "Account created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 409 {object} handlers.ErrorResponse "E-mail already registered"
// @Router /auth/register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		acc, token, err := svc.Register(r.Context(), models.Registration{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Company:   req.Company,
		})
		if errors.Is(err, services.ErrConflict) {
			writeError(w, http.StatusConflict, "User already exists with this email")
			return
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		logger.Log.Infow("account registered", "account_id", acc.ID)
		writeJSON(w, http.StatusCreated, AuthResponse{User: acc, Token: token})
	}
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Authenticate by e-mail and password and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body handlers.LoginRequest true "Login Request"
// @Success 200 {object} handlers.AuthResponse "Authenticated"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request body"
// @Failure 401 {object} handlers.ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		acc, token, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{User: acc, Token: token})
	}
}

// NewRefreshTokenHandler returns an HTTP handler that reissues the caller's token.
// @Summary Refresh token
// @Description Issue a token with the same claims and a fresh expiry
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.TokenResponse "New token"
// @Failure 401 {object} handlers.ErrorResponse "Invalid or expired token"
// @Router /auth/refresh-token [post]
// @Security BearerAuth
func NewRefreshTokenHandler(svc TokenRefresher, tokens TokenGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokens.GetTokenFromRequest(ctx, r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Access token required")
			return
		}

		token, err := svc.RefreshToken(ctx, tokenStr)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, TokenResponse{Token: token})
	}
}
