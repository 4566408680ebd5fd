//go:generate mockgen -source=auth.go -destination=mock_auth_test.go -package=services

package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/logger"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// AccountStore defines persistence operations for accounts.
type AccountStore interface {
	Create(ctx context.Context, acc *models.AccountDB) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AccountDB, error)
	GetByEmail(ctx context.Context, email string) (*models.AccountDB, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.AccountDB, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// TokenIssuer issues and refreshes session tokens.
type TokenIssuer interface {
	Generate(ctx context.Context, accountID uuid.UUID, email, role string) (string, error)
	Refresh(ctx context.Context, token string) (string, error)
}

// AuthService handles registration, login and token refresh.
type AuthService struct {
	tx         Transactor
	accounts   AccountStore
	wallets    WalletStore
	tokens     TokenIssuer
	events     Notifier
	bcryptCost int
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(tx Transactor, accounts AccountStore, wallets WalletStore, tokens TokenIssuer, events Notifier, bcryptCost int) *AuthService {
	return &AuthService{
		tx:         tx,
		accounts:   accounts,
		wallets:    wallets,
		tokens:     tokens,
		events:     events,
		bcryptCost: bcryptCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(field, value string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < 2 || n > 50 {
		return validationError("%s must be between 2 and 50 characters", field)
	}
	return nil
}

func validateRegistration(in models.Registration) error {
	if !validEmail(in.Email) {
		return validationError("please provide a valid email")
	}
	if len(in.Password) < minPasswordLength {
		return validationError("password must be at least %d characters long", minPasswordLength)
	}
	if err := validateName("first name", in.FirstName); err != nil {
		return err
	}
	return validateName("last name", in.LastName)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Register creates an account with an empty wallet and returns a session token.
func (svc *AuthService) Register(ctx context.Context, in models.Registration) (*models.AccountDB, string, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateRegistration(in); err != nil {
		return nil, "", err
	}

	existing, err := svc.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		logger.Log.Errorw("failed to check account exists", "email", in.Email, "error", err)
		return nil, "", err
	}
	if existing != nil {
		logger.Log.Infow("account already exists", "email", in.Email)
		return nil, "", ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), svc.bcryptCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "error", err)
		return nil, "", err
	}

	acc := &models.AccountDB{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        optional(in.Phone),
		Company:      optional(in.Company),
		Role:         models.RoleUser,
	}

	err = svc.tx.Do(ctx, func(ctx context.Context) error {
		if err := svc.accounts.Create(ctx, acc); err != nil {
			return err
		}
		_, err := svc.wallets.Create(ctx, acc.ID)
		return err
	})
	if isUniqueViolation(err) {
		return nil, "", ErrConflict
	}
	if err != nil {
		logger.Log.Errorw("failed to create account", "email", in.Email, "error", err)
		return nil, "", err
	}

	token, err := svc.tokens.Generate(ctx, acc.ID, acc.Email, string(acc.Role))
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "account_id", acc.ID, "error", err)
		return nil, "", err
	}

	svc.events.Publish(ctx, models.EventAccountRegistered, acc.ID.String(), map[string]any{
		"email":      acc.Email,
		"first_name": acc.FirstName,
	})

	return acc, token, nil
}

// Login authenticates by e-mail and password. Every failure looks the same to the caller.
func (svc *AuthService) Login(ctx context.Context, email, password string) (*models.AccountDB, string, error) {
	acc, err := svc.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		logger.Log.Errorw("failed to get account", "error", err)
		return nil, "", err
	}
	if acc == nil || !acc.IsActive {
		logger.Log.Infow("login rejected", "email", email)
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		logger.Log.Infow("invalid credentials", "account_id", acc.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := svc.tokens.Generate(ctx, acc.ID, acc.Email, string(acc.Role))
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "account_id", acc.ID, "error", err)
		return nil, "", err
	}

	return acc, token, nil
}

// RefreshToken reissues token with the same claims and a fresh expiry.
func (svc *AuthService) RefreshToken(ctx context.Context, token string) (string, error) {
	refreshed, err := svc.tokens.Refresh(ctx, token)
	if err != nil {
		logger.Log.Infow("token refresh rejected", "error", err)
		return "", ErrUnauthenticated
	}
	return refreshed, nil
}
