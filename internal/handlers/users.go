//go:generate mockgen -source=users.go -destination=mock_users_test.go -package=handlers

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-labelvaults/internal/models"
)

// ProfileManager defines the account self-service operations.
type ProfileManager interface {
	Profile(ctx context.Context, accountID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, upd models.ProfileUpdate) (*models.AccountDB, error)
	ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error
	Delete(ctx context.Context, accountID uuid.UUID) error
}

// UpdateProfileRequest holds the fields to change. Omitted fields stay as they are.
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Company   *string `json:"company,omitempty"`
}

// ChangePasswordRequest represents the JSON body for a password change
// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	// required: true
	CurrentPassword string `json:"current_password"`

	// Minimum 6 characters
	// required: true
	NewPassword string `json:"new_password"`
}

// NewGetProfileHandler returns an HTTP handler for the caller's profile.
// @Summary Get profile
// @Description Account details with wallet balance and order/ticket counts
// @Tags users
// @Produce json
// @Success 200 {object} models.Profile
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /users/profile [get]
// @Security BearerAuth
func NewGetProfileHandler(svc ProfileManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		profile, err := svc.Profile(r.Context(), actor.AccountID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// NewUpdateProfileHandler returns an HTTP handler for profile edits.
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body handlers.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.AccountDB
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /users/profile [put]
// @Security BearerAuth
func NewUpdateProfileHandler(svc ProfileManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req UpdateProfileRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		acc, err := svc.UpdateProfile(r.Context(), actor.AccountID, models.ProfileUpdate{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Company:   req.Company,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, acc)
	}
}

// NewChangePasswordHandler returns an HTTP handler for password changes.
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Param request body handlers.ChangePasswordRequest true "Passwords"
// @Success 200 {object} handlers.MessageResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid input or wrong current password"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /users/change-password [patch]
// @Security BearerAuth
func NewChangePasswordHandler(svc ProfileManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req ChangePasswordRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		if err := svc.ChangePassword(r.Context(), actor.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Password changed successfully"})
	}
}

// NewDeleteAccountHandler returns an HTTP handler that deactivates the caller's account.
// @Summary Delete account
// @Description Soft-deletes the account. Refused while orders are still open.
// @Tags users
// @Produce json
// @Success 200 {object} handlers.MessageResponse
// @Failure 400 {object} handlers.ErrorResponse "Account has open orders"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /users/account [delete]
// @Security BearerAuth
func NewDeleteAccountHandler(svc ProfileManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), actor.AccountID); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Account deleted successfully"})
	}
}
