package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/cocinadelpatito/v1/internal/infrastructure/http/middleware"
	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/pkg/errors"
)

// multipart parsing allows slack above the stored image limit for the
// field headers and boundary.
const maxUploadBytes = 3 << 20

// UserHandler serves the profile endpoints.
type UserHandler struct {
	users  inbound.UserService
	logger *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users inbound.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.Named("user-handler"),
	}
}

type updateProfileRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

type deleteAccountRequest struct {
	Confirmation string `json:"confirmation"`
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.GetProfile(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Update handles PATCH /api/v1/users/me
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, 8<<10, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	profile, err := h.users.UpdateProfile(r.Context(), inbound.UpdateProfileCommand{
		UserID: middleware.UserIDFromContext(r.Context()),
		Name:   req.Name,
		Bio:    req.Bio,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UploadImage handles POST /api/v1/users/me/image. The image arrives as
// the "image" field of a multipart form.
func (h *UserHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, h.logger, errors.NewValidationError("Invalid multipart form or file too large"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, h.logger, errors.NewValidationError("Missing image file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, h.logger, errors.NewBadRequestError("Failed to read image file"))
		return
	}

	profile, err := h.users.UploadProfileImage(r.Context(), inbound.UploadImageCommand{
		UserID:      middleware.UserIDFromContext(r.Context()),
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Delete handles DELETE /api/v1/users/me. The body must carry the
// literal confirmation token.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteAccountRequest
	if err := decodeJSON(w, r, 1<<10, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	if err := h.users.DeleteAccount(r.Context(), userID, req.Confirmation); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
