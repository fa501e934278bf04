package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/interntrack/pkg/models"
	"github.com/garnizeh/interntrack/pkg/repository"
)

// Notifier delivers password reset tokens to their owner.
type Notifier interface {
	SendPasswordReset(ctx context.Context, u *models.User, token string) error
}

// LogNotifier writes reset tokens to the api logger. It stands in for a
// mail service in local setups.
type LogNotifier struct{}

func (LogNotifier) SendPasswordReset(ctx context.Context, u *models.User, token string) error {
	logger.InfoContext(ctx, "password reset requested",
		slog.String("user_id", u.ID),
		slog.String("email", u.Email),
		slog.String("reset_token", token),
	)
	return nil
}

type UserHandler struct {
	userRepo       repository.UserRepo
	internshipRepo repository.InternshipRepo
	jwtSecret      string
	tokenDuration  time.Duration

	resetDuration      time.Duration
	allowInsecureReset bool
	notifier           Notifier
}

// NewUserHandler creates a UserHandler with required dependencies. Password
// resets default to 15 minute tokens delivered through LogNotifier.
func NewUserHandler(ur repository.UserRepo, ir repository.InternshipRepo, jwtSecret string, tokenDuration time.Duration) *UserHandler {
	return &UserHandler{
		userRepo:       ur,
		internshipRepo: ir,
		jwtSecret:      jwtSecret,
		tokenDuration:  tokenDuration,
		resetDuration:  15 * time.Minute,
		notifier:       LogNotifier{},
	}
}

// WithPasswordReset overrides the reset token lifetime, the notifier and
// whether the tokenless email+newPassword reset is accepted.
func (h *UserHandler) WithPasswordReset(ttl time.Duration, n Notifier, allowInsecure bool) *UserHandler {
	if ttl > 0 {
		h.resetDuration = ttl
	}
	if n != nil {
		h.notifier = n
	}
	h.allowInsecureReset = allowInsecure
	return h
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func viewOf(u *models.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	NewUsername string `json:"newUsername"`
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type forgotPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// decodeValidated reads the body, checks it against schema and decodes it into v.
func decodeValidated(w http.ResponseWriter, r *http.Request, schema string, v any) bool {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", nil)
		return false
	}
	if err := defaultSchemas.Validate(r.Context(), schema, data); err != nil {
		writeServiceError(w, r, "Invalid request", err)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", nil)
		return false
	}
	return true
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeValidated(w, r, schemaUserRegister, &req) {
		return
	}

	ve := models.NewValidationError()
	if msg := models.ValidateUsername(req.Username); msg != "" {
		ve.Add("username", msg)
	}
	if msg := models.ValidateEmail(req.Email); msg != "" {
		ve.Add("email", msg)
	}
	if msg := models.ValidatePassword(req.Password); msg != "" {
		ve.Add("password", msg)
	}
	if err := ve.OrNil(); err != nil {
		writeServiceError(w, r, "Validation failed", err)
		return
	}

	ctx := r.Context()
	if _, err := h.userRepo.GetUserByEmail(ctx, req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "User already exists", nil)
		return
	} else if !errors.Is(err, models.ErrNotFound) {
		writeServiceError(w, r, "Failed to create user", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeServiceError(w, r, "Error hashing password", err)
		return
	}

	u := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        models.NormalizeEmail(req.Email),
		PasswordHash: string(hash),
	}
	if _, err := h.userRepo.CreateUser(ctx, u); err != nil {
		writeServiceError(w, r, "Failed to create user", err)
		return
	}

	token, err := issueToken(h.jwtSecret, u, h.tokenDuration)
	if err != nil {
		writeServiceError(w, r, "Error generating token", err)
		return
	}

	writeSuccess(w, http.StatusCreated, "", envelope{"user": viewOf(u), "token": token})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeValidated(w, r, schemaUserLogin, &req) {
		return
	}

	u, err := h.userRepo.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeServiceError(w, r, "Login failed", models.ErrInvalidCredentials)
			return
		}
		writeServiceError(w, r, "Login failed", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeServiceError(w, r, "Login failed", models.ErrInvalidCredentials)
		return
	}

	token, err := issueToken(h.jwtSecret, u, h.tokenDuration)
	if err != nil {
		writeServiceError(w, r, "Error generating token", err)
		return
	}

	writeSuccess(w, http.StatusOK, "", envelope{"user": viewOf(u), "token": token})
}

// ForgotPassword starts a reset. The response never reveals whether the
// address has an account unless the insecure development mode is enabled.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeValidated(w, r, schemaForgotPassword, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "Email is required", nil)
		return
	}

	if h.allowInsecureReset {
		h.insecureReset(w, r, req)
		return
	}

	const accepted = "If the email has an account, a reset token has been sent"
	ctx := r.Context()
	u, err := h.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			logger.Error("forgot password lookup", slog.Any("err", err))
		}
		writeSuccess(w, http.StatusAccepted, accepted, nil)
		return
	}

	token, err := issueResetToken(h.jwtSecret, u, h.resetDuration)
	if err != nil {
		writeServiceError(w, r, "Error generating token", err)
		return
	}
	if err := h.notifier.SendPasswordReset(ctx, u, token); err != nil {
		logger.Error("send password reset", slog.Any("err", err), slog.String("user_id", u.ID))
	}

	writeSuccess(w, http.StatusAccepted, accepted, nil)
}

func (h *UserHandler) insecureReset(w http.ResponseWriter, r *http.Request, req forgotPasswordRequest) {
	ctx := r.Context()
	u, err := h.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Email does not have an account", nil)
			return
		}
		writeServiceError(w, r, "Failed to reset password", err)
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "New password is required", nil)
		return
	}
	h.setPassword(w, r, u, req.NewPassword)
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeValidated(w, r, schemaResetPassword, &req) {
		return
	}

	userID, fp, err := parseResetToken(h.jwtSecret, req.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token", nil)
		return
	}

	u, err := h.userRepo.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid or expired reset token", nil)
			return
		}
		writeServiceError(w, r, "Failed to reset password", err)
		return
	}
	// a used token no longer matches the stored hash
	if passwordFingerprint(u.PasswordHash) != fp {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token", nil)
		return
	}

	h.setPassword(w, r, u, req.NewPassword)
}

func (h *UserHandler) setPassword(w http.ResponseWriter, r *http.Request, u *models.User, password string) {
	if msg := models.ValidatePassword(password); msg != "" {
		writeError(w, http.StatusBadRequest, "Validation failed", map[string]string{"newPassword": msg})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		writeServiceError(w, r, "Error hashing password", err)
		return
	}
	u.PasswordHash = string(hash)
	if err := h.userRepo.UpdateUser(r.Context(), u); err != nil {
		writeServiceError(w, r, "Failed to reset password", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Password reset successfully", nil)
}

// self resolves the {id} path variable and checks it against the caller.
func self(w http.ResponseWriter, r *http.Request) (string, bool) {
	callerID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return "", false
	}
	if id := mux.Vars(r)["id"]; id != callerID {
		writeServiceError(w, r, "Forbidden", models.ErrForbidden)
		return "", false
	}
	return callerID, true
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}

	u, err := h.userRepo.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found", nil)
			return
		}
		writeServiceError(w, r, "Failed to load user", err)
		return
	}

	writeSuccess(w, http.StatusOK, "", envelope{"user": viewOf(u)})
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeValidated(w, r, schemaUserUpdate, &req) {
		return
	}

	ctx := r.Context()
	u, err := h.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found", nil)
			return
		}
		writeServiceError(w, r, "Failed to update user", err)
		return
	}

	changed := false
	ve := models.NewValidationError()
	if req.NewUsername != "" {
		if msg := models.ValidateUsername(req.NewUsername); msg != "" {
			ve.Add("newUsername", msg)
		}
	}
	if req.Email != "" {
		if msg := models.ValidateEmail(req.Email); msg != "" {
			ve.Add("email", msg)
		}
	}
	if req.NewPassword != "" {
		if msg := models.ValidatePassword(req.NewPassword); msg != "" {
			ve.Add("newPassword", msg)
		}
	}
	if err := ve.OrNil(); err != nil {
		writeServiceError(w, r, "Validation failed", err)
		return
	}

	if name := strings.TrimSpace(req.NewUsername); name != "" {
		if other, err := h.userRepo.GetUserByUsername(ctx, name); err == nil && other.ID != u.ID {
			writeError(w, http.StatusBadRequest, "Username already taken", nil)
			return
		}
		u.Username = name
		changed = true
	}

	if req.Email != "" {
		email := models.NormalizeEmail(req.Email)
		if other, err := h.userRepo.GetUserByEmail(ctx, email); err == nil && other.ID != u.ID {
			writeError(w, http.StatusBadRequest, "Email already in use", nil)
			return
		}
		u.Email = email
		changed = true
	}

	if req.NewPassword != "" {
		if req.OldPassword == "" {
			writeError(w, http.StatusBadRequest, "Old password is required to change password", nil)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)); err != nil {
			writeError(w, http.StatusBadRequest, "Old password is incorrect", nil)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			writeServiceError(w, r, "Error hashing password", err)
			return
		}
		u.PasswordHash = string(hash)
		changed = true
	}

	if !changed {
		writeError(w, http.StatusBadRequest, "No valid fields provided for update", nil)
		return
	}

	if err := h.userRepo.UpdateUser(ctx, u); err != nil {
		writeServiceError(w, r, "Failed to update user", err)
		return
	}

	writeSuccess(w, http.StatusOK, "User updated successfully", envelope{"user": viewOf(u)})
}

// DeleteUser removes the caller and every internship they own.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := self(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	n, err := h.internshipRepo.DeleteInternshipsByUser(ctx, id)
	if err != nil {
		writeServiceError(w, r, "Failed to delete account", err)
		return
	}
	if err := h.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found", nil)
			return
		}
		writeServiceError(w, r, "Failed to delete account", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Account has been deleted", envelope{"deletedInternships": n})
}
