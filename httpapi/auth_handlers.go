package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"tripmanager/auth"
)

// AuthService is the slice of the auth service used by the HTTP layer.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.User, error)
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error)
	VerifyEmail(ctx context.Context, token string) error
	GetUserByID(ctx context.Context, userID string) (*auth.User, error)
}

type authHandler struct {
	service AuthService
	logger  *zap.Logger
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", zap.String("user_id", user.ID))
	writeJSON(w, h.logger, http.StatusCreated, toUserView(*user))
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"token": result.Token,
		"user":  toUserView(result.User),
	})
}

func (h *authHandler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	if err := h.service.VerifyEmail(r.Context(), req.Token); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "verified"})
}

func (h *authHandler) me(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	user, err := h.service.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toUserView(*user))
}
