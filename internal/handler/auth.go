package handler

import (
	"context"
	"net/http"

	"github.com/bizchat/internal/middleware"
	"github.com/bizchat/internal/model"
)

type IdentityService interface {
	RequestCode(ctx context.Context, req model.SendCodeRequest) (*model.SendCodeResult, error)
	VerifyCode(ctx context.Context, req model.VerifyCodeRequest) (*model.AuthResult, error)
	VerifyToken(ctx context.Context, raw string) (*model.UserResult, error)
	ListSessions(ctx context.Context, userID int64) (*model.SessionsResponse, error)
}

type AuthHandler struct {
	svc IdentityService
}

func NewAuthHandler(svc IdentityService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

// Post serves POST /api/auth with actions send_code, verify_code and verify_token.
func (h *AuthHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, action, ok := readActionBody(w, r)
	if !ok {
		return
	}
	switch action {
	case "send_code":
		var req model.SendCodeRequest
		if !decodeBody(w, body, &req) {
			return
		}
		resp, err := h.svc.RequestCode(ctx, req)
		if err != nil {
			writeServiceError(w, "send_code", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case "verify_code":
		var req model.VerifyCodeRequest
		if !decodeBody(w, body, &req) {
			return
		}
		resp, err := h.svc.VerifyCode(ctx, req)
		if err != nil {
			writeServiceError(w, "verify_code", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case "verify_token":
		var req verifyTokenRequest
		if !decodeBody(w, body, &req) {
			return
		}
		resp, err := h.svc.VerifyToken(ctx, req.Token)
		if err != nil {
			writeServiceError(w, "verify_token", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		writeError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *AuthHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ListSessions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, "sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
