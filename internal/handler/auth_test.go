package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bizchat/internal/model"
	"github.com/bizchat/internal/service"
)

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) RequestCode(ctx context.Context, req model.SendCodeRequest) (*model.SendCodeResult, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*model.SendCodeResult)
	return resp, args.Error(1)
}

func (m *mockIdentity) VerifyCode(ctx context.Context, req model.VerifyCodeRequest) (*model.AuthResult, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*model.AuthResult)
	return resp, args.Error(1)
}

func (m *mockIdentity) VerifyToken(ctx context.Context, raw string) (*model.UserResult, error) {
	args := m.Called(ctx, raw)
	resp, _ := args.Get(0).(*model.UserResult)
	return resp, args.Error(1)
}

func (m *mockIdentity) ListSessions(ctx context.Context, userID int64) (*model.SessionsResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*model.SessionsResponse)
	return resp, args.Error(1)
}

func TestAuthHandler_SendCode(t *testing.T) {
	m := new(mockIdentity)
	m.On("RequestCode", mock.Anything, model.SendCodeRequest{Phone: "+7999"}).
		Return(&model.SendCodeResult{Message: "SMS code sent", ExpiresIn: 600, Code: "123456"}, nil).Once()
	m.On("RequestCode", mock.Anything, model.SendCodeRequest{Phone: "+7000"}).
		Return(nil, service.NewRateLimitedError("Too many code requests, try again later")).Once()
	h := NewAuthHandler(m)

	rec := doRequest(h.Post, http.MethodPost, "/api/auth", map[string]any{"action": "send_code", "phone": "+7999"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.SendCodeResult](t, rec)
	assert.Equal(t, 600, got.ExpiresIn)
	assert.Equal(t, "123456", got.Code)

	rec = doRequest(h.Post, http.MethodPost, "/api/auth", map[string]any{"action": "send_code", "phone": "+7000"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	m.AssertExpectations(t)
}

func TestAuthHandler_VerifyToken(t *testing.T) {
	m := new(mockIdentity)
	m.On("VerifyToken", mock.Anything, "old").Return(nil, service.NewAuthenticationError("Token expired")).Once()
	m.On("VerifyToken", mock.Anything, "ghost").Return(nil, service.NewNotFoundError("User not found")).Once()
	h := NewAuthHandler(m)

	rec := doRequest(h.Post, http.MethodPost, "/api/auth", map[string]any{"action": "verify_token", "token": "old"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token expired", decode[errorResponse](t, rec).Error)

	rec = doRequest(h.Post, http.MethodPost, "/api/auth", map[string]any{"action": "verify_token", "token": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(h.Post, http.MethodPost, "/api/auth", map[string]any{"action": "logout"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid action", decode[errorResponse](t, rec).Error)
	m.AssertExpectations(t)
}

func TestAuthHandler_GetSessions(t *testing.T) {
	m := new(mockIdentity)
	m.On("ListSessions", mock.Anything, testUserID).
		Return(&model.SessionsResponse{Sessions: []model.Session{{ID: "s1", DeviceInfo: "phone"}}}, nil).Once()

	rec := doRequest(NewAuthHandler(m).GetSessions, http.MethodGet, "/api/auth/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.SessionsResponse](t, rec)
	require.Len(t, got.Sessions, 1)
	assert.Equal(t, "phone", got.Sessions[0].DeviceInfo)
	m.AssertExpectations(t)
}
