package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bizchat/internal/middleware"
	"github.com/bizchat/internal/model"
	"github.com/bizchat/internal/service"
)

type mockMessaging struct {
	mock.Mock
}

func (m *mockMessaging) ListChats(ctx context.Context, userID int64) (*model.ChatsResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*model.ChatsResponse)
	return resp, args.Error(1)
}

func (m *mockMessaging) Send(ctx context.Context, senderID int64, req model.SendMessageRequest) (*model.SendMessageResult, error) {
	args := m.Called(ctx, senderID, req)
	resp, _ := args.Get(0).(*model.SendMessageResult)
	return resp, args.Error(1)
}

func (m *mockMessaging) FetchHistory(ctx context.Context, chatID, userID int64) (*model.MessagesResponse, error) {
	args := m.Called(ctx, chatID, userID)
	resp, _ := args.Get(0).(*model.MessagesResponse)
	return resp, args.Error(1)
}

func (m *mockMessaging) CreateGroup(ctx context.Context, creator int64, req model.CreateGroupRequest) (*model.CreateGroupResult, error) {
	args := m.Called(ctx, creator, req)
	resp, _ := args.Get(0).(*model.CreateGroupResult)
	return resp, args.Error(1)
}

func (m *mockMessaging) MarkRead(ctx context.Context, messageID, userID int64) (*model.MarkReadResult, error) {
	args := m.Called(ctx, messageID, userID)
	resp, _ := args.Get(0).(*model.MarkReadResult)
	return resp, args.Error(1)
}

func (m *mockMessaging) MarkChatRead(ctx context.Context, chatID, userID int64) (*model.MarkChatReadResult, error) {
	args := m.Called(ctx, chatID, userID)
	resp, _ := args.Get(0).(*model.MarkChatReadResult)
	return resp, args.Error(1)
}

func (m *mockMessaging) SearchByPhoneFragment(ctx context.Context, fragment string, excludingUser int64) (*model.UsersResponse, error) {
	args := m.Called(ctx, fragment, excludingUser)
	resp, _ := args.Get(0).(*model.UsersResponse)
	return resp, args.Error(1)
}

const testUserID int64 = 7

func newMessagesHandler(m *mockMessaging) *MessagesHandler {
	return NewMessagesHandler(m, m, m, m, m)
}

func doRequest(h http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), testUserID))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestMessagesHandler_GetChatsIsDefault(t *testing.T) {
	m := new(mockMessaging)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	last := "hi"
	m.On("ListChats", mock.Anything, testUserID).Return(&model.ChatsResponse{Chats: []model.ChatListItem{
		{ID: 3, Type: model.ChatTypePrivate, LastMessage: &last, LastMessageTime: &ts, UnreadCount: 2},
		{ID: 1, Type: model.ChatTypeGroup},
	}}, nil).Once()

	rec := doRequest(newMessagesHandler(m).Get, http.MethodGet, "/api/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string][]map[string]any](t, rec)
	require.Len(t, body["chats"], 2)
	assert.Equal(t, float64(2), body["chats"][0]["unread_count"])
	assert.Nil(t, body["chats"][1]["last_message_time"])
	m.AssertExpectations(t)
}

func TestMessagesHandler_GetMessages(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		setup      func(m *mockMessaging)
		wantStatus int
		wantErr    string
	}{
		{
			name:       "missing chat_id",
			query:      "?action=get_messages",
			wantStatus: http.StatusBadRequest,
			wantErr:    "chat_id required",
		},
		{
			name:       "non numeric chat_id",
			query:      "?action=get_messages&chat_id=abc",
			wantStatus: http.StatusBadRequest,
			wantErr:    "chat_id must be an integer",
		},
		{
			name:  "not a member",
			query: "?action=get_messages&chat_id=5",
			setup: func(m *mockMessaging) {
				m.On("FetchHistory", mock.Anything, int64(5), testUserID).
					Return(nil, service.NewAuthorizationError("Not a member of this chat"))
			},
			wantStatus: http.StatusForbidden,
			wantErr:    "Not a member of this chat",
		},
		{
			name:  "chat missing",
			query: "?action=get_messages&chat_id=6",
			setup: func(m *mockMessaging) {
				m.On("FetchHistory", mock.Anything, int64(6), testUserID).
					Return(nil, service.NewNotFoundError("Chat not found"))
			},
			wantStatus: http.StatusNotFound,
			wantErr:    "Chat not found",
		},
		{
			name:  "ok",
			query: "?action=get_messages&chat_id=5",
			setup: func(m *mockMessaging) {
				m.On("FetchHistory", mock.Anything, int64(5), testUserID).
					Return(&model.MessagesResponse{Messages: []model.MessageView{{ID: 1, IsMine: true}}}, nil)
			},
			wantStatus: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockMessaging)
			if tt.setup != nil {
				tt.setup(m)
			}
			rec := doRequest(newMessagesHandler(m).Get, http.MethodGet, "/api/messages"+tt.query, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decode[errorResponse](t, rec).Error)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestMessagesHandler_SearchUsersValidation(t *testing.T) {
	m := new(mockMessaging)
	m.On("SearchByPhoneFragment", mock.Anything, "", testUserID).
		Return(nil, service.NewValidationError("phone required"))

	rec := doRequest(newMessagesHandler(m).Get, http.MethodGet, "/api/messages?action=search_users", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "phone required", decode[errorResponse](t, rec).Error)
}

func TestMessagesHandler_UnknownAction(t *testing.T) {
	m := new(mockMessaging)
	h := newMessagesHandler(m)

	rec := doRequest(h.Get, http.MethodGet, "/api/messages?action=drop_tables", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h.Post, http.MethodPost, "/api/messages", map[string]any{"action": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h.Post, http.MethodPost, "/api/messages", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessagesHandler_SendMessage(t *testing.T) {
	m := new(mockMessaging)
	recipient := int64(9)
	content := "hello"
	created := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	m.On("Send", mock.Anything, testUserID, model.SendMessageRequest{
		RecipientID: &recipient,
		Content:     &content,
	}).Return(&model.SendMessageResult{MessageID: 11, ChatID: 4, CreatedAt: created}, nil).Once()

	rec := doRequest(newMessagesHandler(m).Post, http.MethodPost, "/api/messages", map[string]any{
		"action":       "send_message",
		"recipient_id": 9,
		"content":      "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.SendMessageResult](t, rec)
	assert.Equal(t, int64(11), got.MessageID)
	assert.Equal(t, int64(4), got.ChatID)
	assert.True(t, created.Equal(got.CreatedAt))
	m.AssertExpectations(t)
}

func TestMessagesHandler_InternalErrorIsNotLeaked(t *testing.T) {
	m := new(mockMessaging)
	m.On("CreateGroup", mock.Anything, testUserID, mock.Anything).
		Return(nil, errors.New("pq: connection refused to 10.0.0.5"))

	rec := doRequest(newMessagesHandler(m).Post, http.MethodPost, "/api/messages", map[string]any{
		"action": "create_group", "title": "T", "member_ids": []int64{1},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode[errorResponse](t, rec).Error)
}

func TestMessagesHandler_MarkRead(t *testing.T) {
	m := new(mockMessaging)
	m.On("MarkRead", mock.Anything, int64(3), testUserID).Return(&model.MarkReadResult{Status: "ok"}, nil).Once()
	m.On("MarkChatRead", mock.Anything, int64(4), testUserID).Return(&model.MarkChatReadResult{Marked: 2}, nil).Once()
	h := newMessagesHandler(m)

	rec := doRequest(h.Post, http.MethodPost, "/api/messages", map[string]any{"action": "mark_read", "message_id": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[model.MarkReadResult](t, rec).Status)

	rec = doRequest(h.Post, http.MethodPost, "/api/messages", map[string]any{"action": "mark_chat_read", "chat_id": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[model.MarkChatReadResult](t, rec).Marked)

	rec = doRequest(h.Post, http.MethodPost, "/api/messages", map[string]any{"action": "mark_read"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.AssertExpectations(t)
}

func TestWriteServiceError_Mapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.NewValidationError("x"), http.StatusBadRequest},
		{service.NewAuthenticationError("x"), http.StatusUnauthorized},
		{service.NewAuthorizationError("x"), http.StatusForbidden},
		{service.NewNotFoundError("x"), http.StatusNotFound},
		{service.NewRateLimitedError("x"), http.StatusTooManyRequests},
		{service.NewInternalError("op", errors.New("db")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeServiceError(rec, "test", tt.err)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}
