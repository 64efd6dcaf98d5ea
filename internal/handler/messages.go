package handler

import (
	"context"
	"net/http"

	"github.com/bizchat/internal/middleware"
	"github.com/bizchat/internal/model"
)

type ChatLister interface {
	ListChats(ctx context.Context, userID int64) (*model.ChatsResponse, error)
}

type MessageService interface {
	Send(ctx context.Context, senderID int64, req model.SendMessageRequest) (*model.SendMessageResult, error)
	FetchHistory(ctx context.Context, chatID, requestingUser int64) (*model.MessagesResponse, error)
}

type GroupCreator interface {
	CreateGroup(ctx context.Context, creator int64, req model.CreateGroupRequest) (*model.CreateGroupResult, error)
}

type ReadMarker interface {
	MarkRead(ctx context.Context, messageID, userID int64) (*model.MarkReadResult, error)
	MarkChatRead(ctx context.Context, chatID, userID int64) (*model.MarkChatReadResult, error)
}

type UserSearcher interface {
	SearchByPhoneFragment(ctx context.Context, fragment string, excludingUser int64) (*model.UsersResponse, error)
}

// MessagesHandler serves /api/messages: GET and POST requests dispatched on "action".
type MessagesHandler struct {
	chats    ChatLister
	messages MessageService
	groups   GroupCreator
	reads    ReadMarker
	users    UserSearcher
}

func NewMessagesHandler(chats ChatLister, messages MessageService, groups GroupCreator, reads ReadMarker, users UserSearcher) *MessagesHandler {
	return &MessagesHandler{chats: chats, messages: messages, groups: groups, reads: reads, users: users}
}

func (h *MessagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	action := r.URL.Query().Get("action")
	if action == "" {
		action = "get_chats"
	}
	switch action {
	case "get_chats":
		resp, err := h.chats.ListChats(ctx, userID)
		if err != nil {
			writeServiceError(w, "get_chats", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case "get_messages":
		chatID, ok, err := queryInt64(r, "chat_id")
		if !ok {
			writeError(w, http.StatusBadRequest, "chat_id required")
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "chat_id must be an integer")
			return
		}
		resp, err := h.messages.FetchHistory(ctx, chatID, userID)
		if err != nil {
			writeServiceError(w, "get_messages", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case "search_users":
		resp, err := h.users.SearchByPhoneFragment(ctx, r.URL.Query().Get("phone"), userID)
		if err != nil {
			writeServiceError(w, "search_users", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		writeError(w, http.StatusBadRequest, "Invalid request")
	}
}

type markReadRequest struct {
	MessageID int64 `json:"message_id"`
}

type markChatReadRequest struct {
	ChatID int64 `json:"chat_id"`
}

func (h *MessagesHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	body, action, ok := readActionBody(w, r)
	if !ok {
		return
	}
	switch action {
	case "send_message":
		var req model.SendMessageRequest
		if !decodeBody(w, body, &req) {
			return
		}
		resp, err := h.messages.Send(ctx, userID, req)
		if err != nil {
			writeServiceError(w, "send_message", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case "create_group":
		var req model.CreateGroupRequest
		if !decodeBody(w, body, &req) {
			return
		}
		resp, err := h.groups.CreateGroup(ctx, userID, req)
		if err != nil {
			writeServiceError(w, "create_group", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case "mark_read":
		var req markReadRequest
		if !decodeBody(w, body, &req) {
			return
		}
		if req.MessageID == 0 {
			writeError(w, http.StatusBadRequest, "message_id required")
			return
		}
		resp, err := h.reads.MarkRead(ctx, req.MessageID, userID)
		if err != nil {
			writeServiceError(w, "mark_read", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case "mark_chat_read":
		var req markChatReadRequest
		if !decodeBody(w, body, &req) {
			return
		}
		if req.ChatID == 0 {
			writeError(w, http.StatusBadRequest, "chat_id required")
			return
		}
		resp, err := h.reads.MarkChatRead(ctx, req.ChatID, userID)
		if err != nil {
			writeServiceError(w, "mark_chat_read", err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		writeError(w, http.StatusBadRequest, "Invalid request")
	}
}
