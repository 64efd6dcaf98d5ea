package service

import (
	"context"

	"github.com/bizchat/internal/model"
	"github.com/bizchat/internal/repository"
)

type ChatListService struct {
	list *repository.ChatListRepository
}

func NewChatListService(list *repository.ChatListRepository) *ChatListService {
	return &ChatListService{list: list}
}

// ListChats returns the user's chats, most recently active first; chats without messages come last.
func (s *ChatListService) ListChats(ctx context.Context, userID int64) (*model.ChatsResponse, error) {
	items, err := s.list.ListForUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("chatlist.ListChats", err)
	}
	return &model.ChatsResponse{Chats: items}, nil
}
