package service

import (
	"context"

	"github.com/bizchat/internal/model"
	"github.com/bizchat/internal/repository"
)

type ReadService struct {
	tx       *repository.TxManager
	chats    *ChatService
	messages *MessageService
	reads    *repository.ReadRepository
}

func NewReadService(tx *repository.TxManager, chats *ChatService, messages *MessageService, reads *repository.ReadRepository) *ReadService {
	return &ReadService{tx: tx, chats: chats, messages: messages, reads: reads}
}

// MarkRead records that userID read messageID. Marking twice is a no-op.
func (s *ReadService) MarkRead(ctx context.Context, messageID, userID int64) (*model.MarkReadResult, error) {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		chatID, err := s.messages.chatOf(ctx, messageID)
		if err != nil {
			return err
		}
		if err := s.chats.requireMember(ctx, chatID, userID); err != nil {
			return err
		}
		return s.reads.MarkRead(ctx, messageID, userID)
	})
	if err != nil {
		return nil, wrap("read.MarkRead", err)
	}
	return &model.MarkReadResult{Status: "ok"}, nil
}

// MarkChatRead marks every message from other senders in the chat as read.
func (s *ReadService) MarkChatRead(ctx context.Context, chatID, userID int64) (*model.MarkChatReadResult, error) {
	var marked int64
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.chats.requireMember(ctx, chatID, userID); err != nil {
			return err
		}
		n, err := s.reads.MarkChatRead(ctx, chatID, userID)
		marked = n
		return err
	})
	if err != nil {
		return nil, wrap("read.MarkChatRead", err)
	}
	return &model.MarkChatReadResult{Marked: marked}, nil
}

// UnreadCount counts messages in the chat from other senders that userID has not read.
func (s *ReadService) UnreadCount(ctx context.Context, chatID, userID int64) (int64, error) {
	n, err := s.reads.UnreadCount(ctx, chatID, userID)
	if err != nil {
		return 0, NewInternalError("read.UnreadCount", err)
	}
	return n, nil
}
