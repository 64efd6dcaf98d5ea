package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/bizchat/internal/model"
	"github.com/bizchat/internal/repository"
)

type MessageService struct {
	tx        *repository.TxManager
	chats     *ChatService
	messages  *repository.MessageRepository
	validator *validator.Validate
}

func NewMessageService(tx *repository.TxManager, chats *ChatService, messages *repository.MessageRepository, v *validator.Validate) *MessageService {
	return &MessageService{tx: tx, chats: chats, messages: messages, validator: v}
}

// Append stores a message from a chat member. File references are opaque and not checked.
func (s *MessageService) Append(ctx context.Context, m *model.Message) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		return s.appendTx(ctx, m)
	})
	return wrap("message.Append", err)
}

func (s *MessageService) appendTx(ctx context.Context, m *model.Message) error {
	if m.Type == "" {
		m.Type = model.MessageTypeText
	}
	if !m.Type.Valid() {
		return NewValidationError("invalid message type")
	}
	if err := s.chats.requireMember(ctx, m.ChatID, m.SenderID); err != nil {
		return err
	}
	return s.messages.Create(ctx, m)
}

// Send handles the send_message action. chat_id wins over recipient_id; with only a
// recipient the private chat is resolved and the message appended in one transaction.
func (s *MessageService) Send(ctx context.Context, senderID int64, req model.SendMessageRequest) (*model.SendMessageResult, error) {
	// Zero or negative ids count as absent.
	if req.ChatID != nil && *req.ChatID <= 0 {
		req.ChatID = nil
	}
	if req.RecipientID != nil && *req.RecipientID <= 0 {
		req.RecipientID = nil
	}
	if req.ChatID == nil && req.RecipientID == nil {
		return nil, NewValidationError("chat_id or recipient_id required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	content := req.Content
	if content == nil {
		empty := ""
		content = &empty
	}
	m := &model.Message{
		SenderID: senderID,
		Type:     req.Type,
		Content:  content,
		FileURL:  req.FileURL,
		FileName: req.FileName,
	}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if req.ChatID != nil {
			m.ChatID = *req.ChatID
		} else {
			id, err := s.chats.resolvePrivate(ctx, senderID, *req.RecipientID)
			if err != nil {
				return err
			}
			m.ChatID = id
		}
		return s.appendTx(ctx, m)
	})
	if err != nil {
		return nil, wrap("message.Send", err)
	}
	return &model.SendMessageResult{MessageID: m.ID, ChatID: m.ChatID, CreatedAt: m.CreatedAt}, nil
}

// FetchHistory returns the whole chat ascending by (created_at, id), annotated for the requester.
func (s *MessageService) FetchHistory(ctx context.Context, chatID, requestingUser int64) (*model.MessagesResponse, error) {
	var list []model.MessageView
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.chats.requireMember(ctx, chatID, requestingUser); err != nil {
			return err
		}
		var err error
		list, err = s.messages.GetHistory(ctx, chatID, requestingUser)
		return err
	})
	if err != nil {
		return nil, wrap("message.FetchHistory", err)
	}
	return &model.MessagesResponse{Messages: list}, nil
}

// chatOf returns the chat a message belongs to.
func (s *MessageService) chatOf(ctx context.Context, messageID int64) (int64, error) {
	m, err := s.messages.GetByID(ctx, messageID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, NewNotFoundError("Message not found")
	}
	if err != nil {
		return 0, err
	}
	return m.ChatID, nil
}
