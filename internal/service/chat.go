package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/model"
	"github.com/bizchat/internal/repository"
)

// privateChatAttempts bounds insert-then-lookup rounds in ResolveOrCreatePrivate.
const privateChatAttempts = 2

type ChatService struct {
	tx        *repository.TxManager
	chats     *repository.ChatRepository
	users     *repository.UserRepository
	validator *validator.Validate
}

func NewChatService(tx *repository.TxManager, chats *repository.ChatRepository, users *repository.UserRepository, v *validator.Validate) *ChatService {
	return &ChatService{tx: tx, chats: chats, users: users, validator: v}
}

// ResolveOrCreatePrivate returns the one private chat shared by userA and userB, creating it if absent.
// The result is the same for (a, b) and (b, a) and under concurrent first contact.
func (s *ChatService) ResolveOrCreatePrivate(ctx context.Context, userA, userB int64) (int64, error) {
	var chatID int64
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		id, err := s.resolvePrivate(ctx, userA, userB)
		chatID = id
		return err
	})
	if err != nil {
		return 0, wrap("chat.ResolveOrCreatePrivate", err)
	}
	return chatID, nil
}

// resolvePrivate must run inside a transaction so the chat and its members commit together.
func (s *ChatService) resolvePrivate(ctx context.Context, userA, userB int64) (int64, error) {
	if userA == userB {
		return 0, NewValidationError("cannot start a private chat with yourself")
	}
	if _, err := s.users.GetByID(ctx, userB); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, NewNotFoundError("Recipient not found")
		}
		return 0, err
	}
	key := model.PrivateKey(userA, userB)
	for attempt := 0; attempt < privateChatAttempts; attempt++ {
		id, err := s.chats.InsertPrivate(ctx, key, userA)
		if err == nil {
			if err := s.chats.AddMembers(ctx, id, []int64{userA, userB}, model.MemberRoleMember); err != nil {
				return 0, err
			}
			logger.Infof("chat: created private chat %d for %s", id, key)
			return id, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return 0, err
		}
		id, err = s.chats.FindByPrivateKey(ctx, key)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return 0, err
		}
		logger.Infof("chat: private chat %s vanished between insert and lookup, attempt %d", key, attempt+1)
	}
	return 0, fmt.Errorf("resolve private chat %s: no chat after %d attempts", key, privateChatAttempts)
}

// CreateGroup creates a group owned by creator. Member ids are deduplicated and the creator is dropped from them.
func (s *ChatService) CreateGroup(ctx context.Context, creator int64, req model.CreateGroupRequest) (*model.CreateGroupResult, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || len(req.MemberIDs) == 0 {
		return nil, NewValidationError("title and member_ids required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	seen := make(map[int64]struct{}, len(req.MemberIDs))
	members := make([]int64, 0, len(req.MemberIDs))
	for _, id := range req.MemberIDs {
		if id == creator {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	if len(members) == 0 {
		return nil, NewValidationError("member_ids must name someone other than the creator")
	}

	var chatID int64
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		n, err := s.users.CountExisting(ctx, members)
		if err != nil {
			return err
		}
		if n != len(members) {
			return NewNotFoundError("One or more members not found")
		}
		chatID, err = s.chats.CreateGroup(ctx, req.Title, creator)
		if err != nil {
			return err
		}
		if err := s.chats.AddMembers(ctx, chatID, []int64{creator}, model.MemberRoleAdmin); err != nil {
			return err
		}
		return s.chats.AddMembers(ctx, chatID, members, model.MemberRoleMember)
	})
	if err != nil {
		return nil, wrap("chat.CreateGroup", err)
	}
	return &model.CreateGroupResult{ChatID: chatID}, nil
}

// requireMember maps chat existence and membership to NotFound and Authorization errors.
func (s *ChatService) requireMember(ctx context.Context, chatID, userID int64) error {
	exists, member, err := s.chats.Membership(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return NewNotFoundError("Chat not found")
	}
	if !member {
		return NewAuthorizationError("Not a member of this chat")
	}
	return nil
}
