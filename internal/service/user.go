package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bizchat/internal/model"
	"github.com/bizchat/internal/repository"
)

const searchLimit = 20

type UserService struct {
	users *repository.UserRepository
}

func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// SearchByPhoneFragment returns up to 20 users whose phone contains fragment, excluding the requester.
func (s *UserService) SearchByPhoneFragment(ctx context.Context, fragment string, excludingUser int64) (*model.UsersResponse, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, NewValidationError("phone required")
	}
	users, err := s.users.SearchByPhone(ctx, fragment, excludingUser, searchLimit)
	if err != nil {
		return nil, NewInternalError("user.SearchByPhoneFragment", err)
	}
	resp := &model.UsersResponse{Users: make([]model.UserPublic, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, users[i].ToPublic())
	}
	return resp, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, NewInternalError("user.GetByID", err)
	}
	return u, nil
}
