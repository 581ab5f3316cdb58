package user

import (
	"context"
	"fmt"

	"github.com/simaogato/etfguard-backend/internal/domain"
)

// UserService handles user registration and lookup
type UserService struct {
	UserRepo domain.UserRepository
}

// NewUserService creates a new UserService instance
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{
		UserRepo: userRepo,
	}
}

// Register creates a user with an empty portfolio for a chat id that is not yet registered
func (s *UserService) Register(ctx context.Context, chatID domain.TelegramChatID, username string) (*domain.User, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("%w: telegram chat id is required", domain.ErrMalformedValue)
	}

	exists, err := s.UserRepo.ExistsByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: chat %s", domain.ErrUserAlreadyRegistered, chatID)
	}

	user := domain.RegisterUser(chatID, username)
	if err := s.UserRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return user, nil
}

// FindByChatID returns the user registered for chatID
func (s *UserService) FindByChatID(ctx context.Context, chatID domain.TelegramChatID) (*domain.User, error) {
	return s.UserRepo.GetByChatID(ctx, chatID)
}

// IsRegistered reports whether chatID belongs to a registered user
func (s *UserService) IsRegistered(ctx context.Context, chatID domain.TelegramChatID) (bool, error) {
	return s.UserRepo.ExistsByChatID(ctx, chatID)
}
