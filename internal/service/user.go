package service

import (
	"context"
	"errors"
	"fmt"

	"goboard/internal/apperr"
	"goboard/internal/model"
	"goboard/internal/store"
)

// UserService handles account registration, login checks and profile
// updates.
type UserService struct {
	users store.UserStore
}

func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

// Register creates an account. The login name must be unused.
func (s *UserService) Register(ctx context.Context, userID, password, name, email string) (UserView, error) {
	_, err := s.users.FindByUserID(ctx, userID)
	if err == nil {
		return UserView{}, apperr.ErrDuplicateUser
	}
	if !errors.Is(err, store.ErrNotFound) {
		return UserView{}, fmt.Errorf("check user: %w", err)
	}

	user, err := s.users.Save(ctx, model.NewUser(userID, password, name, email))
	if err != nil {
		return UserView{}, fmt.Errorf("register user: %w", err)
	}
	return userView(user), nil
}

// Login verifies the credentials and returns the account's profile.
func (s *UserService) Login(ctx context.Context, userID, password string) (UserView, error) {
	user, err := s.users.FindByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return UserView{}, apperr.ErrIncorrectUser
	}
	if err != nil {
		return UserView{}, fmt.Errorf("get user: %w", err)
	}
	if !user.PasswordMatches(password) {
		return UserView{}, apperr.ErrIncorrectUser
	}
	return userView(user), nil
}

// Profile returns the account registered under userID.
func (s *UserService) Profile(ctx context.Context, userID string) (UserView, error) {
	user, err := s.users.FindByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return UserView{}, apperr.ErrUserNotFound
	}
	if err != nil {
		return UserView{}, fmt.Errorf("get user: %w", err)
	}
	return userView(user), nil
}

// List returns every registered account.
func (s *UserService) List(ctx context.Context) ([]UserView, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	return views, nil
}

// UpdateProfile changes name and email after re-verifying the password.
func (s *UserService) UpdateProfile(ctx context.Context, userID, password, name, email string) (UserView, error) {
	user, err := s.users.FindByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return UserView{}, apperr.ErrUserNotFound
	}
	if err != nil {
		return UserView{}, fmt.Errorf("get user: %w", err)
	}
	if !user.PasswordMatches(password) {
		return UserView{}, apperr.ErrIncorrectUser
	}

	user.Name = name
	user.Email = email
	saved, err := s.users.Save(ctx, user)
	if err != nil {
		return UserView{}, fmt.Errorf("update user: %w", err)
	}
	return userView(saved), nil
}
