package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/foundermafstat/mafstat-server/models"
	"github.com/foundermafstat/mafstat-server/repositories"
	"github.com/foundermafstat/mafstat-server/storage"
)

type CreateUserInput struct {
	Nickname  string  `json:"nickname"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	ClubID    *int    `json:"club_id,omitempty"`
	Country   *string `json:"country,omitempty"`
}

type UpdateUserInput struct {
	Nickname  string  `json:"nickname"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	ClubID    *int    `json:"club_id,omitempty"`
	Country   *string `json:"country,omitempty"`
}

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	ListUsers(ctx context.Context, filter repositories.ListUsersFilter) ([]models.User, error)
	UpdateUser(ctx context.Context, id int, input UpdateUserInput, currentUserID int) (*models.User, error)
	UploadAvatar(ctx context.Context, userID, currentUserID int, contentType string, file io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	nickname := strings.TrimSpace(input.Nickname)
	if nickname == "" {
		return nil, ErrNicknameRequired
	}

	user := &models.User{
		Nickname:  nickname,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		ClubID:    input.ClubID,
		Country:   input.Country,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserNicknameConflict) {
			return nil, ErrNicknameConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter repositories.ListUsersFilter) ([]models.User, error) {
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		s.populateAvatarURL(&users[i])
	}
	return users, nil
}

// UpdateUser меняет профиль; разрешено только самому пользователю.
func (s *userService) UpdateUser(ctx context.Context, id int, input UpdateUserInput, currentUserID int) (*models.User, error) {
	if id != currentUserID {
		return nil, ErrForbiddenOperation
	}

	nickname := strings.TrimSpace(input.Nickname)
	if nickname == "" {
		return nil, ErrNicknameRequired
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Nickname = nickname
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.ClubID = input.ClubID
	user.Country = input.Country

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUserNicknameConflict):
			return nil, ErrNicknameConflict
		}
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID, currentUserID int, contentType string, file io.Reader) (*models.User, error) {
	if userID != currentUserID {
		return nil, ErrForbiddenOperation
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("users/%d/avatar.%s", userID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &key); err != nil {
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}
	if oldKey != nil && *oldKey != key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	user.AvatarKey = &key
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) populateAvatarURL(user *models.User) {
	if user.AvatarKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*user.AvatarKey)
		user.AvatarURL = &url
	}
}
