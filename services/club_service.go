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

type CreateClubInput struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	Country      *string `json:"country,omitempty"`
	City         *string `json:"city,omitempty"`
	FederationID *int    `json:"federation_id,omitempty"`
}

type UpdateClubInput struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	Country      *string `json:"country,omitempty"`
	City         *string `json:"city,omitempty"`
	FederationID *int    `json:"federation_id,omitempty"`
}

type ClubService interface {
	CreateClub(ctx context.Context, input CreateClubInput, currentUserID int) (*models.Club, error)
	GetClubByID(ctx context.Context, id int) (*models.Club, error)
	ListClubs(ctx context.Context, limit, offset int) ([]models.Club, error)
	UpdateClub(ctx context.Context, id int, input UpdateClubInput, currentUserID int) (*models.Club, error)
	DeleteClub(ctx context.Context, id, currentUserID int) error
	UploadLogo(ctx context.Context, clubID, currentUserID int, contentType string, file io.Reader) (*models.Club, error)
}

type clubService struct {
	clubRepo repositories.ClubRepository
	uploader storage.FileUploader
}

func NewClubService(clubRepo repositories.ClubRepository, uploader storage.FileUploader) ClubService {
	return &clubService{
		clubRepo: clubRepo,
		uploader: uploader,
	}
}

func (s *clubService) CreateClub(ctx context.Context, input CreateClubInput, currentUserID int) (*models.Club, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrClubTitleRequired
	}

	club := &models.Club{
		Title:        title,
		Description:  input.Description,
		Country:      input.Country,
		City:         input.City,
		FederationID: input.FederationID,
		OwnerID:      currentUserID,
	}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		switch {
		case errors.Is(err, repositories.ErrClubTitleConflict):
			return nil, ErrClubTitleConflict
		case errors.Is(err, repositories.ErrClubInvalidFederation):
			return nil, ErrFederationNotFound
		}
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	return club, nil
}

func (s *clubService) GetClubByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", id, err)
	}
	s.populateLogoURL(club)
	return club, nil
}

func (s *clubService) ListClubs(ctx context.Context, limit, offset int) ([]models.Club, error) {
	clubs, err := s.clubRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	for i := range clubs {
		s.populateLogoURL(&clubs[i])
	}
	return clubs, nil
}

func (s *clubService) UpdateClub(ctx context.Context, id int, input UpdateClubInput, currentUserID int) (*models.Club, error) {
	club, err := s.loadOwnedClub(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrClubTitleRequired
	}

	club.Title = title
	club.Description = input.Description
	club.Country = input.Country
	club.City = input.City
	club.FederationID = input.FederationID

	if err := s.clubRepo.Update(ctx, club); err != nil {
		switch {
		case errors.Is(err, repositories.ErrClubTitleConflict):
			return nil, ErrClubTitleConflict
		case errors.Is(err, repositories.ErrClubInvalidFederation):
			return nil, ErrFederationNotFound
		}
		return nil, fmt.Errorf("failed to update club %d: %w", id, err)
	}
	s.populateLogoURL(club)
	return club, nil
}

func (s *clubService) DeleteClub(ctx context.Context, id, currentUserID int) error {
	club, err := s.loadOwnedClub(ctx, id, currentUserID)
	if err != nil {
		return err
	}
	if err := s.clubRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete club %d: %w", id, err)
	}
	if club.LogoKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *club.LogoKey); err != nil {
			// Осиротевший объект в бакете не стоит отката удаления клуба.
			return nil
		}
	}
	return nil
}

func (s *clubService) UploadLogo(ctx context.Context, clubID, currentUserID int, contentType string, file io.Reader) (*models.Club, error) {
	club, err := s.loadOwnedClub(ctx, clubID, currentUserID)
	if err != nil {
		return nil, err
	}

	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("clubs/%d/logo.%s", clubID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload club logo: %w", err)
	}

	oldKey := club.LogoKey
	if err := s.clubRepo.UpdateLogoKey(ctx, clubID, &key); err != nil {
		return nil, fmt.Errorf("failed to save club logo key: %w", err)
	}
	if oldKey != nil && *oldKey != key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	club.LogoKey = &key
	s.populateLogoURL(club)
	return club, nil
}

func (s *clubService) loadOwnedClub(ctx context.Context, clubID, currentUserID int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", clubID, err)
	}
	if club.OwnerID != currentUserID {
		return nil, ErrForbiddenOperation
	}
	return club, nil
}

func (s *clubService) populateLogoURL(club *models.Club) {
	if club.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*club.LogoKey)
		club.LogoURL = &url
	}
}

func extensionForContentType(contentType string) (string, error) {
	switch contentType {
	case "image/png":
		return "png", nil
	case "image/jpeg":
		return "jpg", nil
	case "image/webp":
		return "webp", nil
	}
	return "", ErrUnsupportedFileType
}
