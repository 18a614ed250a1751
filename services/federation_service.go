package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foundermafstat/mafstat-server/models"
	"github.com/foundermafstat/mafstat-server/repositories"
)

type FederationInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	URL         *string `json:"url,omitempty"`
}

type FederationService interface {
	CreateFederation(ctx context.Context, input FederationInput) (*models.Federation, error)
	GetFederationByID(ctx context.Context, id int) (*models.Federation, error)
	ListFederations(ctx context.Context) ([]models.Federation, error)
	UpdateFederation(ctx context.Context, id int, input FederationInput) (*models.Federation, error)
	DeleteFederation(ctx context.Context, id int) error
}

type federationService struct {
	federationRepo repositories.FederationRepository
}

func NewFederationService(federationRepo repositories.FederationRepository) FederationService {
	return &federationService{federationRepo: federationRepo}
}

func (s *federationService) CreateFederation(ctx context.Context, input FederationInput) (*models.Federation, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrFederationTitleRequired
	}

	federation := &models.Federation{
		Title:       title,
		Description: input.Description,
		URL:         input.URL,
	}
	if err := s.federationRepo.Create(ctx, federation); err != nil {
		if errors.Is(err, repositories.ErrFederationTitleConflict) {
			return nil, ErrFederationTitleConflict
		}
		return nil, fmt.Errorf("failed to create federation: %w", err)
	}
	return federation, nil
}

func (s *federationService) GetFederationByID(ctx context.Context, id int) (*models.Federation, error) {
	federation, err := s.federationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFederationNotFound) {
			return nil, ErrFederationNotFound
		}
		return nil, fmt.Errorf("failed to get federation %d: %w", id, err)
	}
	return federation, nil
}

func (s *federationService) ListFederations(ctx context.Context) ([]models.Federation, error) {
	federations, err := s.federationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list federations: %w", err)
	}
	return federations, nil
}

func (s *federationService) UpdateFederation(ctx context.Context, id int, input FederationInput) (*models.Federation, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrFederationTitleRequired
	}

	federation := &models.Federation{
		ID:          id,
		Title:       title,
		Description: input.Description,
		URL:         input.URL,
	}
	if err := s.federationRepo.Update(ctx, federation); err != nil {
		switch {
		case errors.Is(err, repositories.ErrFederationNotFound):
			return nil, ErrFederationNotFound
		case errors.Is(err, repositories.ErrFederationTitleConflict):
			return nil, ErrFederationTitleConflict
		}
		return nil, fmt.Errorf("failed to update federation %d: %w", id, err)
	}
	return federation, nil
}

func (s *federationService) DeleteFederation(ctx context.Context, id int) error {
	if err := s.federationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrFederationNotFound) {
			return ErrFederationNotFound
		}
		if errors.Is(err, repositories.ErrFederationInUse) {
			return ErrFederationInUse
		}
		return fmt.Errorf("failed to delete federation %d: %w", id, err)
	}
	return nil
}
