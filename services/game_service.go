package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/foundermafstat/mafstat-server/models"
	"github.com/foundermafstat/mafstat-server/repositories"
)

// RatingRecomputer — точка входа пересчёта; игровому сервису не нужен
// весь RatingService, только триггер.
type RatingRecomputer interface {
	Recompute(ctx context.Context, ratingID int) error
}

type SeatInput struct {
	PlayerID   int         `json:"player_id"`
	Role       models.Role `json:"role"`
	SlotNumber int         `json:"slot_number"`
	Fouls      int         `json:"fouls"`
	BonusRaw   *string     `json:"bonus_raw"`
}

type CreateGameInput struct {
	Type         models.GameType     `json:"type"`
	Outcome      *models.GameOutcome `json:"outcome,omitempty"`
	ClubID       *int                `json:"club_id,omitempty"`
	FederationID *int                `json:"federation_id,omitempty"`
	RefereeID    *int                `json:"referee_id,omitempty"`
	TableNumber  *int                `json:"table_number,omitempty"`
	Comment      *string             `json:"comment,omitempty"`
	Seats        []SeatInput         `json:"seats"`
}

type GameService interface {
	CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error)
	GetGameByID(ctx context.Context, id int) (*models.Game, error)
	ListGames(ctx context.Context, filter repositories.ListGamesFilter) ([]models.Game, error)
	SetResult(ctx context.Context, gameID int, outcome *models.GameOutcome) (*models.Game, error)
	DeleteGame(ctx context.Context, id int) error
}

type gameService struct {
	db                *sql.DB
	gameRepo          repositories.GameRepository
	participationRepo repositories.ParticipationRepository
	memberRepo        repositories.RatingMemberRepository
	recomputer        RatingRecomputer
	logger            *slog.Logger
}

func NewGameService(
	db *sql.DB,
	gameRepo repositories.GameRepository,
	participationRepo repositories.ParticipationRepository,
	memberRepo repositories.RatingMemberRepository,
	recomputer RatingRecomputer,
	logger *slog.Logger,
) GameService {
	return &gameService{
		db:                db,
		gameRepo:          gameRepo,
		participationRepo: participationRepo,
		memberRepo:        memberRepo,
		recomputer:        recomputer,
		logger:            logger,
	}
}

// CreateGame создаёт игру вместе с местами в одной транзакции.
// Новая игра ещё не входит ни в один рейтинг, пересчёт не нужен.
func (s *gameService) CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error) {
	if err := validateGameInput(input); err != nil {
		return nil, err
	}

	game := &models.Game{
		Type:         input.Type,
		Outcome:      input.Outcome,
		ClubID:       input.ClubID,
		FederationID: input.FederationID,
		RefereeID:    input.RefereeID,
		TableNumber:  input.TableNumber,
		Comment:      input.Comment,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin game transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.gameRepo.Create(ctx, tx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	participations := make([]*models.Participation, 0, len(input.Seats))
	for _, seat := range input.Seats {
		participations = append(participations, &models.Participation{
			GameID:     game.ID,
			PlayerID:   seat.PlayerID,
			Role:       seat.Role,
			SlotNumber: seat.SlotNumber,
			Fouls:      seat.Fouls,
			BonusRaw:   seat.BonusRaw,
		})
	}
	if err := s.participationRepo.BatchCreate(ctx, tx, participations); err != nil {
		return nil, fmt.Errorf("failed to create participations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit game transaction: %w", err)
	}

	for i := range participations {
		game.Participations = append(game.Participations, *participations[i])
	}
	return game, nil
}

func (s *gameService) GetGameByID(ctx context.Context, id int) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}
	participations, err := s.participationRepo.ListByGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load participations for game %d: %w", id, err)
	}
	game.Participations = participations
	return game, nil
}

func (s *gameService) ListGames(ctx context.Context, filter repositories.ListGamesFilter) ([]models.Game, error) {
	games, err := s.gameRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// SetResult выставляет (или сбрасывает, при nil) исход игры и
// пересчитывает каждый рейтинг, в который игра входит.
func (s *gameService) SetResult(ctx context.Context, gameID int, outcome *models.GameOutcome) (*models.Game, error) {
	if outcome != nil && !outcome.Valid() {
		return nil, ErrGameInvalidOutcome
	}

	if err := s.gameRepo.UpdateOutcome(ctx, gameID, outcome); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to update outcome of game %d: %w", gameID, err)
	}

	if err := s.recomputeAffected(ctx, gameID); err != nil {
		return nil, err
	}
	return s.GetGameByID(ctx, gameID)
}

// DeleteGame удаляет игру (места и членство уходят каскадом) и
// пересчитывает рейтинги, в которых игра состояла.
func (s *gameService) DeleteGame(ctx context.Context, id int) error {
	// Затронутые рейтинги нужно собрать до удаления: после каскада
	// строк членства уже не будет.
	affected, err := s.memberRepo.ListRatingIDsByGame(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list ratings for game %d: %w", id, err)
	}

	if err := s.gameRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("failed to delete game %d: %w", id, err)
	}

	for _, ratingID := range affected {
		if err := s.recomputer.Recompute(ctx, ratingID); err != nil {
			return err
		}
	}
	return nil
}

func (s *gameService) recomputeAffected(ctx context.Context, gameID int) error {
	affected, err := s.memberRepo.ListRatingIDsByGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to list ratings for game %d: %w", gameID, err)
	}
	for _, ratingID := range affected {
		if err := s.recomputer.Recompute(ctx, ratingID); err != nil {
			return err
		}
	}
	return nil
}

func validateGameInput(input CreateGameInput) error {
	switch input.Type {
	case models.GameTypeClassic, models.GameTypeExtended, models.GameTypeMini:
	default:
		return ErrGameInvalidType
	}
	if input.Outcome != nil && !input.Outcome.Valid() {
		return ErrGameInvalidOutcome
	}
	if len(input.Seats) == 0 {
		return ErrGameNoSeats
	}

	slots := make(map[int]bool, len(input.Seats))
	players := make(map[int]bool, len(input.Seats))
	for _, seat := range input.Seats {
		if !seat.Role.Valid() {
			return ErrGameInvalidRole
		}
		if seat.SlotNumber <= 0 {
			return ErrGameInvalidSlot
		}
		if seat.Fouls < 0 {
			return ErrGameNegativeFouls
		}
		if slots[seat.SlotNumber] {
			return ErrGameDuplicateSlot
		}
		slots[seat.SlotNumber] = true
		if players[seat.PlayerID] {
			return ErrGameDuplicatePlayer
		}
		players[seat.PlayerID] = true
	}
	return nil
}
