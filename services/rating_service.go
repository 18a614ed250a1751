package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/foundermafstat/mafstat-server/models"
	"github.com/foundermafstat/mafstat-server/repositories"
	"github.com/foundermafstat/mafstat-server/scoring"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Причины пропуска игры в батче AddGames.
const (
	SkipReasonInvalidID     = "invalid_id"
	SkipReasonDuplicate     = "duplicate"
	SkipReasonGameNotFound  = "game_not_found"
	SkipReasonAlreadyMember = "already_member"
)

// Notifier извещает внешний мир о закоммиченном пересчёте.
// Доставка (push, fan-out) — забота реализации, не движка.
type Notifier interface {
	RatingResultsUpdated(ratingID int)
}

type SkippedGame struct {
	GameID int    `json:"id"`
	Reason string `json:"reason"`
}

type AddGamesResult struct {
	Added   []int         `json:"added"`
	Skipped []SkippedGame `json:"skipped"`
}

type RatingDetails struct {
	Rating  *models.Rating         `json:"rating"`
	Games   []models.Game          `json:"games"`
	Results []*models.RatingResult `json:"results"`
}

type CreateRatingInput struct {
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	ClubID      *int       `json:"club_id,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

type UpdateRatingInput struct {
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	ClubID      *int       `json:"club_id,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsActive    bool       `json:"is_active"`
}

type RatingService interface {
	CreateRating(ctx context.Context, input CreateRatingInput, currentUserID int) (*models.Rating, error)
	GetRatingDetails(ctx context.Context, ratingID int) (*RatingDetails, error)
	ListRatings(ctx context.Context, filter repositories.ListRatingsFilter) ([]models.Rating, error)
	UpdateRating(ctx context.Context, ratingID int, input UpdateRatingInput, currentUserID int) (*models.Rating, error)
	DeleteRating(ctx context.Context, ratingID, currentUserID int) error

	AddGames(ctx context.Context, ratingID int, gameIDs []int, currentUserID int) (*AddGamesResult, error)
	RemoveGame(ctx context.Context, ratingID, gameID, currentUserID int) error

	Recompute(ctx context.Context, ratingID int) error
}

type ratingService struct {
	db                *sql.DB
	ratingRepo        repositories.RatingRepository
	memberRepo        repositories.RatingMemberRepository
	resultRepo        repositories.RatingResultRepository
	gameRepo          repositories.GameRepository
	participationRepo repositories.ParticipationRepository
	userRepo          repositories.UserRepository
	notifier          Notifier
	logger            *slog.Logger

	// Пересчёты одного рейтинга сериализуются; разные рейтинги
	// считаются параллельно, общего замка нет.
	locks sync.Map // ratingID -> *sync.Mutex
}

func NewRatingService(
	db *sql.DB,
	ratingRepo repositories.RatingRepository,
	memberRepo repositories.RatingMemberRepository,
	resultRepo repositories.RatingResultRepository,
	gameRepo repositories.GameRepository,
	participationRepo repositories.ParticipationRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) RatingService {
	return &ratingService{
		db:                db,
		ratingRepo:        ratingRepo,
		memberRepo:        memberRepo,
		resultRepo:        resultRepo,
		gameRepo:          gameRepo,
		participationRepo: participationRepo,
		userRepo:          userRepo,
		notifier:          notifier,
		logger:            logger,
	}
}

func (s *ratingService) CreateRating(ctx context.Context, input CreateRatingInput, currentUserID int) (*models.Rating, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrRatingNameRequired
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrRatingInvalidDateRange
	}

	rating := &models.Rating{
		Name:        name,
		Description: input.Description,
		OwnerID:     currentUserID,
		ClubID:      input.ClubID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    true,
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		if errors.Is(err, repositories.ErrRatingNameConflict) {
			return nil, ErrRatingNameConflict
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}
	return rating, nil
}

// GetRatingDetails отдаёт рейтинг, его игры и последний закоммиченный
// снимок результатов. Чтение никогда не запускает пересчёт.
func (s *ratingService) GetRatingDetails(ctx context.Context, ratingID int) (*RatingDetails, error) {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating %d: %w", ratingID, err)
	}

	var (
		games   []models.Game
		results []*models.RatingResult
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		gameIDs, err := s.memberRepo.ListGameIDs(gCtx, ratingID)
		if err != nil {
			return fmt.Errorf("load membership: %w", err)
		}
		games, err = s.gameRepo.ListByIDs(gCtx, gameIDs)
		if err != nil {
			return fmt.Errorf("load member games: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		results, err = s.resultRepo.ListByRating(gCtx, ratingID)
		if err != nil {
			return fmt.Errorf("load results: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to assemble rating %d: %w", ratingID, err)
	}

	if err := s.attachPlayers(ctx, results); err != nil {
		// Имена игроков — украшение ответа; их отсутствие не повод
		// прятать сами результаты.
		s.logger.Warn("failed to attach players to rating results",
			slog.Int("rating_id", ratingID), slog.Any("error", err))
	}

	return &RatingDetails{Rating: rating, Games: games, Results: results}, nil
}

func (s *ratingService) attachPlayers(ctx context.Context, results []*models.RatingResult) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int, 0, len(results))
	for _, res := range results {
		ids = append(ids, res.PlayerID)
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for _, res := range results {
		res.Player = byID[res.PlayerID]
	}
	return nil
}

func (s *ratingService) ListRatings(ctx context.Context, filter repositories.ListRatingsFilter) ([]models.Rating, error) {
	ratings, err := s.ratingRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}

func (s *ratingService) UpdateRating(ctx context.Context, ratingID int, input UpdateRatingInput, currentUserID int) (*models.Rating, error) {
	rating, err := s.loadOwnedRating(ctx, ratingID, currentUserID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrRatingNameRequired
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrRatingInvalidDateRange
	}

	rating.Name = name
	rating.Description = input.Description
	rating.ClubID = input.ClubID
	rating.StartDate = input.StartDate
	rating.EndDate = input.EndDate
	rating.IsActive = input.IsActive

	if err := s.ratingRepo.Update(ctx, rating); err != nil {
		if errors.Is(err, repositories.ErrRatingNameConflict) {
			return nil, ErrRatingNameConflict
		}
		return nil, fmt.Errorf("failed to update rating %d: %w", ratingID, err)
	}
	return rating, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, ratingID, currentUserID int) error {
	if _, err := s.loadOwnedRating(ctx, ratingID, currentUserID); err != nil {
		return err
	}
	// Членство и результаты удаляются каскадом вместе с рейтингом.
	if err := s.ratingRepo.Delete(ctx, ratingID); err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return ErrRatingNotFound
		}
		return fmt.Errorf("failed to delete rating %d: %w", ratingID, err)
	}
	return nil
}

// AddGames добавляет игры в рейтинг. Батч обрабатывается с частичным
// успехом: некорректный или дублирующийся id попадает в skipped и не
// блокирует остальные. Пересчёт запускается один раз на весь батч.
func (s *ratingService) AddGames(ctx context.Context, ratingID int, gameIDs []int, currentUserID int) (*AddGamesResult, error) {
	if _, err := s.loadOwnedRating(ctx, ratingID, currentUserID); err != nil {
		return nil, err
	}

	result := &AddGamesResult{Added: []int{}, Skipped: []SkippedGame{}}
	seen := make(map[int]bool, len(gameIDs))

	for _, gameID := range gameIDs {
		if gameID <= 0 {
			result.Skipped = append(result.Skipped, SkippedGame{GameID: gameID, Reason: SkipReasonInvalidID})
			continue
		}
		if seen[gameID] {
			result.Skipped = append(result.Skipped, SkippedGame{GameID: gameID, Reason: SkipReasonDuplicate})
			continue
		}
		seen[gameID] = true

		if _, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				result.Skipped = append(result.Skipped, SkippedGame{GameID: gameID, Reason: SkipReasonGameNotFound})
				continue
			}
			return nil, fmt.Errorf("failed to check game %d: %w", gameID, err)
		}

		err := s.memberRepo.Add(ctx, &models.RatingMember{RatingID: ratingID, GameID: gameID})
		if err != nil {
			// Гонка с параллельным добавлением даёт ту же уникальную
			// ошибку, что и существующее членство.
			if errors.Is(err, repositories.ErrRatingMemberExists) {
				result.Skipped = append(result.Skipped, SkippedGame{GameID: gameID, Reason: SkipReasonAlreadyMember})
				continue
			}
			if errors.Is(err, repositories.ErrRatingMemberInvalidGame) {
				result.Skipped = append(result.Skipped, SkippedGame{GameID: gameID, Reason: SkipReasonGameNotFound})
				continue
			}
			return nil, fmt.Errorf("failed to add game %d to rating %d: %w", gameID, ratingID, err)
		}
		result.Added = append(result.Added, gameID)
	}

	if len(result.Added) > 0 {
		if err := s.Recompute(ctx, ratingID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// RemoveGame убирает игру из рейтинга. Удаление не-члена — успешный
// no-op; пересчёт запускается в любом случае (он идемпотентен, так
// проще, чем отслеживать, была ли строка).
func (s *ratingService) RemoveGame(ctx context.Context, ratingID, gameID, currentUserID int) error {
	if _, err := s.loadOwnedRating(ctx, ratingID, currentUserID); err != nil {
		return err
	}

	if _, err := s.memberRepo.Remove(ctx, ratingID, gameID); err != nil {
		return fmt.Errorf("failed to remove game %d from rating %d: %w", gameID, ratingID, err)
	}
	return s.Recompute(ctx, ratingID)
}

func (s *ratingService) loadOwnedRating(ctx context.Context, ratingID, currentUserID int) (*models.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating %d: %w", ratingID, err)
	}
	if rating.OwnerID != currentUserID {
		return nil, ErrForbiddenOperation
	}
	return rating, nil
}

// Recompute полностью пересобирает rating_results для рейтинга.
// Детерминированная функция от (членство, места за столами) и
// лестницы нормализации; идемпотентна; единственный писатель
// rating_results для своего ratingID.
func (s *ratingService) Recompute(ctx context.Context, ratingID int) error {
	unlock := s.lockRating(ratingID)
	defer unlock()

	// Членство читается здесь, под замком, а не из снимка, сделанного
	// до мутации-триггера: итоговый набор всегда отражает последнее
	// закоммиченное состояние.
	gameIDs, err := s.memberRepo.ListGameIDs(ctx, ratingID)
	if err != nil {
		return s.recomputeErr(ratingID, "load membership", err)
	}

	var results []*models.RatingResult
	if len(gameIDs) > 0 {
		var (
			games          []models.Game
			participations []models.Participation
		)
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			games, err = s.gameRepo.ListByIDs(gCtx, gameIDs)
			return err
		})
		g.Go(func() error {
			var err error
			participations, err = s.participationRepo.ListByGameIDs(gCtx, gameIDs)
			return err
		})
		if err := g.Wait(); err != nil {
			return s.recomputeErr(ratingID, "load games", err)
		}
		results = s.accumulate(ratingID, games, participations)
	}

	// Очистка и вставка в одной транзакции: промежуточное состояние
	// с удалёнными, но ещё не вставленными строками снаружи не видно,
	// а упавший пересчёт оставляет прежний снимок нетронутым.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.recomputeErr(ratingID, "begin tx", err)
	}
	if err := s.resultRepo.DeleteByRatingID(ctx, tx, ratingID); err != nil {
		tx.Rollback()
		return s.recomputeErr(ratingID, "clear results", err)
	}
	if err := s.resultRepo.BatchCreate(ctx, tx, results); err != nil {
		tx.Rollback()
		return s.recomputeErr(ratingID, "insert results", err)
	}
	if err := tx.Commit(); err != nil {
		return s.recomputeErr(ratingID, "commit", err)
	}

	if s.notifier != nil {
		s.notifier.RatingResultsUpdated(ratingID)
	}
	return nil
}

func (s *ratingService) accumulate(ratingID int, games []models.Game, participations []models.Participation) []*models.RatingResult {
	outcomes := make(map[int]*models.GameOutcome, len(games))
	for _, g := range games {
		outcomes[g.ID] = g.Outcome
	}

	acc := make(map[int]*models.RatingResult)
	order := make([]int, 0) // порядок первого появления, для стабильного набора
	for _, p := range participations {
		res, ok := acc[p.PlayerID]
		if !ok {
			res = &models.RatingResult{
				RatingID: ratingID,
				PlayerID: p.PlayerID,
				Points:   decimal.Zero,
			}
			acc[p.PlayerID] = res
			order = append(order, p.PlayerID)
		}

		bonus := scoring.Normalize(p.BonusRaw)
		s.warnOnDegradedBonus(ratingID, p)
		won := scoring.Wins(p.Role, outcomes[p.GameID])

		res.GamesPlayed++
		res.Points = res.Points.Add(bonus)
		if won {
			res.Points = res.Points.Add(decimal.NewFromInt(1))
			res.Wins++
			if scoring.MafiaSide(p.Role) {
				res.MafiaWins++
			} else {
				res.CivilianWins++
			}
		}
		// Счётчики ролей не зависят от исхода.
		switch p.Role {
		case models.RoleDon:
			res.DonGames++
		case models.RoleSheriff:
			res.SheriffGames++
		}
		// FirstOuts зарезервировано и всегда 0: ни один путь
		// вычисления его не заполняет.
	}

	results := make([]*models.RatingResult, 0, len(order))
	for _, playerID := range order {
		results = append(results, acc[playerID])
	}
	return results
}

// warnOnDegradedBonus пишет data-quality предупреждение, когда сырое
// значение бонуса не является числом как есть и нормализация сработала
// по фоллбэку. Это не ошибка: битое место даёт нулевой или частичный
// вклад, но не роняет пересчёт.
func (s *ratingService) warnOnDegradedBonus(ratingID int, p models.Participation) {
	if p.BonusRaw == nil {
		return
	}
	cleaned := strings.TrimSpace(strings.ReplaceAll(*p.BonusRaw, ",", "."))
	if cleaned == "" {
		return
	}
	if _, err := decimal.NewFromString(cleaned); err != nil {
		s.logger.Warn("malformed bonus value, normalized with fallback",
			slog.Int("rating_id", ratingID),
			slog.Int("game_id", p.GameID),
			slog.Int("player_id", p.PlayerID),
			slog.String("bonus_raw", *p.BonusRaw),
		)
	}
}

func (s *ratingService) lockRating(ratingID int) func() {
	v, _ := s.locks.LoadOrStore(ratingID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *ratingService) recomputeErr(ratingID int, stage string, err error) error {
	s.logger.Error("rating recompute failed",
		slog.Int("rating_id", ratingID),
		slog.String("stage", stage),
		slog.Any("error", err),
	)
	return fmt.Errorf("recompute rating %d: %s: %w", ratingID, stage, err)
}
