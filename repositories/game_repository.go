package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/foundermafstat/mafstat-server/models"
	"github.com/lib/pq"
)

var (
	ErrGameNotFound          = errors.New("game not found")
	ErrGameInvalidClub       = errors.New("game club conflict or invalid")
	ErrGameInvalidFederation = errors.New("game federation conflict or invalid")
	ErrGameInvalidReferee    = errors.New("game referee conflict or invalid")
)

type ListGamesFilter struct {
	ClubID       *int
	FederationID *int
	Finished     *bool // true: только с исходом, false: только идущие
	Limit        int
	Offset       int
}

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	List(ctx context.Context, filter ListGamesFilter) ([]models.Game, error)
	ListByIDs(ctx context.Context, ids []int) ([]models.Game, error)
	UpdateOutcome(ctx context.Context, id int, outcome *models.GameOutcome) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `id, type, outcome, club_id, federation_id, referee_id, table_number, comment, created_at`

func scanGame(rowScanner interface{ Scan(...interface{}) error }) (*models.Game, error) {
	var g models.Game
	err := rowScanner.Scan(
		&g.ID, &g.Type, &g.Outcome, &g.ClubID, &g.FederationID,
		&g.RefereeID, &g.TableNumber, &g.Comment, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO games (type, outcome, club_id, federation_id, referee_id, table_number, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		g.Type, g.Outcome, g.ClubID, g.FederationID, g.RefereeID, g.TableNumber, g.Comment,
	).Scan(&g.ID, &g.CreatedAt)
	return handleGameError(err)
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	return scanGame(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresGameRepository) List(ctx context.Context, filter ListGamesFilter) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.ClubID != nil {
		query += fmt.Sprintf(" AND club_id = $%d", argID)
		args = append(args, *filter.ClubID)
		argID++
	}
	if filter.FederationID != nil {
		query += fmt.Sprintf(" AND federation_id = $%d", argID)
		args = append(args, *filter.FederationID)
		argID++
	}
	if filter.Finished != nil {
		if *filter.Finished {
			query += " AND outcome IS NOT NULL"
		} else {
			query += " AND outcome IS NULL"
		}
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		g, errScan := scanGame(rows)
		if errScan != nil {
			return nil, errScan
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

func (r *postgresGameRepository) ListByIDs(ctx context.Context, ids []int) ([]models.Game, error) {
	if len(ids) == 0 {
		return []models.Game{}, nil
	}
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0, len(ids))
	for rows.Next() {
		g, errScan := scanGame(rows)
		if errScan != nil {
			return nil, errScan
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

func (r *postgresGameRepository) UpdateOutcome(ctx context.Context, id int, outcome *models.GameOutcome) error {
	result, err := r.db.ExecContext(ctx, `UPDATE games SET outcome = $1 WHERE id = $2`, outcome, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

// Delete удаляет игру; participations и rating_games уходят каскадом
// (ON DELETE CASCADE), пересчёт затронутых рейтингов — забота сервиса.
func (r *postgresGameRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "games_club_id_fkey":
				return ErrGameInvalidClub
			case "games_federation_id_fkey":
				return ErrGameInvalidFederation
			case "games_referee_id_fkey":
				return ErrGameInvalidReferee
			}
		}
	}
	return err
}
