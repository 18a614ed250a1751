package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/foundermafstat/mafstat-server/models"
	"github.com/lib/pq"
)

var (
	// ErrRatingMemberExists возвращается при попытке повторно добавить игру
	// в рейтинг (уникальный индекс по паре rating_id, game_id).
	ErrRatingMemberExists      = errors.New("game is already a member of this rating")
	ErrRatingMemberInvalidGame = errors.New("rating member game conflict or invalid")
)

type RatingMemberRepository interface {
	Add(ctx context.Context, member *models.RatingMember) error
	Exists(ctx context.Context, ratingID, gameID int) (bool, error)
	// Remove удаляет строку членства; false без ошибки, если её не было.
	Remove(ctx context.Context, ratingID, gameID int) (bool, error)
	ListGameIDs(ctx context.Context, ratingID int) ([]int, error)
	ListRatingIDsByGame(ctx context.Context, gameID int) ([]int, error)
}

type postgresRatingMemberRepository struct {
	db *sql.DB
}

func NewPostgresRatingMemberRepository(db *sql.DB) RatingMemberRepository {
	return &postgresRatingMemberRepository{db: db}
}

func (r *postgresRatingMemberRepository) Add(ctx context.Context, member *models.RatingMember) error {
	query := `
		INSERT INTO rating_games (rating_id, game_id)
		VALUES ($1, $2)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, member.RatingID, member.GameID).Scan(&member.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrRatingMemberExists
			case "23503":
				if pqErr.Constraint == "rating_games_game_id_fkey" {
					return ErrRatingMemberInvalidGame
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresRatingMemberRepository) Exists(ctx context.Context, ratingID, gameID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM rating_games WHERE rating_id = $1 AND game_id = $2)`,
		ratingID, gameID,
	).Scan(&exists)
	return exists, err
}

func (r *postgresRatingMemberRepository) Remove(ctx context.Context, ratingID, gameID int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM rating_games WHERE rating_id = $1 AND game_id = $2`,
		ratingID, gameID,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *postgresRatingMemberRepository) ListGameIDs(ctx context.Context, ratingID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id FROM rating_games WHERE rating_id = $1 ORDER BY created_at ASC, game_id ASC`,
		ratingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func (r *postgresRatingMemberRepository) ListRatingIDsByGame(ctx context.Context, gameID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rating_id FROM rating_games WHERE game_id = $1 ORDER BY rating_id ASC`,
		gameID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func collectIDs(rows *sql.Rows) ([]int, error) {
	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
