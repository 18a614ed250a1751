package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/foundermafstat/mafstat-server/models"
)

// RatingResultRepository работает с производной таблицей rating_results.
// Её единственный писатель — движок пересчёта: строки не обновляются
// по отдельности, набор заменяется целиком внутри транзакции вызывающего.
type RatingResultRepository interface {
	DeleteByRatingID(ctx context.Context, exec SQLExecutor, ratingID int) error
	BatchCreate(ctx context.Context, exec SQLExecutor, results []*models.RatingResult) error
	ListByRating(ctx context.Context, ratingID int) ([]*models.RatingResult, error)
}

type postgresRatingResultRepository struct {
	db *sql.DB
}

func NewPostgresRatingResultRepository(db *sql.DB) RatingResultRepository {
	return &postgresRatingResultRepository{db: db}
}

func (r *postgresRatingResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRatingResultRepository) DeleteByRatingID(ctx context.Context, exec SQLExecutor, ratingID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM rating_results WHERE rating_id = $1`, ratingID)
	return err
}

func (r *postgresRatingResultRepository) BatchCreate(ctx context.Context, exec SQLExecutor, results []*models.RatingResult) error {
	if len(results) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rating_results
		    (rating_id, player_id, points, games_played, wins, civilian_wins, mafia_wins, don_games, sheriff_games, first_outs, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	for _, res := range results {
		if res.UpdatedAt.IsZero() {
			res.UpdatedAt = time.Now()
		}
		err := executor.QueryRowContext(ctx, query,
			res.RatingID, res.PlayerID, res.Points, res.GamesPlayed, res.Wins,
			res.CivilianWins, res.MafiaWins, res.DonGames, res.SheriffGames,
			res.FirstOuts, res.UpdatedAt,
		).Scan(&res.ID)
		if err != nil {
			return fmt.Errorf("BatchCreate failed for player %d: %w", res.PlayerID, err)
		}
	}
	return nil
}

// ListByRating возвращает последний закоммиченный снимок результатов,
// отсортированный по убыванию очков; player_id даёт стабильный порядок
// при равенстве.
func (r *postgresRatingResultRepository) ListByRating(ctx context.Context, ratingID int) ([]*models.RatingResult, error) {
	query := `
		SELECT id, rating_id, player_id, points, games_played, wins,
		       civilian_wins, mafia_wins, don_games, sheriff_games, first_outs, updated_at
		FROM rating_results
		WHERE rating_id = $1
		ORDER BY points DESC, player_id ASC`
	rows, err := r.db.QueryContext(ctx, query, ratingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*models.RatingResult, 0)
	for rows.Next() {
		var res models.RatingResult
		err := rows.Scan(
			&res.ID, &res.RatingID, &res.PlayerID, &res.Points, &res.GamesPlayed, &res.Wins,
			&res.CivilianWins, &res.MafiaWins, &res.DonGames, &res.SheriffGames,
			&res.FirstOuts, &res.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}
