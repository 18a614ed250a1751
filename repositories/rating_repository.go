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
	ErrRatingNotFound     = errors.New("rating not found")
	ErrRatingNameConflict = errors.New("rating name conflict for this owner")
	ErrRatingInvalidOwner = errors.New("rating owner conflict or invalid")
	ErrRatingInvalidClub  = errors.New("rating club conflict or invalid")
)

type ListRatingsFilter struct {
	OwnerID  *int
	ClubID   *int
	IsActive *bool
	Limit    int
	Offset   int
}

type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetByID(ctx context.Context, id int) (*models.Rating, error)
	List(ctx context.Context, filter ListRatingsFilter) ([]models.Rating, error)
	Update(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, id int) error
}

type postgresRatingRepository struct {
	db *sql.DB
}

func NewPostgresRatingRepository(db *sql.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

const ratingColumns = `id, name, description, owner_id, club_id, start_date, end_date, is_active, created_at`

func scanRating(rowScanner interface{ Scan(...interface{}) error }) (*models.Rating, error) {
	var rt models.Rating
	err := rowScanner.Scan(
		&rt.ID, &rt.Name, &rt.Description, &rt.OwnerID, &rt.ClubID,
		&rt.StartDate, &rt.EndDate, &rt.IsActive, &rt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rt, nil
}

func (r *postgresRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (name, description, owner_id, club_id, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		rating.Name, rating.Description, rating.OwnerID, rating.ClubID,
		rating.StartDate, rating.EndDate, rating.IsActive,
	).Scan(&rating.ID, &rating.CreatedAt)
	return handleRatingError(err)
}

func (r *postgresRatingRepository) GetByID(ctx context.Context, id int) (*models.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE id = $1`
	return scanRating(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRatingRepository) List(ctx context.Context, filter ListRatingsFilter) ([]models.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", argID)
		args = append(args, *filter.OwnerID)
		argID++
	}
	if filter.ClubID != nil {
		query += fmt.Sprintf(" AND club_id = $%d", argID)
		args = append(args, *filter.ClubID)
		argID++
	}
	if filter.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argID)
		args = append(args, *filter.IsActive)
		argID++
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

	ratings := make([]models.Rating, 0)
	for rows.Next() {
		rt, errScan := scanRating(rows)
		if errScan != nil {
			return nil, errScan
		}
		ratings = append(ratings, *rt)
	}
	return ratings, rows.Err()
}

func (r *postgresRatingRepository) Update(ctx context.Context, rating *models.Rating) error {
	query := `
		UPDATE ratings SET name = $1, description = $2, club_id = $3,
			start_date = $4, end_date = $5, is_active = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		rating.Name, rating.Description, rating.ClubID,
		rating.StartDate, rating.EndDate, rating.IsActive, rating.ID,
	)
	if err != nil {
		return handleRatingError(err)
	}
	return checkAffectedRows(result, ErrRatingNotFound)
}

// Delete удаляет рейтинг; членство и результаты уходят каскадом.
func (r *postgresRatingRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRatingNotFound)
}

func handleRatingError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "ratings_owner_id_name_key" {
				return ErrRatingNameConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "ratings_owner_id_fkey":
				return ErrRatingInvalidOwner
			case "ratings_club_id_fkey":
				return ErrRatingInvalidClub
			}
		}
	}
	return err
}
