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
	ErrClubNotFound          = errors.New("club not found")
	ErrClubTitleConflict     = errors.New("club title is already in use")
	ErrClubInvalidFederation = errors.New("club federation conflict or invalid")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context, limit, offset int) ([]models.Club, error)
	Update(ctx context.Context, club *models.Club) error
	UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

const clubColumns = `id, title, description, country, city, federation_id, owner_id, created_at, logo_key`

func scanClub(rowScanner interface{ Scan(...interface{}) error }) (*models.Club, error) {
	var c models.Club
	err := rowScanner.Scan(
		&c.ID, &c.Title, &c.Description, &c.Country, &c.City,
		&c.FederationID, &c.OwnerID, &c.CreatedAt, &c.LogoKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (title, description, country, city, federation_id, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		club.Title, club.Description, club.Country, club.City, club.FederationID, club.OwnerID,
	).Scan(&club.ID, &club.CreatedAt)
	return handleClubError(err)
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE id = $1`
	return scanClub(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresClubRepository) List(ctx context.Context, limit, offset int) ([]models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs ORDER BY title ASC`
	args := []interface{}{}
	argID := 1
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, limit)
		argID++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := make([]models.Club, 0)
	for rows.Next() {
		c, errScan := scanClub(rows)
		if errScan != nil {
			return nil, errScan
		}
		clubs = append(clubs, *c)
	}
	return clubs, rows.Err()
}

func (r *postgresClubRepository) Update(ctx context.Context, club *models.Club) error {
	query := `
		UPDATE clubs SET title = $1, description = $2, country = $3, city = $4, federation_id = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		club.Title, club.Description, club.Country, club.City, club.FederationID, club.ID,
	)
	if err != nil {
		return handleClubError(err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE clubs SET logo_key = $1 WHERE id = $2`, logoKey, clubID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func handleClubError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "clubs_title_key" {
				return ErrClubTitleConflict
			}
		case "23503":
			if pqErr.Constraint == "clubs_federation_id_fkey" {
				return ErrClubInvalidFederation
			}
		}
	}
	return err
}
