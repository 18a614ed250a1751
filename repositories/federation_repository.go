package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/foundermafstat/mafstat-server/models"
	"github.com/lib/pq"
)

var (
	ErrFederationNotFound      = errors.New("federation not found")
	ErrFederationTitleConflict = errors.New("federation title is already in use")
	ErrFederationInUse         = errors.New("federation is referenced by clubs or games")
)

type FederationRepository interface {
	Create(ctx context.Context, federation *models.Federation) error
	GetByID(ctx context.Context, id int) (*models.Federation, error)
	List(ctx context.Context) ([]models.Federation, error)
	Update(ctx context.Context, federation *models.Federation) error
	Delete(ctx context.Context, id int) error
}

type postgresFederationRepository struct {
	db *sql.DB
}

func NewPostgresFederationRepository(db *sql.DB) FederationRepository {
	return &postgresFederationRepository{db: db}
}

func (r *postgresFederationRepository) Create(ctx context.Context, f *models.Federation) error {
	query := `
		INSERT INTO federations (title, description, url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, f.Title, f.Description, f.URL).Scan(&f.ID, &f.CreatedAt)
	return handleFederationError(err)
}

func (r *postgresFederationRepository) GetByID(ctx context.Context, id int) (*models.Federation, error) {
	query := `SELECT id, title, description, url, created_at FROM federations WHERE id = $1`
	var f models.Federation
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Title, &f.Description, &f.URL, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFederationNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *postgresFederationRepository) List(ctx context.Context) ([]models.Federation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, description, url, created_at FROM federations ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	federations := make([]models.Federation, 0)
	for rows.Next() {
		var f models.Federation
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.URL, &f.CreatedAt); err != nil {
			return nil, err
		}
		federations = append(federations, f)
	}
	return federations, rows.Err()
}

func (r *postgresFederationRepository) Update(ctx context.Context, f *models.Federation) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE federations SET title = $1, description = $2, url = $3 WHERE id = $4`,
		f.Title, f.Description, f.URL, f.ID,
	)
	if err != nil {
		return handleFederationError(err)
	}
	return checkAffectedRows(result, ErrFederationNotFound)
}

func (r *postgresFederationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM federations WHERE id = $1`, id)
	if err != nil {
		return handleFederationError(err)
	}
	return checkAffectedRows(result, ErrFederationNotFound)
}

func handleFederationError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "federations_title_key" {
				return ErrFederationTitleConflict
			}
		case "23503":
			return ErrFederationInUse
		}
	}
	return err
}
