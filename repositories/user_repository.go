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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserNicknameConflict = errors.New("nickname is already in use")
)

type ListUsersFilter struct {
	ClubID *int
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]models.User, error)
	ListByIDs(ctx context.Context, ids []int) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, nickname, first_name, last_name, club_id, country, created_at, avatar_key`

func scanUser(rowScanner interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := rowScanner.Scan(
		&u.ID, &u.Nickname, &u.FirstName, &u.LastName, &u.ClubID, &u.Country, &u.CreatedAt, &u.AvatarKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (nickname, first_name, last_name, club_id, country)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		user.Nickname, user.FirstName, user.LastName, user.ClubID, user.Country,
	).Scan(&user.ID, &user.CreatedAt)
	return handleUserError(err)
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) List(ctx context.Context, filter ListUsersFilter) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.ClubID != nil {
		query += fmt.Sprintf(" AND club_id = $%d", argID)
		args = append(args, *filter.ClubID)
		argID++
	}
	query += " ORDER BY nickname ASC"
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

	users := make([]models.User, 0)
	for rows.Next() {
		u, errScan := scanUser(rows)
		if errScan != nil {
			return nil, errScan
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *postgresUserRepository) ListByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0, len(ids))
	for rows.Next() {
		u, errScan := scanUser(rows)
		if errScan != nil {
			return nil, errScan
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET nickname = $1, first_name = $2, last_name = $3, club_id = $4, country = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		user.Nickname, user.FirstName, user.LastName, user.ClubID, user.Country, user.ID,
	)
	if err != nil {
		return handleUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET avatar_key = $1 WHERE id = $2`, avatarKey, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func handleUserError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "users_nickname_key" {
			return ErrUserNicknameConflict
		}
	}
	return err
}
