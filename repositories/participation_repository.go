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
	ErrParticipationNotFound      = errors.New("participation not found")
	ErrParticipationSlotConflict  = errors.New("slot number is already taken in this game")
	ErrParticipationSeatConflict  = errors.New("player already holds a seat in this game")
	ErrParticipationInvalidPlayer = errors.New("participation player conflict or invalid")
)

type ParticipationRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, participations []*models.Participation) error
	ListByGame(ctx context.Context, gameID int) ([]models.Participation, error)
	ListByGameIDs(ctx context.Context, gameIDs []int) ([]models.Participation, error)
}

type postgresParticipationRepository struct {
	db *sql.DB
}

func NewPostgresParticipationRepository(db *sql.DB) ParticipationRepository {
	return &postgresParticipationRepository{db: db}
}

func (r *postgresParticipationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const participationColumns = `id, game_id, player_id, role, slot_number, fouls, bonus_raw`

func scanParticipation(rowScanner interface{ Scan(...interface{}) error }) (*models.Participation, error) {
	var p models.Participation
	err := rowScanner.Scan(
		&p.ID, &p.GameID, &p.PlayerID, &p.Role, &p.SlotNumber, &p.Fouls, &p.BonusRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipationNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresParticipationRepository) BatchCreate(ctx context.Context, exec SQLExecutor, participations []*models.Participation) error {
	if len(participations) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participations (game_id, player_id, role, slot_number, fouls, bonus_raw)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	for _, p := range participations {
		err := executor.QueryRowContext(ctx, query,
			p.GameID, p.PlayerID, p.Role, p.SlotNumber, p.Fouls, p.BonusRaw,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("BatchCreate failed for slot %d: %w", p.SlotNumber, handleParticipationError(err))
		}
	}
	return nil
}

func (r *postgresParticipationRepository) ListByGame(ctx context.Context, gameID int) ([]models.Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations WHERE game_id = $1 ORDER BY slot_number ASC`
	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectParticipations(rows)
}

// ListByGameIDs загружает места сразу для пачки игр одним запросом;
// движку пересчёта нельзя ходить в БД по запросу на игру.
func (r *postgresParticipationRepository) ListByGameIDs(ctx context.Context, gameIDs []int) ([]models.Participation, error) {
	if len(gameIDs) == 0 {
		return []models.Participation{}, nil
	}
	query := `SELECT ` + participationColumns + ` FROM participations WHERE game_id = ANY($1) ORDER BY game_id ASC, slot_number ASC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(gameIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectParticipations(rows)
}

func collectParticipations(rows *sql.Rows) ([]models.Participation, error) {
	participations := make([]models.Participation, 0)
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		participations = append(participations, *p)
	}
	return participations, rows.Err()
}

func handleParticipationError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			switch pqErr.Constraint {
			case "participations_game_id_slot_number_key":
				return ErrParticipationSlotConflict
			case "participations_game_id_player_id_key":
				return ErrParticipationSeatConflict
			}
		case "23503":
			if pqErr.Constraint == "participations_player_id_fkey" {
				return ErrParticipationInvalidPlayer
			}
		}
	}
	return err
}
