package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avvvet/tambola-services/internal/gamesvc/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultStore keeps the summaries of finished games.
type ResultStore interface {
	SaveResult(ctx context.Context, result models.GameResult) error
	Recent(ctx context.Context, limit int) ([]models.GameResult, error)
}

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

const schema = `
	CREATE TABLE IF NOT EXISTS game_results (
		id               BIGSERIAL PRIMARY KEY,
		game_id          TEXT        NOT NULL,
		status           TEXT        NOT NULL,
		reason           TEXT        NOT NULL DEFAULT '',
		price_per_ticket BIGINT      NOT NULL,
		tickets_sold     INTEGER     NOT NULL,
		player_count     INTEGER     NOT NULL,
		prizes           JSONB       NOT NULL,
		winners          JSONB       NOT NULL,
		drawn_numbers    INTEGER[]   NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		ended_at         TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS game_results_ended_at_idx ON game_results (ended_at DESC);
`

// EnsureSchema creates the results table when missing.
func (s *GameStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create game_results: %w", err)
	}
	return nil
}

func (s *GameStore) SaveResult(ctx context.Context, r models.GameResult) error {
	prizes, err := json.Marshal(r.Prizes)
	if err != nil {
		return err
	}
	winners, err := json.Marshal(r.Winners)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO game_results (game_id, status, reason, price_per_ticket, tickets_sold,
			player_count, prizes, winners, drawn_numbers, created_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.Exec(ctx, query,
		r.GameID,
		string(r.Status),
		r.Reason,
		r.PricePerTicket,
		r.TicketsSold,
		r.PlayerCount,
		prizes,
		winners,
		toInt32(r.DrawnNumbers),
		r.CreatedAt,
		r.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save result for game %s: %w", r.GameID, err)
	}
	return nil
}

// Recent returns the latest results, newest first.
func (s *GameStore) Recent(ctx context.Context, limit int) ([]models.GameResult, error) {
	query := `
		SELECT game_id, status, reason, price_per_ticket, tickets_sold, player_count,
			prizes, winners, drawn_numbers, created_at, ended_at
		FROM game_results
		ORDER BY ended_at DESC
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []models.GameResult{}
	for rows.Next() {
		var (
			r               models.GameResult
			status          string
			prizes, winners []byte
			drawn           []int32
		)
		err := rows.Scan(&r.GameID, &status, &r.Reason, &r.PricePerTicket, &r.TicketsSold,
			&r.PlayerCount, &prizes, &winners, &drawn, &r.CreatedAt, &r.EndedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if err := json.Unmarshal(prizes, &r.Prizes); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(winners, &r.Winners); err != nil {
			return nil, err
		}
		r.Status = models.GameStatus(status)
		r.DrawnNumbers = make([]int, len(drawn))
		for i, n := range drawn {
			r.DrawnNumbers[i] = int(n)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func toInt32(nums []int) []int32 {
	out := make([]int32, len(nums))
	for i, n := range nums {
		out[i] = int32(n)
	}
	return out
}
