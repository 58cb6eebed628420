package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"
)

type mysqlOdds struct {
	s *MySQLStore
}

// Set upserts the odds unless a result has been recorded for the match, in
// which case it returns a conflict and leaves the stored odds alone.
func (r *mysqlOdds) Set(ctx context.Context, odds *models.Odds) error {
	result, err := r.s.db.ExecContext(ctx,
		`INSERT INTO match_odds (match_id, team1, team2)
		 SELECT ?, ?, ? FROM DUAL
		 WHERE NOT EXISTS (SELECT 1 FROM match_results WHERE match_id = ?)
		 ON DUPLICATE KEY UPDATE team1 = VALUES(team1), team2 = VALUES(team2), updated_at = NOW()`,
		odds.MatchID, odds.Team1, odds.Team2, odds.MatchID,
	)
	if err != nil {
		r.s.logger.Error().Err(err).Str("match_id", odds.MatchID).Msg("Error saving odds")
		return fmt.Errorf("failed to save odds: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.Conflict("match is already settled")
	}
	return nil
}

func (r *mysqlOdds) Get(ctx context.Context, matchID string) (*models.Odds, error) {
	odds := models.Odds{MatchID: matchID}
	err := r.s.db.QueryRowContext(ctx,
		"SELECT team1, team2, updated_at FROM match_odds WHERE match_id = ?", matchID,
	).Scan(&odds.Team1, &odds.Team2, &odds.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("odds not found")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &odds, nil
}

func (r *mysqlOdds) GetMany(ctx context.Context, matchIDs []string) (map[string]*models.Odds, error) {
	result := make(map[string]*models.Odds, len(matchIDs))
	if len(matchIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(matchIDs)), ",")
	args := make([]any, len(matchIDs))
	for i, id := range matchIDs {
		args[i] = id
	}

	rows, err := r.s.db.QueryContext(ctx,
		"SELECT match_id, team1, team2, updated_at FROM match_odds WHERE match_id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var odds models.Odds
		if err := rows.Scan(&odds.MatchID, &odds.Team1, &odds.Team2, &odds.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning odds: %w", err)
		}
		result[odds.MatchID] = &odds
	}
	return result, rows.Err()
}
