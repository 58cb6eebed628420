package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cricketbet/internal/apperr"
	"cricketbet/internal/models"
)

type mysqlMatchResults struct {
	s *MySQLStore
}

// Record stores the result together with the odds in force for the match,
// or the defaults when none were set, in one statement. An existing result
// wins and is returned unchanged.
func (r *mysqlMatchResults) Record(ctx context.Context, result *models.MatchResult) (*models.MatchResult, error) {
	_, err := r.s.db.ExecContext(ctx,
		`INSERT INTO match_results (match_id, winner, team1, team2, team1_odds, team2_odds, settled_at)
		 SELECT m.match_id, ?, ?, ?, COALESCE(o.team1, ?), COALESCE(o.team2, ?), ?
		 FROM (SELECT ? AS match_id) AS m
		 LEFT JOIN match_odds o ON o.match_id = m.match_id`,
		string(result.Winner), result.Team1, result.Team2,
		models.DefaultOddsValue, models.DefaultOddsValue, result.SettledAt, result.MatchID,
	)
	if err != nil && !isDuplicateEntry(err) {
		r.s.logger.Error().Err(err).Str("match_id", result.MatchID).Msg("Error recording match result")
		return nil, fmt.Errorf("failed to record match result: %w", err)
	}
	return r.Get(ctx, result.MatchID)
}

func (r *mysqlMatchResults) Get(ctx context.Context, matchID string) (*models.MatchResult, error) {
	var (
		result models.MatchResult
		winner string
	)
	err := r.s.db.QueryRowContext(ctx,
		"SELECT match_id, winner, team1, team2, team1_odds, team2_odds, settled_at FROM match_results WHERE match_id = ?", matchID,
	).Scan(&result.MatchID, &winner, &result.Team1, &result.Team2, &result.Team1Odds, &result.Team2Odds, &result.SettledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("match result not found")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	result.Winner = models.Side(winner)
	return &result, nil
}
