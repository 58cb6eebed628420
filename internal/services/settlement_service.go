package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cricketbet/internal/apperr"
	"cricketbet/internal/events"
	"cricketbet/internal/metrics"
	"cricketbet/internal/models"
	"cricketbet/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MatchSource resolves the team names of a match.
type MatchSource interface {
	MatchTeams(ctx context.Context, matchID string) (team1, team2 string, err error)
}

type SettlementOptions struct {
	// StrictTeamMatch leaves bets whose team matches neither side pending
	// instead of marking them lost.
	StrictTeamMatch bool
	UpstreamTimeout time.Duration
}

type SettlementService struct {
	store     repository.Store
	source    MatchSource
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	opts      SettlementOptions
}

func NewSettlementService(store repository.Store, source MatchSource, publisher events.Publisher, m *metrics.Metrics, logger zerolog.Logger, opts SettlementOptions) *SettlementService {
	if opts.UpstreamTimeout <= 0 {
		opts.UpstreamTimeout = 10 * time.Second
	}
	return &SettlementService{
		store:     store,
		source:    source,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		opts:      opts,
	}
}

// SettleMatch resolves every pending bet on matchID against winner. Each bet
// is settled by a conditional update guarded by its pending status, so
// concurrent or repeated runs never credit a bet twice. The odds are fixed
// when the result is first recorded.
func (s *SettlementService) SettleMatch(ctx context.Context, matchID string, winner models.Side) (*models.SettlementResult, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, apperr.Validation("match id is required")
	}
	if !winner.Valid() {
		return nil, apperr.Validation("winner must be team1 or team2")
	}

	team1, team2, err := s.resolveTeams(ctx, matchID)
	if err != nil {
		return nil, err
	}

	recorded, err := s.store.MatchResults().Record(ctx, &models.MatchResult{
		MatchID:   matchID,
		Winner:    winner,
		Team1:     team1,
		Team2:     team2,
		SettledAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("record result for match %s: %w", matchID, err)
	}
	if recorded.Winner != winner {
		return nil, apperr.Conflict(fmt.Sprintf("match %s was already settled with winner %s", matchID, recorded.Winner))
	}

	bets, err := s.store.Bets().ListPendingByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("list pending bets for match %s: %w", matchID, err)
	}

	winningTeam, losingTeam := team1, team2
	if winner == models.SideTeam2 {
		winningTeam, losingTeam = team2, team1
	}
	// Odds come from the recorded result so every run pays the same price.
	multiplier := recorded.Odds().For(winner)

	result := &models.SettlementResult{
		MatchID:     matchID,
		Winner:      winner,
		WinningTeam: winningTeam,
		Odds:        multiplier,
		TotalPayout: decimal.Zero,
	}

	for _, bet := range bets {
		s.settleBet(ctx, bet, winningTeam, losingTeam, multiplier, result)
	}

	s.logger.Info().
		Str("match_id", matchID).
		Str("winner", string(winner)).
		Str("winning_team", winningTeam).
		Int("won", result.Won).
		Int("lost", result.Lost).
		Int("skipped", result.Skipped).
		Int("unmatched", len(result.Unmatched)).
		Int("failed", len(result.Failed)).
		Str("total_payout", result.TotalPayout.StringFixed(2)).
		Msg("Match settled")

	publish(ctx, s.publisher, s.logger, events.Event{Type: events.MatchSettled, Key: matchID, Payload: result})
	return result, nil
}

func (s *SettlementService) resolveTeams(ctx context.Context, matchID string) (string, string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.opts.UpstreamTimeout)
	defer cancel()

	team1, team2, err := s.source.MatchTeams(lookupCtx, matchID)
	if err != nil {
		s.metrics.UpstreamError("match_teams")
		s.logger.Error().Err(err).Str("match_id", matchID).Msg("Error resolving match teams")
		if apperr.KindOf(err) == apperr.KindInternal {
			err = apperr.Upstream("match data unavailable", err)
		}
		return "", "", fmt.Errorf("resolve teams for match %s: %w", matchID, err)
	}
	return team1, team2, nil
}

func (s *SettlementService) settleBet(ctx context.Context, bet *models.Bet, winningTeam, losingTeam string, multiplier decimal.Decimal, result *models.SettlementResult) {
	log := s.logger.With().Str("bet_id", bet.ID).Str("match_id", bet.MatchID).Logger()

	status, payout := models.BetStatusLost, decimal.Zero
	switch {
	case sameTeam(bet.Team, winningTeam):
		status, payout = models.BetStatusWon, bet.Amount.Mul(multiplier).Round(2)
	case sameTeam(bet.Team, losingTeam):
	case s.opts.StrictTeamMatch:
		log.Warn().Str("team", bet.Team).Msg("Bet team matches neither side, left pending")
		result.Unmatched = append(result.Unmatched, bet.ID)
		s.metrics.BetSettled("unmatched", decimal.Zero)
		return
	default:
		log.Warn().Str("team", bet.Team).Msg("Bet team matches neither side, settling as lost")
	}

	err := s.store.Bets().Settle(ctx, bet, status, payout)
	switch {
	case apperr.Is(err, apperr.KindConflict):
		log.Info().Msg("Bet already settled, skipping")
		result.Skipped++
		s.metrics.BetSettled("skipped", decimal.Zero)
		return
	case err != nil:
		log.Error().Err(err).Msg("Error settling bet")
		result.Failed = append(result.Failed, bet.ID)
		s.metrics.BetSettled("failed", decimal.Zero)
		return
	}

	if status == models.BetStatusWon {
		result.Won++
		result.TotalPayout = result.TotalPayout.Add(payout)
	} else {
		result.Lost++
	}
	s.metrics.BetSettled(string(status), payout)

	now := time.Now().UTC()
	settled := *bet
	settled.Status, settled.Payout, settled.SettledAt = status, payout, &now
	publish(ctx, s.publisher, s.logger, events.Event{Type: events.BetSettled, Key: bet.ID, Payload: &settled})
}

func sameTeam(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
