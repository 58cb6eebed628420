package services

import (
	"context"
	"strings"
	"time"

	"cricketbet/internal/apperr"
	"cricketbet/internal/events"
	"cricketbet/internal/metrics"
	"cricketbet/internal/models"
	"cricketbet/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BetService struct {
	store     repository.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewBetService(store repository.Store, publisher events.Publisher, m *metrics.Metrics, logger zerolog.Logger) *BetService {
	return &BetService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// PlaceBet debits the stake and records a pending bet as one atomic unit.
func (s *BetService) PlaceBet(ctx context.Context, req *models.PlaceBetRequest) (*models.PlaceBetResponse, error) {
	req.MatchID = strings.TrimSpace(req.MatchID)
	req.Team = strings.TrimSpace(req.Team)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, apperr.Validation("userId is required")
	}
	if err := betLimits.check(req.Amount); err != nil {
		return nil, err
	}

	_, err := s.store.MatchResults().Get(ctx, req.MatchID)
	if err == nil {
		return nil, apperr.Validation("match " + req.MatchID + " is already settled")
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	bet := &models.Bet{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		MatchID:   req.MatchID,
		Team:      req.Team,
		Amount:    req.Amount,
		CreatedAt: time.Now().UTC(),
	}
	balance, err := s.store.Bets().Place(ctx, bet)
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			s.logger.Info().Str("user_id", req.UserID).Str("amount", req.Amount.String()).Msg("Bet rejected")
		}
		return nil, err
	}

	s.metrics.BetPlaced()
	s.logger.Info().
		Str("bet_id", bet.ID).
		Str("user_id", bet.UserID).
		Str("match_id", bet.MatchID).
		Str("team", bet.Team).
		Str("amount", bet.Amount.String()).
		Msg("Bet placed")

	publish(ctx, s.publisher, s.logger, events.Event{Type: events.BetPlaced, Key: bet.ID, Payload: bet})

	return &models.PlaceBetResponse{Success: true, Balance: balance, Bet: bet}, nil
}

func (s *BetService) ListUserBets(ctx context.Context, userID string) ([]*models.Bet, error) {
	bets, err := s.store.Bets().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bets == nil {
		bets = []*models.Bet{}
	}
	return bets, nil
}

// publishTimeout bounds how long a caller waits on the event publisher.
var publishTimeout = 2 * time.Second

// publish sends an event after its state change has committed. A publish
// failure is logged and does not undo the committed change.
func publish(ctx context.Context, p events.Publisher, logger zerolog.Logger, event events.Event) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", string(event.Type)).Str("key", event.Key).Msg("Failed to publish event")
	}
}
