package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"cricketbet/internal/apperr"
	"cricketbet/internal/cricket"
	"cricketbet/internal/metrics"
	"cricketbet/internal/models"
	"cricketbet/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	listingPages        = 5
	minPagedMatches     = 50
	seriesFetchParallel = 4
	upstreamDateLayout  = "2006-01-02T15:04:05"
)

type MatchLister interface {
	ListMatchesPage(ctx context.Context, offset int) ([]cricket.Match, error)
	ListSeries(ctx context.Context) ([]cricket.Series, error)
	SeriesMatches(ctx context.Context, seriesID string) ([]cricket.Match, error)
}

type MatchCache interface {
	GetMatches(ctx context.Context) ([]cricket.Match, bool, error)
	SetMatches(ctx context.Context, matches []cricket.Match) error
}

type MatchService struct {
	store    repository.Store
	upstream MatchLister
	cache    MatchCache
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

// NewMatchService builds the listing service. cache may be nil.
func NewMatchService(store repository.Store, upstream MatchLister, cache MatchCache, m *metrics.Metrics, logger zerolog.Logger) *MatchService {
	return &MatchService{
		store:    store,
		upstream: upstream,
		cache:    cache,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// ListMatches returns upstream fixtures with local odds and a derived status,
// sorted by start time.
func (s *MatchService) ListMatches(ctx context.Context) ([]*models.Match, error) {
	raw, err := s.upstreamMatches(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(raw))
	for i, m := range raw {
		ids[i] = m.ID
	}
	odds, err := s.store.Odds().GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	matches := make([]*models.Match, 0, len(raw))
	for _, m := range raw {
		match := &models.Match{
			ID:        m.ID,
			Team1:     teamAt(m.Teams, 0),
			Team2:     teamAt(m.Teams, 1),
			Date:      m.DateTimeGMT,
			Status:    matchStatus(m, now),
			Odds:      odds[m.ID],
			MatchType: m.MatchType,
		}
		if match.Odds == nil {
			match.Odds = models.DefaultOdds(m.ID)
		}
		if match.MatchType == "" {
			match.MatchType = "unknown"
		}
		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		ti, iok := parseMatchDate(matches[i].Date)
		tj, jok := parseMatchDate(matches[j].Date)
		if iok != jok {
			return iok
		}
		return ti.Before(tj)
	})
	return matches, nil
}

func (s *MatchService) upstreamMatches(ctx context.Context) ([]cricket.Match, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetMatches(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Match cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	matches := s.fetchPaged(ctx)
	if len(matches) < minPagedMatches {
		matches = append(matches, s.fetchSeries(ctx)...)
	}
	matches = dedupeMatches(matches)
	if len(matches) == 0 {
		s.metrics.UpstreamError("list_matches")
		return nil, apperr.Upstream("no matches available from upstream", ctx.Err())
	}

	if s.cache != nil {
		if err := s.cache.SetMatches(ctx, matches); err != nil {
			s.logger.Warn().Err(err).Msg("Match cache write failed")
		}
	}
	return matches, nil
}

func (s *MatchService) fetchPaged(ctx context.Context) []cricket.Match {
	var all []cricket.Match
	for page := 0; page < listingPages; page++ {
		offset := page * cricket.PageSize
		matches, err := s.upstream.ListMatchesPage(ctx, offset)
		if err != nil {
			s.logger.Warn().Err(err).Int("offset", offset).Msg("Skipping match page")
			continue
		}
		if len(matches) == 0 {
			break
		}
		all = append(all, matches...)
	}
	return all
}

func (s *MatchService) fetchSeries(ctx context.Context) []cricket.Match {
	series, err := s.upstream.ListSeries(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Series listing unavailable")
		return nil
	}

	perSeries := make([][]cricket.Match, len(series))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seriesFetchParallel)
	for i, ser := range series {
		i, ser := i, ser
		g.Go(func() error {
			matches, err := s.upstream.SeriesMatches(gctx, ser.ID)
			if err != nil {
				s.logger.Warn().Err(err).Str("series_id", ser.ID).Msg("Skipping series")
				return nil
			}
			perSeries[i] = matches
			return nil
		})
	}
	_ = g.Wait()

	var all []cricket.Match
	for _, matches := range perSeries {
		all = append(all, matches...)
	}
	return all
}

// SetOdds stores both multipliers for a match that has not been settled.
func (s *MatchService) SetOdds(ctx context.Context, matchID string, req *models.SetOddsRequest) (*models.Odds, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, apperr.Validation("match id is required")
	}
	if !req.Team1Odds.GreaterThan(decimal.NewFromInt(1)) || !req.Team2Odds.GreaterThan(decimal.NewFromInt(1)) {
		return nil, apperr.Validation("odds must be greater than 1")
	}
	odds := &models.Odds{
		MatchID: matchID,
		Team1:   req.Team1Odds.Round(2),
		Team2:   req.Team2Odds.Round(2),
	}
	// The store refuses the write once a result is recorded.
	if err := s.store.Odds().Set(ctx, odds); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("match_id", matchID).
		Str("team1", odds.Team1.String()).
		Str("team2", odds.Team2.String()).
		Msg("Odds updated")
	return odds, nil
}

func teamAt(teams []string, i int) string {
	if i < len(teams) && teams[i] != "" {
		return teams[i]
	}
	return "TBD"
}

func matchStatus(m cricket.Match, now time.Time) models.MatchStatus {
	if m.MatchStarted {
		if m.MatchEnded {
			return models.MatchStatusCompleted
		}
		return models.MatchStatusLive
	}
	if start, ok := parseMatchDate(m.DateTimeGMT); ok && start.Before(now) {
		return models.MatchStatusCompleted
	}
	return models.MatchStatusUpcoming
}

func parseMatchDate(s string) (time.Time, bool) {
	if t, err := time.Parse(upstreamDateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func dedupeMatches(matches []cricket.Match) []cricket.Match {
	seen := make(map[string]struct{}, len(matches))
	out := matches[:0]
	for _, m := range matches {
		if m.ID == "" {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
