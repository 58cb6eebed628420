package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cricketbet/internal/apperr"
	"cricketbet/internal/cricket"
	"cricketbet/internal/models"
	"cricketbet/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	mu          sync.Mutex
	pages       map[int][]cricket.Match
	pageErrs    map[int]error
	series      []cricket.Series
	seriesErr   error
	seriesMatch map[string][]cricket.Match
	pageCalls   int
	seriesCalls int
}

func (f *fakeLister) ListMatchesPage(_ context.Context, offset int) ([]cricket.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	if err := f.pageErrs[offset]; err != nil {
		return nil, err
	}
	return f.pages[offset], nil
}

func (f *fakeLister) ListSeries(context.Context) ([]cricket.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seriesCalls++
	return f.series, f.seriesErr
}

func (f *fakeLister) SeriesMatches(_ context.Context, seriesID string) ([]cricket.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matches, ok := f.seriesMatch[seriesID]
	if !ok {
		return nil, errors.New("series unavailable")
	}
	return matches, nil
}

type fakeCache struct {
	stored []cricket.Match
	hit    bool
	sets   int
}

func (c *fakeCache) GetMatches(context.Context) ([]cricket.Match, bool, error) {
	return c.stored, c.hit, nil
}

func (c *fakeCache) SetMatches(_ context.Context, matches []cricket.Match) error {
	c.sets++
	c.stored = matches
	return nil
}

func fixtures(prefix string, n int) []cricket.Match {
	matches := make([]cricket.Match, n)
	for i := range matches {
		matches[i] = cricket.Match{
			ID:          fmt.Sprintf("%s-%02d", prefix, i),
			Teams:       []string{"India", "Australia"},
			DateTimeGMT: fmt.Sprintf("2026-03-%02dT10:00:00", i%28+1),
			MatchType:   "odi",
		}
	}
	return matches
}

func TestListMatches_FullPagesSkipSeries(t *testing.T) {
	lister := &fakeLister{pages: map[int][]cricket.Match{
		0:  fixtures("a", cricket.PageSize),
		25: fixtures("b", cricket.PageSize),
	}}
	svc := NewMatchService(memory.NewStore(), lister, nil, nil, nopLogger)

	matches, err := svc.ListMatches(context.Background())
	require.NoError(t, err)

	assert.Len(t, matches, 2*cricket.PageSize)
	assert.Equal(t, 3, lister.pageCalls, "stops at the first empty page")
	assert.Zero(t, lister.seriesCalls)
}

func TestListMatches_SeriesFallbackAndDedupe(t *testing.T) {
	shared := cricket.Match{ID: "shared", Teams: []string{"India", "England"}, DateTimeGMT: "2026-03-01T10:00:00"}
	lister := &fakeLister{
		pages: map[int][]cricket.Match{
			0: {shared, {ID: "p1", Teams: []string{"Nepal", "Oman"}, DateTimeGMT: "2026-03-02T10:00:00"}},
		},
		pageErrs: map[int]error{25: errors.New("rate limited")},
		series:   []cricket.Series{{ID: "s1"}, {ID: "s2"}},
		seriesMatch: map[string][]cricket.Match{
			"s1": {shared, {ID: "s1-m", Teams: []string{"Kenya", "Namibia"}, DateTimeGMT: "2026-03-03T10:00:00"}},
		},
	}
	svc := NewMatchService(memory.NewStore(), lister, nil, nil, nopLogger)

	matches, err := svc.ListMatches(context.Background())
	require.NoError(t, err)

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"shared", "p1", "s1-m"}, ids)
	assert.Equal(t, 1, lister.seriesCalls)
}

func TestListMatches_StatusDefaultsAndOrdering(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Odds().Set(context.Background(), &models.Odds{
		MatchID: "live", Team1: dec("2.10"), Team2: dec("1.80"),
	}))
	lister := &fakeLister{pages: map[int][]cricket.Match{0: {
		{ID: "nodate", Teams: []string{"India", "Pakistan"}, DateTimeGMT: "soon"},
		{ID: "future", Teams: []string{"India"}, DateTimeGMT: "2026-02-01T09:30:00"},
		{ID: "live", Teams: []string{"India", "England"}, DateTimeGMT: "2026-01-09T09:30:00", MatchStarted: true, MatchType: "t20"},
		{ID: "past", DateTimeGMT: "2026-01-01T09:30:00"},
		{ID: "done", Teams: []string{"India", "Sri Lanka"}, DateTimeGMT: "2026-01-05T09:30:00", MatchStarted: true, MatchEnded: true},
	}}}
	svc := NewMatchService(store, lister, nil, nil, nopLogger)
	svc.now = func() time.Time { return time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC) }

	matches, err := svc.ListMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 5)

	byID := map[string]*models.Match{}
	order := make([]string, len(matches))
	for i, m := range matches {
		byID[m.ID] = m
		order[i] = m.ID
	}
	assert.Equal(t, []string{"past", "done", "live", "future", "nodate"}, order)

	assert.Equal(t, models.MatchStatusCompleted, byID["done"].Status)
	assert.Equal(t, models.MatchStatusLive, byID["live"].Status)
	assert.Equal(t, models.MatchStatusCompleted, byID["past"].Status)
	assert.Equal(t, models.MatchStatusUpcoming, byID["future"].Status)
	assert.Equal(t, models.MatchStatusUpcoming, byID["nodate"].Status)

	assert.Equal(t, "TBD", byID["future"].Team2)
	assert.Equal(t, "TBD", byID["past"].Team1)
	assert.Equal(t, "unknown", byID["past"].MatchType)
	assert.Equal(t, "t20", byID["live"].MatchType)

	assert.True(t, byID["live"].Odds.Team1.Equal(dec("2.1")))
	assert.True(t, byID["past"].Odds.Team1.Equal(models.DefaultOddsValue))
	assert.True(t, byID["past"].Odds.Team2.Equal(models.DefaultOddsValue))
}

func TestListMatches_Cache(t *testing.T) {
	lister := &fakeLister{pages: map[int][]cricket.Match{0: fixtures("a", 3)}}
	cache := &fakeCache{}
	svc := NewMatchService(memory.NewStore(), lister, cache, nil, nopLogger)

	_, err := svc.ListMatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	calls := lister.pageCalls

	cache.hit = true
	matches, err := svc.ListMatches(context.Background())
	require.NoError(t, err)
	assert.Len(t, matches, 3)
	assert.Equal(t, calls, lister.pageCalls, "served from cache")
}

func TestListMatches_NothingUpstream(t *testing.T) {
	lister := &fakeLister{
		pageErrs:  map[int]error{0: errors.New("down")},
		seriesErr: errors.New("down"),
	}
	svc := NewMatchService(memory.NewStore(), lister, nil, nil, nopLogger)

	_, err := svc.ListMatches(context.Background())
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}

func TestSetOdds(t *testing.T) {
	store := memory.NewStore()
	svc := NewMatchService(store, &fakeLister{}, nil, nil, nopLogger)
	ctx := context.Background()

	odds, err := svc.SetOdds(ctx, "M1", &models.SetOddsRequest{Team1Odds: dec("1.955"), Team2Odds: dec("3")})
	require.NoError(t, err)
	assert.True(t, odds.Team1.Equal(dec("1.96")))

	stored, err := store.Odds().Get(ctx, "M1")
	require.NoError(t, err)
	assert.True(t, stored.Team2.Equal(dec("3")))

	for _, bad := range [][2]string{{"1", "2"}, {"2", "0.5"}, {"-3", "2"}} {
		_, err := svc.SetOdds(ctx, "M1", &models.SetOddsRequest{Team1Odds: dec(bad[0]), Team2Odds: dec(bad[1])})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), bad)
	}

	_, err = store.MatchResults().Record(ctx, &models.MatchResult{MatchID: "M2", Winner: models.SideTeam2, SettledAt: time.Now()})
	require.NoError(t, err)
	_, err = svc.SetOdds(ctx, "M2", &models.SetOddsRequest{Team1Odds: dec("2"), Team2Odds: dec("2")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}
