// Package cricket is a client for the cricapi.com v1 match data API.
package cricket

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cricketbet/internal/apperr"

	"github.com/rs/zerolog"
)

const PageSize = 25

// Match is a fixture as the upstream reports it.
type Match struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MatchType    string   `json:"matchType"`
	DateTimeGMT  string   `json:"dateTimeGMT"`
	Teams        []string `json:"teams"`
	MatchStarted bool     `json:"matchStarted"`
	MatchEnded   bool     `json:"matchEnded"`
}

type Series struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type envelope[T any] struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	Data   T      `json:"data"`
}

type seriesInfo struct {
	MatchList []Match `json:"matchList"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// MatchTeams resolves the two team names of a match.
func (c *Client) MatchTeams(ctx context.Context, matchID string) (string, string, error) {
	var out envelope[Match]
	if err := c.get(ctx, "matches/"+url.PathEscape(matchID), nil, &out); err != nil {
		return "", "", err
	}
	if len(out.Data.Teams) < 2 || out.Data.Teams[0] == "" || out.Data.Teams[1] == "" {
		return "", "", apperr.NotFound("match " + matchID + " has no teams upstream")
	}
	return out.Data.Teams[0], out.Data.Teams[1], nil
}

// ListMatchesPage returns one page of current matches starting at offset.
func (c *Client) ListMatchesPage(ctx context.Context, offset int) ([]Match, error) {
	var out envelope[[]Match]
	err := c.get(ctx, "matches", url.Values{"offset": {strconv.Itoa(offset)}}, &out)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) ListSeries(ctx context.Context) ([]Series, error) {
	var out envelope[[]Series]
	if err := c.get(ctx, "series", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) SeriesMatches(ctx context.Context, seriesID string) ([]Match, error) {
	var out envelope[seriesInfo]
	if err := c.get(ctx, "series_info", url.Values{"id": {seriesID}}, &out); err != nil {
		return nil, err
	}
	return out.Data.MatchList, nil
}

type statusReporter interface {
	failure() (bool, string)
}

func (e *envelope[T]) failure() (bool, string) {
	return strings.EqualFold(e.Status, "failure"), e.Reason
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out statusReporter) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "/" + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperr.Upstream("failed to build upstream request", err)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Upstream request failed")
		return apperr.Upstream("match data unavailable", err)
	}
	defer res.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Upstream request")

	if res.StatusCode >= 300 {
		return apperr.Upstream("match data unavailable", fmt.Errorf("upstream http %d", res.StatusCode))
	}
	if mediaType, _, _ := mime.ParseMediaType(res.Header.Get("Content-Type")); mediaType != "application/json" {
		return apperr.Upstream("match data unavailable", fmt.Errorf("non-JSON response %q", mediaType))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return apperr.Upstream("match data unreadable", err)
	}
	if failed, reason := out.failure(); failed {
		return apperr.Upstream("match data unavailable", fmt.Errorf("upstream failure: %s", reason))
	}
	return nil
}
