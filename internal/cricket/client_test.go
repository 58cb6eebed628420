package cricket

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cricketbet/internal/apperr"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", time.Second, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	fmt.Fprint(w, body)
}

func TestMatchTeams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matches/M1", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		writeJSON(w, `{"status":"success","data":{"id":"M1","teams":["India","Australia"]}}`)
	})

	team1, team2, err := client.MatchTeams(context.Background(), "M1")
	require.NoError(t, err)
	assert.Equal(t, "India", team1)
	assert.Equal(t, "Australia", team2)
}

func TestMatchTeams_MissingTeamsIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":"success","data":{"id":"M1","teams":[]}}`)
	})

	_, _, err := client.MatchTeams(context.Background(), "M1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestMatchTeams_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"failure status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"status":"failure","reason":"hits today exceeded"}`)
		}},
		{"non json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html>rate limited</html>")
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `{"status":`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, _, err := client.MatchTeams(context.Background(), "M1")
			assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
		})
	}
}

func TestMatchTeams_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, `{"status":"success","data":{"teams":["A","B"]}}`)
	}))
	defer srv.Close()
	client := NewClient(srv.URL, "k", 20*time.Millisecond, zerolog.Nop())

	_, _, err := client.MatchTeams(context.Background(), "M1")
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}

func TestListMatchesPage_SendsOffset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matches", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("offset"))
		writeJSON(w, `{"status":"success","data":[{"id":"M1","teams":["A","B"],"dateTimeGMT":"2026-10-20T10:00:00","matchType":"t20"}]}`)
	})

	matches, err := client.ListMatchesPage(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "t20", matches[0].MatchType)
}

func TestSeriesMatches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/series":
			writeJSON(w, `{"status":"success","data":[{"id":"S1","name":"Cup"}]}`)
		case "/series_info":
			assert.Equal(t, "S1", r.URL.Query().Get("id"))
			writeJSON(w, `{"status":"success","data":{"matchList":[{"id":"M9","teams":["C","D"]}]}}`)
		default:
			http.NotFound(w, r)
		}
	})

	series, err := client.ListSeries(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 1)

	matches, err := client.SeriesMatches(context.Background(), series[0].ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "M9", matches[0].ID)
}
