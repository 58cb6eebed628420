package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideTeam1 Side = "team1"
	SideTeam2 Side = "team2"
)

func (s Side) Valid() bool {
	return s == SideTeam1 || s == SideTeam2
}

type MatchStatus string

const (
	MatchStatusUpcoming  MatchStatus = "upcoming"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"
)

type Match struct {
	ID        string      `json:"id"`
	Team1     string      `json:"team1"`
	Team2     string      `json:"team2"`
	Date      string      `json:"date"`
	Status    MatchStatus `json:"status"`
	Odds      *Odds       `json:"odds"`
	MatchType string      `json:"matchType"`
}

// MatchResult is the declared outcome of a match. One per match. The odds
// are captured when the result is recorded and every settlement run for the
// match pays at them.
type MatchResult struct {
	MatchID   string          `json:"matchId"`
	Winner    Side            `json:"winner"`
	Team1     string          `json:"team1"`
	Team2     string          `json:"team2"`
	Team1Odds decimal.Decimal `json:"team1Odds"`
	Team2Odds decimal.Decimal `json:"team2Odds"`
	SettledAt time.Time       `json:"settledAt"`
}

func (r *MatchResult) Odds() *Odds {
	return &Odds{MatchID: r.MatchID, Team1: r.Team1Odds, Team2: r.Team2Odds}
}

type SettleRequest struct {
	Winner Side `json:"winner" validate:"required,oneof=team1 team2"`
}

type SettlementResult struct {
	MatchID     string          `json:"matchId"`
	Winner      Side            `json:"winner"`
	WinningTeam string          `json:"winningTeam"`
	Odds        decimal.Decimal `json:"odds"`
	Won         int             `json:"won"`
	Lost        int             `json:"lost"`
	Skipped     int             `json:"skipped"`
	Unmatched   []string        `json:"unmatched,omitempty"`
	Failed      []string        `json:"failed,omitempty"`
	TotalPayout decimal.Decimal `json:"totalPayout"`
}
