package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var DefaultOddsValue = decimal.RequireFromString("1.5")

type Odds struct {
	MatchID   string          `json:"-"`
	Team1     decimal.Decimal `json:"team1"`
	Team2     decimal.Decimal `json:"team2"`
	UpdatedAt time.Time       `json:"-"`
}

func DefaultOdds(matchID string) *Odds {
	return &Odds{MatchID: matchID, Team1: DefaultOddsValue, Team2: DefaultOddsValue}
}

// For returns the multiplier for a winning side.
func (o *Odds) For(side Side) decimal.Decimal {
	if side == SideTeam1 {
		return o.Team1
	}
	return o.Team2
}

type SetOddsRequest struct {
	Team1Odds decimal.Decimal `json:"team1Odds"`
	Team2Odds decimal.Decimal `json:"team2Odds"`
}
