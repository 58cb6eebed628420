package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"cricketbet/internal/events"
	"cricketbet/internal/models"
	"cricketbet/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var phoneSeq atomic.Int64

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedUser(t *testing.T, store *memory.Store, balance string) *models.User {
	t.Helper()
	user := &models.User{
		ID:      uuid.NewString(),
		Phone:   fmt.Sprintf("9%09d", phoneSeq.Add(1)),
		Name:    "Tester",
		Balance: dec(balance),
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func balanceOf(t *testing.T, store *memory.Store, userID string) decimal.Decimal {
	t.Helper()
	user, err := store.Users().GetByID(context.Background(), userID)
	require.NoError(t, err)
	return user.Balance
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(typ events.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

var nopLogger = zerolog.Nop()
