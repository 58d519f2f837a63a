package domain

import (
	"context"
	"time"
)

// OpportunityStore persists detected arbitrage opportunities for history
// queries and post-hoc review.
type OpportunityStore interface {
	Insert(ctx context.Context, opp ArbitrageOpportunity) error
	GetByID(ctx context.Context, id string) (ArbitrageOpportunity, error)
	ListRecent(ctx context.Context, limit int) ([]ArbitrageOpportunity, error)
	ListByEvent(ctx context.Context, eventID string, opts ListOpts) ([]ArbitrageOpportunity, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// ValueFlagStore persists value-bet flags.
type ValueFlagStore interface {
	Insert(ctx context.Context, flag ValueFlag) error
	ListRecent(ctx context.Context, limit int) ([]ValueFlag, error)
	ListByConfidence(ctx context.Context, confidence ValueConfidence, opts ListOpts) ([]ValueFlag, error)
}
