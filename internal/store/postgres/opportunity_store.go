package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantara/edgescan/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore. Legs are stored as a
// JSONB document: baskets vary in leg count and nothing queries individual
// legs relationally.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// Insert stores a detected arbitrage opportunity.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.ArbitrageOpportunity) error {
	legs, err := json.Marshal(opp.Legs)
	if err != nil {
		return fmt.Errorf("postgres: encode legs for %s: %w", opp.ID, err)
	}

	const query = `
		INSERT INTO arb_opportunities (
			id, event_id, total_implied_probability, profit_percent, legs, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = s.pool.Exec(ctx, query,
		opp.ID, opp.EventID, opp.TotalImpliedProbability, opp.ProfitPercent, legs, opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

const oppSelectCols = `id, event_id, total_implied_probability, profit_percent, legs, detected_at`

// GetByID returns one opportunity, or domain.ErrNotFound.
func (s *OpportunityStore) GetByID(ctx context.Context, id string) (domain.ArbitrageOpportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM arb_opportunities WHERE id = $1`
	opp, err := scanOpportunity(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ArbitrageOpportunity{}, domain.ErrNotFound
		}
		return domain.ArbitrageOpportunity{}, fmt.Errorf("postgres: get opportunity %s: %w", id, err)
	}
	return opp, nil
}

// ListRecent returns up to limit opportunities, newest first.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.ArbitrageOpportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM arb_opportunities ORDER BY detected_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()
	return collectOpportunities(rows)
}

// ListByEvent returns a page of opportunities for one event, newest first.
func (s *OpportunityStore) ListByEvent(ctx context.Context, eventID string, opts domain.ListOpts) ([]domain.ArbitrageOpportunity, error) {
	query := `SELECT ` + oppSelectCols + `
		FROM arb_opportunities
		WHERE event_id = $1
		ORDER BY detected_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, query, eventID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities for %s: %w", eventID, err)
	}
	defer rows.Close()
	return collectOpportunities(rows)
}

// CountSince returns how many opportunities were detected after since.
func (s *OpportunityStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM arb_opportunities WHERE detected_at >= $1`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count opportunities: %w", err)
	}
	return count, nil
}

func scanOpportunity(row pgx.Row) (domain.ArbitrageOpportunity, error) {
	var opp domain.ArbitrageOpportunity
	var legs []byte
	if err := row.Scan(
		&opp.ID, &opp.EventID, &opp.TotalImpliedProbability, &opp.ProfitPercent, &legs, &opp.DetectedAt,
	); err != nil {
		return domain.ArbitrageOpportunity{}, err
	}
	if err := json.Unmarshal(legs, &opp.Legs); err != nil {
		return domain.ArbitrageOpportunity{}, fmt.Errorf("decode legs: %w", err)
	}
	return opp, nil
}

func collectOpportunities(rows pgx.Rows) ([]domain.ArbitrageOpportunity, error) {
	var opps []domain.ArbitrageOpportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunities: %w", err)
	}
	return opps, nil
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)
