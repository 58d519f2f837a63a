package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantara/edgescan/internal/domain"
)

// ValueFlagStore implements domain.ValueFlagStore.
type ValueFlagStore struct {
	pool *pgxpool.Pool
}

// NewValueFlagStore creates a ValueFlagStore backed by the given pool.
func NewValueFlagStore(pool *pgxpool.Pool) *ValueFlagStore {
	return &ValueFlagStore{pool: pool}
}

// Insert stores a value flag.
func (s *ValueFlagStore) Insert(ctx context.Context, flag domain.ValueFlag) error {
	const query = `
		INSERT INTO value_flags (
			id, outcome_id, source_id, quoted_probability, consensus_probability,
			edge_percent, confidence, sources, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, query,
		flag.ID, flag.OutcomeID, flag.SourceID, flag.QuotedProbability, flag.ConsensusProbability,
		flag.EdgePercent, flag.Confidence, flag.Sources, flag.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert value flag %s: %w", flag.ID, err)
	}
	return nil
}

const flagSelectCols = `id, outcome_id, source_id, quoted_probability, consensus_probability,
	edge_percent, confidence, sources, detected_at`

// ListRecent returns up to limit flags, newest first.
func (s *ValueFlagStore) ListRecent(ctx context.Context, limit int) ([]domain.ValueFlag, error) {
	query := `SELECT ` + flagSelectCols + ` FROM value_flags ORDER BY detected_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent value flags: %w", err)
	}
	defer rows.Close()
	return collectFlags(rows)
}

// ListByConfidence returns a page of flags at one confidence grade.
func (s *ValueFlagStore) ListByConfidence(ctx context.Context, confidence domain.ValueConfidence, opts domain.ListOpts) ([]domain.ValueFlag, error) {
	query := `SELECT ` + flagSelectCols + `
		FROM value_flags
		WHERE confidence = $1
		ORDER BY detected_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, query, confidence, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list value flags by confidence: %w", err)
	}
	defer rows.Close()
	return collectFlags(rows)
}

func collectFlags(rows pgx.Rows) ([]domain.ValueFlag, error) {
	var flags []domain.ValueFlag
	for rows.Next() {
		var f domain.ValueFlag
		if err := rows.Scan(
			&f.ID, &f.OutcomeID, &f.SourceID, &f.QuotedProbability, &f.ConsensusProbability,
			&f.EdgePercent, &f.Confidence, &f.Sources, &f.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan value flag: %w", err)
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate value flags: %w", err)
	}
	return flags, nil
}

var _ domain.ValueFlagStore = (*ValueFlagStore)(nil)
