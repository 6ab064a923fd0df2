package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// ledgerRowID is the fixed primary key of the single ledger row. The
// ledger is one document overwritten wholesale on save, mirroring the
// file backend's contract.
const ledgerRowID = 1

// PortfolioStore implements domain.PortfolioStore using PostgreSQL.
type PortfolioStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPortfolioStore creates a PortfolioStore backed by the given pool.
func NewPortfolioStore(pool *pgxpool.Pool, logger *slog.Logger) *PortfolioStore {
	return &PortfolioStore{
		pool:   pool,
		logger: logger.With(slog.String("component", "ledger_postgres")),
	}
}

// Load reads the ledger row. No row yet yields a fresh zeroed portfolio;
// an undecodable row is logged and degraded the same way, keeping the
// engine available at the cost of acknowledged data loss.
func (s *PortfolioStore) Load(ctx context.Context) (domain.Portfolio, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM portfolio_ledger WHERE id = $1`, ledgerRowID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Portfolio{}, nil
		}
		return domain.Portfolio{}, fmt.Errorf("postgres: load ledger: %w", err)
	}

	var p domain.Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("ledger row corrupt, starting from a fresh portfolio",
			slog.String("error", err.Error()),
		)
		return domain.Portfolio{}, nil
	}
	return p, nil
}

// Save upserts the full ledger document. Failures are returned to the
// caller, never swallowed.
func (s *PortfolioStore) Save(ctx context.Context, p domain.Portfolio) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("postgres: marshal ledger: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO portfolio_ledger (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		ledgerRowID, data,
	)
	if err != nil {
		return fmt.Errorf("postgres: save ledger: %w", err)
	}
	return nil
}
