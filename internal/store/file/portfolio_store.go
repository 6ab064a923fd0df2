// Package file implements domain.PortfolioStore on a single JSON ledger
// file, the default backend.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leowang-dev/polytriage/internal/domain"
)

// PortfolioStore persists the ledger as one pretty-printed JSON document,
// overwritten wholesale on every save.
//
// The store assumes a single writing process. Nothing here takes a file
// lock; two processes pointed at the same path will race and the last
// writer wins.
type PortfolioStore struct {
	path   string
	logger *slog.Logger
}

// NewPortfolioStore creates a PortfolioStore writing to path.
func NewPortfolioStore(path string, logger *slog.Logger) *PortfolioStore {
	return &PortfolioStore{
		path:   path,
		logger: logger.With(slog.String("component", "ledger_file")),
	}
}

// Load reads the ledger file. A missing file yields a fresh zeroed
// portfolio; an unreadable or corrupt file is logged and also degraded
// to a zeroed portfolio, trading acknowledged data loss for keeping the
// engine available.
func (s *PortfolioStore) Load(_ context.Context) (domain.Portfolio, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Portfolio{}, nil
		}
		s.logger.Warn("ledger unreadable, starting from a fresh portfolio",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return domain.Portfolio{}, nil
	}

	var p domain.Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("ledger corrupt, starting from a fresh portfolio",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return domain.Portfolio{}, nil
	}
	return p, nil
}

// Save overwrites the ledger file with the full portfolio. The document
// is written to a temp file in the same directory and renamed into
// place, so a crash mid-write never leaves a truncated ledger. Any
// failure is returned: a silently lost trade record is unacceptable.
func (s *PortfolioStore) Save(_ context.Context, p domain.Portfolio) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("file: marshal ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("file: create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file: write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: close ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: replace ledger: %w", err)
	}
	return nil
}
