package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/simaogato/etfguard-backend/internal/domain"
)

// CatalogSeeder handles seeding of the supported instruments' metadata
type CatalogSeeder struct {
	repo domain.InstrumentRepository
}

// NewCatalogSeeder creates a new CatalogSeeder instance
func NewCatalogSeeder(repo domain.InstrumentRepository) *CatalogSeeder {
	return &CatalogSeeder{
		repo: repo,
	}
}

// Seed ensures every supported instrument has stored metadata.
// Existing rows are left untouched.
func (s *CatalogSeeder) Seed(ctx context.Context) (int, error) {
	created := 0

	for _, symbol := range domain.SupportedSymbols() {
		_, err := s.repo.GetMetadata(ctx, symbol)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrInstrumentNotFound) {
			return created, fmt.Errorf("failed to look up %s metadata: %w", symbol, err)
		}

		metadata, err := domain.CatalogMetadata(symbol)
		if err != nil {
			return created, err
		}

		if err := s.repo.SaveMetadata(ctx, metadata); err != nil {
			return created, fmt.Errorf("failed to seed %s metadata: %w", symbol, err)
		}
		created++
	}

	return created, nil
}
