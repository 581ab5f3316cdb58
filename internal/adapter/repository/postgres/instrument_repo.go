package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/simaogato/etfguard-backend/internal/domain"
)

// instrumentRepository implements domain.InstrumentRepository
type instrumentRepository struct {
	db *DB
}

// NewInstrumentRepository creates a new instrument repository
func NewInstrumentRepository(db *DB) domain.InstrumentRepository {
	return &instrumentRepository{db: db}
}

// SaveMetadata inserts or updates an instrument's metadata
func (r *instrumentRepository) SaveMetadata(ctx context.Context, metadata domain.InstrumentMetadata) error {
	query := `
		INSERT INTO instruments (symbol, name, types, payment_day_of_month, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol) DO UPDATE
		SET name = EXCLUDED.name,
			types = EXCLUDED.types,
			payment_day_of_month = EXCLUDED.payment_day_of_month,
			description = EXCLUDED.description
	`

	types := make([]string, len(metadata.Types))
	for i, t := range metadata.Types {
		types[i] = string(t)
	}

	_, err := r.db.ExecContext(ctx, query,
		metadata.Symbol,
		metadata.Name,
		pq.Array(types),
		metadata.PaymentDayOfMonth,
		metadata.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert instrument %s: %w", metadata.Symbol, err)
	}

	return nil
}

// GetMetadata returns an instrument's metadata
func (r *instrumentRepository) GetMetadata(ctx context.Context, symbol string) (*domain.InstrumentMetadata, error) {
	query := `
		SELECT symbol, name, types, payment_day_of_month, description
		FROM instruments
		WHERE symbol = $1
	`

	var m domain.InstrumentMetadata
	var types []string

	err := r.db.QueryRowContext(ctx, query, symbol).Scan(
		&m.Symbol,
		&m.Name,
		pq.Array(&types),
		&m.PaymentDayOfMonth,
		&m.Description,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no metadata for %s: %w", symbol, domain.ErrInstrumentNotFound)
		}
		return nil, fmt.Errorf("failed to get instrument metadata: %w", err)
	}

	for _, t := range types {
		it, err := domain.ParseInstrumentType(t)
		if err != nil {
			return nil, err
		}
		m.Types = append(m.Types, it)
	}

	return &m, nil
}

// AddReading stores a new reading; earlier readings stay as history
func (r *instrumentRepository) AddReading(ctx context.Context, reading *domain.InstrumentReading) error {
	query := `
		INSERT INTO instrument_readings (
			id, symbol, price, nav, as_of,
			premium, leverage, previous_leverage, roc_percentage, nasdaq_trend, last_distribution,
			recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	ind := reading.Indicators

	premium := domain.None[decimal.Decimal]()
	if p, ok := ind.Premium.Get(); ok {
		premium = domain.Some(p.Value())
	}

	leverage, previous := domain.None[decimal.Decimal](), domain.None[decimal.Decimal]()
	if l, ok := ind.Leverage.Get(); ok {
		leverage, previous = domain.Some(l.Current()), l.Previous()
	}

	lastDistribution := domain.None[decimal.Decimal]()
	if m, ok := ind.LastDistribution.Get(); ok {
		lastDistribution = domain.Some(m.Decimal())
	}

	_, err := r.db.ExecContext(ctx, query,
		uuid.New(),
		reading.Snapshot.Symbol,
		reading.Snapshot.Price.StringFixed(),
		reading.Snapshot.NAV.StringFixed(),
		reading.Snapshot.AsOf,
		nullDecimal(premium),
		nullDecimal(leverage),
		nullDecimal(previous),
		nullROC(ind.ROC),
		nullDecimal(ind.Trend),
		nullDecimal(lastDistribution),
		reading.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading for %s: %w", reading.Snapshot.Symbol, err)
	}

	return nil
}

// GetLatestReading returns the most recently recorded reading
func (r *instrumentRepository) GetLatestReading(ctx context.Context, symbol string) (*domain.InstrumentReading, error) {
	query := `
		SELECT symbol, price, nav, as_of,
			premium, leverage, previous_leverage, roc_percentage, nasdaq_trend, last_distribution,
			recorded_at
		FROM instrument_readings
		WHERE symbol = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var (
		reading                          domain.InstrumentReading
		price, nav                       string
		premium, leverage, previous, roc sql.NullString
		trend, lastDistribution          sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, symbol).Scan(
		&reading.Snapshot.Symbol,
		&price,
		&nav,
		&reading.Snapshot.AsOf,
		&premium,
		&leverage,
		&previous,
		&roc,
		&trend,
		&lastDistribution,
		&reading.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no reading for %s: %w", symbol, domain.ErrInstrumentNotFound)
		}
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}

	if reading.Snapshot.Price, err = parseMoney("price", price); err != nil {
		return nil, err
	}
	if reading.Snapshot.NAV, err = parseMoney("nav", nav); err != nil {
		return nil, err
	}
	if reading.Indicators, err = parseIndicators(premium, leverage, previous, roc, trend, lastDistribution); err != nil {
		return nil, fmt.Errorf("reading for %s: %w", symbol, err)
	}

	return &reading, nil
}

func parseIndicators(premium, leverage, previous, roc, trend, lastDistribution sql.NullString) (domain.Indicators, error) {
	var ind domain.Indicators

	p, err := parseNullDecimal("premium", premium)
	if err != nil {
		return ind, err
	}
	if v, ok := p.Get(); ok {
		ind.Premium = domain.Some(domain.NewPremium(v))
	}

	cur, err := parseNullDecimal("leverage", leverage)
	if err != nil {
		return ind, err
	}
	prev, err := parseNullDecimal("previous_leverage", previous)
	if err != nil {
		return ind, err
	}
	if v, ok := cur.Get(); ok {
		l, err := domain.NewLeverage(v, prev)
		if err != nil {
			return ind, err
		}
		ind.Leverage = domain.Some(l)
	}

	if ind.ROC, err = parseNullROC(roc); err != nil {
		return ind, err
	}

	if ind.Trend, err = parseNullDecimal("nasdaq_trend", trend); err != nil {
		return ind, err
	}

	last, err := parseNullDecimal("last_distribution", lastDistribution)
	if err != nil {
		return ind, err
	}
	if v, ok := last.Get(); ok {
		ind.LastDistribution = domain.Some(domain.NewMoney(v))
	}

	return ind, nil
}
