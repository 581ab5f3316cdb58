package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simaogato/etfguard-backend/internal/domain"
)

// dividendRepository implements domain.DividendRepository
type dividendRepository struct {
	db *DB
}

// NewDividendRepository creates a new dividend repository
func NewDividendRepository(db *DB) domain.DividendRepository {
	return &dividendRepository{db: db}
}

const dividendColumns = `id, symbol, ex_dividend_date, payment_date, amount_per_share, roc_percentage`

// Save stores a dividend; a re-announced distribution for the same ex date replaces the old one
func (r *dividendRepository) Save(ctx context.Context, dividend *domain.Dividend) error {
	query := `
		INSERT INTO dividends (` + dividendColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, ex_dividend_date) DO UPDATE
		SET payment_date = EXCLUDED.payment_date,
			amount_per_share = EXCLUDED.amount_per_share,
			roc_percentage = EXCLUDED.roc_percentage
	`

	_, err := r.db.ExecContext(ctx, query,
		dividend.ID,
		dividend.Symbol,
		dividend.ExDate,
		dividend.PayDate,
		dividend.AmountPerShare.StringFixed(),
		nullROC(dividend.ROC),
	)
	if err != nil {
		return fmt.Errorf("failed to insert dividend: %w", err)
	}

	return nil
}

// GetLatest returns the dividend with the most recent ex date
func (r *dividendRepository) GetLatest(ctx context.Context, symbol string) (*domain.Dividend, error) {
	query := `
		SELECT ` + dividendColumns + `
		FROM dividends
		WHERE symbol = $1
		ORDER BY ex_dividend_date DESC
		LIMIT 1
	`

	dividend, err := scanDividend(r.db.QueryRowContext(ctx, query, symbol))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no dividend found for %s: %w", symbol, domain.ErrInstrumentNotFound)
		}
		return nil, fmt.Errorf("failed to get latest dividend: %w", err)
	}

	return dividend, nil
}

// ListByDateRange returns dividends whose ex date lies in [from, to]
func (r *dividendRepository) ListByDateRange(ctx context.Context, symbol string, from, to time.Time) ([]*domain.Dividend, error) {
	query := `
		SELECT ` + dividendColumns + `
		FROM dividends
		WHERE symbol = $1 AND ex_dividend_date BETWEEN $2 AND $3
		ORDER BY ex_dividend_date
	`
	return r.list(ctx, query, symbol, from, to)
}

// ListByPaymentDate returns every dividend paid on date
func (r *dividendRepository) ListByPaymentDate(ctx context.Context, date time.Time) ([]*domain.Dividend, error) {
	query := `
		SELECT ` + dividendColumns + `
		FROM dividends
		WHERE payment_date = $1
		ORDER BY symbol
	`
	return r.list(ctx, query, date)
}

func (r *dividendRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Dividend, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividends: %w", err)
	}
	defer rows.Close()

	var dividends []*domain.Dividend
	for rows.Next() {
		dividend, err := scanDividend(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dividend: %w", err)
		}
		dividends = append(dividends, dividend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividends: %w", err)
	}

	return dividends, nil
}

func scanDividend(row rowScanner) (*domain.Dividend, error) {
	var d domain.Dividend
	var amount string
	var roc sql.NullString

	if err := row.Scan(&d.ID, &d.Symbol, &d.ExDate, &d.PayDate, &amount, &roc); err != nil {
		return nil, err
	}

	var err error
	if d.AmountPerShare, err = parseMoney("amount_per_share", amount); err != nil {
		return nil, err
	}
	if d.ROC, err = parseNullROC(roc); err != nil {
		return nil, err
	}

	return &d, nil
}
