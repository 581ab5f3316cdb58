package postgres

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/etfguard-backend/internal/domain"
)

// Optional readings are stored as NULL, never as 0.

func nullDecimal(value domain.Optional[decimal.Decimal]) sql.NullString {
	d, ok := value.Get()
	if !ok {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDecimal(column string, value sql.NullString) (domain.Optional[decimal.Decimal], error) {
	if !value.Valid {
		return domain.None[decimal.Decimal](), nil
	}
	d, err := decimal.NewFromString(value.String)
	if err != nil {
		return domain.None[decimal.Decimal](), fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return domain.Some(d), nil
}

func parseMoney(column, value string) (domain.Money, error) {
	m, err := domain.MoneyFromString(value)
	if err != nil {
		return domain.Money{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return m, nil
}

func nullROC(value domain.Optional[domain.ROC]) sql.NullString {
	roc, ok := value.Get()
	if !ok {
		return sql.NullString{}
	}
	return sql.NullString{String: roc.Value().String(), Valid: true}
}

func parseNullROC(value sql.NullString) (domain.Optional[domain.ROC], error) {
	if !value.Valid {
		return domain.None[domain.ROC](), nil
	}
	roc, err := domain.ParseROC(value.String)
	if err != nil {
		return domain.None[domain.ROC](), fmt.Errorf("failed to parse roc_percentage: %w", err)
	}
	return domain.Some(roc), nil
}
