// Package fundfile reads fund data (price, NAV, indicators and distributions) from a YAML
// file maintained by an operator or a scraper job.
//
// Example:
//
//	as_of: 2026-10-16
//	funds:
//	  GOF:
//	    price: "14.87"
//	    nav: "11.99"
//	    leverage: "32.5"
//	    previous_leverage: "31.0"
//	    roc: "92"
//	    dividend:
//	      ex_date: 2026-10-15
//	      pay_date: 2026-10-31
//	      amount_per_share: "0.1821"
//	  QQQI:
//	    price: "52.31"
//	    nav: "52.10"
//	    roc: "100"
//	    nasdaq_trend: "-3.46"
package fundfile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/etfguard-backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// File is the parsed content of a fund-data file
type File struct {
	AsOf  time.Time       `yaml:"as_of"`
	Funds map[string]Fund `yaml:"funds"`
}

// Fund holds one instrument's figures. Every indicator is optional; a missing key means
// the reading is absent.
type Fund struct {
	Price            string        `yaml:"price"`
	NAV              string        `yaml:"nav"`
	Premium          *string       `yaml:"premium"`
	Leverage         *string       `yaml:"leverage"`
	PreviousLeverage *string       `yaml:"previous_leverage"`
	ROC              *string       `yaml:"roc"`
	NasdaqTrend      *string       `yaml:"nasdaq_trend"`
	LastDistribution *string       `yaml:"last_distribution"`
	Dividend         *DividendInfo `yaml:"dividend"`
}

// DividendInfo is the most recently announced distribution
type DividendInfo struct {
	ExDate         time.Time `yaml:"ex_date"`
	PayDate        time.Time `yaml:"pay_date"`
	AmountPerShare string    `yaml:"amount_per_share"`
	ROC            *string   `yaml:"roc"`
}

// Load reads and parses a fund-data file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fund data file: %w", err)
	}
	return Parse(data)
}

// Parse decodes fund-data YAML
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: fund data: %v", domain.ErrMalformedValue, err)
	}
	if f.AsOf.IsZero() {
		return nil, fmt.Errorf("%w: fund data has no as_of date", domain.ErrMalformedValue)
	}
	return &f, nil
}

func (f *File) fund(symbol string) (Fund, error) {
	fund, ok := f.Funds[symbol]
	if !ok {
		return Fund{}, fmt.Errorf("no fund data for %s: %w", symbol, domain.ErrInstrumentNotFound)
	}
	return fund, nil
}

// Snapshot returns the price and NAV of symbol
func (f *File) Snapshot(symbol string) (domain.Snapshot, error) {
	fund, err := f.fund(symbol)
	if err != nil {
		return domain.Snapshot{}, err
	}

	price, err := domain.MoneyFromString(fund.Price)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%s price: %w", symbol, err)
	}
	nav, err := domain.MoneyFromString(fund.NAV)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%s nav: %w", symbol, err)
	}

	return domain.NewSnapshot(symbol, price, nav, f.AsOf)
}

// Indicators returns the readings of symbol; keys missing from the file stay absent
func (f *File) Indicators(symbol string) (domain.Indicators, error) {
	fund, err := f.fund(symbol)
	if err != nil {
		return domain.Indicators{}, err
	}

	var ind domain.Indicators

	if fund.Premium != nil {
		p, err := domain.ParsePremium(*fund.Premium)
		if err != nil {
			return ind, fmt.Errorf("%s premium: %w", symbol, err)
		}
		ind.Premium = domain.Some(p)
	}

	if fund.Leverage != nil {
		previous := ""
		if fund.PreviousLeverage != nil {
			previous = *fund.PreviousLeverage
		}
		l, err := domain.ParseLeverage(*fund.Leverage, previous)
		if err != nil {
			return ind, fmt.Errorf("%s leverage: %w", symbol, err)
		}
		ind.Leverage = domain.Some(l)
	}

	if fund.ROC != nil {
		roc, err := domain.ParseROC(*fund.ROC)
		if err != nil {
			return ind, fmt.Errorf("%s roc: %w", symbol, err)
		}
		ind.ROC = domain.Some(roc)
	}

	if fund.NasdaqTrend != nil {
		trend, err := decimal.NewFromString(*fund.NasdaqTrend)
		if err != nil {
			return ind, fmt.Errorf("%w: %s nasdaq_trend %q", domain.ErrMalformedValue, symbol, *fund.NasdaqTrend)
		}
		ind.Trend = domain.Some(trend)
	}

	if fund.LastDistribution != nil {
		last, err := domain.MoneyFromString(*fund.LastDistribution)
		if err != nil {
			return ind, fmt.Errorf("%s last_distribution: %w", symbol, err)
		}
		ind.LastDistribution = domain.Some(last)
	}

	return ind, nil
}

// Dividend returns the announced distribution of symbol, or nil when the file has none
func (f *File) Dividend(symbol string) (*domain.Dividend, error) {
	fund, err := f.fund(symbol)
	if err != nil {
		return nil, err
	}
	if fund.Dividend == nil {
		return nil, nil
	}

	info := fund.Dividend
	amount, err := domain.MoneyFromString(info.AmountPerShare)
	if err != nil {
		return nil, fmt.Errorf("%s dividend amount: %w", symbol, err)
	}

	roc := domain.None[domain.ROC]()
	if info.ROC != nil {
		r, err := domain.ParseROC(*info.ROC)
		if err != nil {
			return nil, fmt.Errorf("%s dividend roc: %w", symbol, err)
		}
		roc = domain.Some(r)
	}

	return domain.NewDividend(symbol, info.ExDate, info.PayDate, amount, roc)
}

// Reading combines the snapshot and indicators of symbol. Premium falls back to the
// snapshot's derived premium and the last distribution to the announced dividend.
func (f *File) Reading(symbol string) (domain.InstrumentReading, error) {
	snapshot, err := f.Snapshot(symbol)
	if err != nil {
		return domain.InstrumentReading{}, err
	}
	ind, err := f.Indicators(symbol)
	if err != nil {
		return domain.InstrumentReading{}, err
	}
	if !ind.Premium.IsPresent() {
		ind.Premium = snapshot.PremiumPercent()
	}
	if !ind.LastDistribution.IsPresent() {
		dividend, err := f.Dividend(symbol)
		if err != nil {
			return domain.InstrumentReading{}, err
		}
		if dividend != nil {
			ind.LastDistribution = domain.Some(dividend.AmountPerShare)
		}
	}

	return domain.InstrumentReading{Snapshot: snapshot, Indicators: ind, RecordedAt: f.AsOf}, nil
}

// Source serves a fund-data file as both domain.QuoteSource and domain.FundDataSource.
// The file is re-read on every call so edits are picked up without a restart.
type Source struct {
	path string
}

// NewSource creates a new Source reading path
func NewSource(path string) *Source {
	return &Source{path: path}
}

// FetchSnapshot implements domain.QuoteSource
func (s *Source) FetchSnapshot(ctx context.Context, symbol string) (domain.Snapshot, error) {
	f, err := s.load(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return f.Snapshot(symbol)
}

// FetchIndicators implements domain.FundDataSource
func (s *Source) FetchIndicators(ctx context.Context, symbol string) (domain.Indicators, error) {
	f, err := s.load(ctx)
	if err != nil {
		return domain.Indicators{}, err
	}
	return f.Indicators(symbol)
}

// FetchLatestDividend implements domain.FundDataSource
func (s *Source) FetchLatestDividend(ctx context.Context, symbol string) (*domain.Dividend, error) {
	f, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return f.Dividend(symbol)
}

func (s *Source) load(ctx context.Context) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(s.path)
}
