package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user and portfolio persistence operations
type UserRepository interface {
	// Save inserts or updates the user and replaces its stored positions with the
	// portfolio's current ones
	Save(ctx context.Context, user *User) error

	// GetByID retrieves a user with its portfolio; ErrUserNotFound when absent
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByChatID retrieves a user by Telegram chat id; ErrUserNotFound when absent
	GetByChatID(ctx context.Context, chatID TelegramChatID) (*User, error)

	// ExistsByChatID reports whether a chat id is registered
	ExistsByChatID(ctx context.Context, chatID TelegramChatID) (bool, error)

	// ListHolding returns every user holding symbol
	ListHolding(ctx context.Context, symbol string) ([]*User, error)
}

// DividendRepository defines the interface for dividend persistence operations
type DividendRepository interface {
	// Save stores a dividend
	Save(ctx context.Context, dividend *Dividend) error

	// GetLatest returns the dividend with the most recent ex date; ErrInstrumentNotFound when none
	GetLatest(ctx context.Context, symbol string) (*Dividend, error)

	// ListByDateRange returns dividends whose ex date lies in [from, to]
	ListByDateRange(ctx context.Context, symbol string, from, to time.Time) ([]*Dividend, error)

	// ListByPaymentDate returns every dividend paid on date
	ListByPaymentDate(ctx context.Context, date time.Time) ([]*Dividend, error)
}

// InstrumentRepository defines the interface for instrument metadata and readings
type InstrumentRepository interface {
	// SaveMetadata inserts or updates an instrument's metadata
	SaveMetadata(ctx context.Context, metadata InstrumentMetadata) error

	// GetMetadata returns an instrument's metadata; ErrInstrumentNotFound when absent
	GetMetadata(ctx context.Context, symbol string) (*InstrumentMetadata, error)

	// AddReading stores a new reading; older readings are kept as history
	AddReading(ctx context.Context, reading *InstrumentReading) error

	// GetLatestReading returns the most recent reading; ErrInstrumentNotFound when none
	GetLatestReading(ctx context.Context, symbol string) (*InstrumentReading, error)
}

// QuoteSource supplies price/NAV snapshots
type QuoteSource interface {
	FetchSnapshot(ctx context.Context, symbol string) (Snapshot, error)
}

// FundDataSource supplies indicator readings. Missing readings must be absent, never 0.
type FundDataSource interface {
	FetchIndicators(ctx context.Context, symbol string) (Indicators, error)

	// FetchLatestDividend returns the most recently announced distribution, or nil when
	// the source has none
	FetchLatestDividend(ctx context.Context, symbol string) (*Dividend, error)
}

// NotificationSender delivers rendered messages
type NotificationSender interface {
	Send(ctx context.Context, message *NotificationMessage) error
	Available() bool
}
