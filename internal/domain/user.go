package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is a registered Telegram user and the owner of one portfolio
type User struct {
	ID               uuid.UUID
	TelegramChatID   TelegramChatID
	TelegramUsername string
	Portfolio        *Portfolio
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RegisterUser creates a user with an empty portfolio
func RegisterUser(chatID TelegramChatID, username string) *User {
	ts := now()
	return &User{
		ID:               uuid.New(),
		TelegramChatID:   chatID,
		TelegramUsername: username,
		Portfolio:        NewPortfolio(),
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}
}

// The mutators below delegate to the portfolio and touch UpdatedAt on success.

func (u *User) AddPosition(symbol string, quantity int, averagePrice Money) error {
	return u.touch(u.Portfolio.AddPosition(symbol, quantity, averagePrice))
}

func (u *User) AddToPosition(symbol string, quantity int, purchasePrice Money) error {
	return u.touch(u.Portfolio.AddToPosition(symbol, quantity, purchasePrice))
}

func (u *User) ReducePosition(symbol string, quantity int) error {
	return u.touch(u.Portfolio.RemoveFromPosition(symbol, quantity))
}

func (u *User) RemovePosition(symbol string) error {
	return u.touch(u.Portfolio.RemovePosition(symbol))
}

func (u *User) HasPosition(symbol string) bool {
	return u.Portfolio.HasPosition(symbol)
}

func (u *User) Weight(symbol string, prices Prices) (decimal.Decimal, error) {
	return u.Portfolio.Weight(symbol, prices)
}

func (u *User) TotalValue(prices Prices) (Money, error) {
	return u.Portfolio.TotalValue(prices)
}

func (u *User) touch(err error) error {
	if err == nil {
		u.UpdatedAt = now()
	}
	return err
}
