package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/etfguard-backend/internal/domain"
)

// userRepository implements domain.UserRepository
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Save upserts the user and replaces its positions in a single database transaction
func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	upsertUserQuery := `
		INSERT INTO users (id, telegram_chat_id, telegram_username, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET telegram_chat_id = EXCLUDED.telegram_chat_id,
			telegram_username = EXCLUDED.telegram_username,
			updated_at = EXCLUDED.updated_at
	`

	_, err = dbTx.ExecContext(ctx, upsertUserQuery,
		user.ID,
		int64(user.TelegramChatID),
		user.TelegramUsername,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM positions WHERE user_id = $1`, user.ID); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}

	insertPositionQuery := `
		INSERT INTO positions (id, user_id, symbol, quantity, average_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, p := range user.Portfolio.Positions() {
		_, err = dbTx.ExecContext(ctx, insertPositionQuery,
			p.ID,
			user.ID,
			p.Symbol,
			p.Quantity(),
			p.AveragePrice().StringFixed(),
			p.CreatedAt,
			p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert position %s: %w", p.Symbol, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a user with its positions
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, telegram_chat_id, telegram_username, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return r.withPortfolio(ctx, user)
}

// GetByChatID retrieves a user by Telegram chat id
func (r *userRepository) GetByChatID(ctx context.Context, chatID domain.TelegramChatID) (*domain.User, error) {
	query := `
		SELECT id, telegram_chat_id, telegram_username, created_at, updated_at
		FROM users
		WHERE telegram_chat_id = $1
	`
	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, int64(chatID)))
	if err != nil {
		return nil, fmt.Errorf("chat %s: %w", chatID, err)
	}
	return r.withPortfolio(ctx, user)
}

// ExistsByChatID reports whether a chat id is registered
func (r *userRepository) ExistsByChatID(ctx context.Context, chatID domain.TelegramChatID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE telegram_chat_id = $1)`,
		int64(chatID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check chat id: %w", err)
	}
	return exists, nil
}

// ListHolding returns every user holding symbol, with full portfolios
func (r *userRepository) ListHolding(ctx context.Context, symbol string) ([]*domain.User, error) {
	query := `
		SELECT DISTINCT u.id, u.telegram_chat_id, u.telegram_username, u.created_at, u.updated_at
		FROM users u
		JOIN positions p ON p.user_id = u.id
		WHERE p.symbol = $1
		ORDER BY u.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query holders: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holders: %w", err)
	}

	// positions are loaded after the cursor is closed
	for _, user := range users {
		if _, err := r.withPortfolio(ctx, user); err != nil {
			return nil, err
		}
	}

	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *userRepository) scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var chatID int64

	err := row.Scan(&user.ID, &chatID, &user.TelegramUsername, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.TelegramChatID = domain.TelegramChatID(chatID)

	return &user, nil
}

// withPortfolio loads the stored positions as they are; averages are not re-derived
func (r *userRepository) withPortfolio(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		SELECT id, symbol, quantity, average_price, created_at, updated_at
		FROM positions
		WHERE user_id = $1
		ORDER BY created_at, symbol
	`

	rows, err := r.db.QueryContext(ctx, query, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []*domain.Position
	for rows.Next() {
		var (
			id                   uuid.UUID
			symbol, averagePrice string
			quantity             int
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &symbol, &quantity, &averagePrice, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}

		price, err := parseMoney("average_price", averagePrice)
		if err != nil {
			return nil, err
		}

		position, err := domain.ReconstitutePosition(id, symbol, quantity, price, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	portfolio, err := domain.ReconstitutePortfolio(positions)
	if err != nil {
		return nil, err
	}
	user.Portfolio = portfolio

	return user, nil
}
