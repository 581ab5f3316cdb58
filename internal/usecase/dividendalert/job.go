package dividendalert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/etfguard-backend/internal/domain"
)

var now = time.Now

// Notifier sends the per-user messages of a payment day
type Notifier interface {
	SendDividendNotification(ctx context.Context, userID uuid.UUID, symbol string) error
	SendRiskAlert(ctx context.Context, userID uuid.UUID, symbol string) error
}

// DividendJob notifies every holder of an instrument on its payment day
type DividendJob struct {
	UserRepo domain.UserRepository
	Notifier Notifier

	enabled bool
	loc     *time.Location
	log     zerolog.Logger
}

// NewDividendJob creates a new DividendJob instance. Payment days are evaluated in loc;
// a disabled job skips scheduled runs but still serves manual triggers.
func NewDividendJob(userRepo domain.UserRepository, notifier Notifier, enabled bool, loc *time.Location, log zerolog.Logger) *DividendJob {
	if loc == nil {
		loc = time.UTC
	}
	return &DividendJob{
		UserRepo: userRepo,
		Notifier: notifier,
		enabled:  enabled,
		loc:      loc,
		log:      log.With().Str("component", "dividend_alert").Logger(),
	}
}

// Name returns the job name
func (j *DividendJob) Name() string {
	return "dividend_alert"
}

// Run notifies holders of every instrument whose payment day is today
func (j *DividendJob) Run(ctx context.Context) error {
	if !j.enabled {
		j.log.Debug().Msg("Scheduler is disabled, skipping dividend notifications")
		return nil
	}

	today := now().In(j.loc)
	j.log.Info().Str("date", today.Format(time.DateOnly)).Msg("Starting dividend notifications")

	var errs []error
	for _, symbol := range domain.SupportedSymbols() {
		due, err := IsPaymentDay(symbol, today)
		if err != nil {
			return err
		}
		if !due {
			continue
		}
		if _, err := j.notifyHolders(ctx, symbol); err != nil {
			errs = append(errs, err)
		}
	}

	j.log.Info().Msg("Dividend notifications completed")
	return errors.Join(errs...)
}

// TriggerSymbol notifies the holders of one supported instrument regardless of the date.
// It returns the number of users notified.
func (j *DividendJob) TriggerSymbol(ctx context.Context, symbol string) (int, error) {
	if !domain.IsSupported(symbol) {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedInstrument, symbol)
	}
	j.log.Info().Str("symbol", symbol).Msg("Manual trigger")
	return j.notifyHolders(ctx, symbol)
}

// TriggerAll notifies the holders of every supported instrument
func (j *DividendJob) TriggerAll(ctx context.Context) (int, error) {
	j.log.Info().Msg("Manual trigger for all instruments")

	total := 0
	var errs []error
	for _, symbol := range domain.SupportedSymbols() {
		n, err := j.notifyHolders(ctx, symbol)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// IsPaymentDay reports whether date is the instrument's payment day: its configured day
// of month, or the last day of months too short to have it
func IsPaymentDay(symbol string, date time.Time) (bool, error) {
	metadata, err := domain.CatalogMetadata(symbol)
	if err != nil {
		return false, err
	}

	day := date.Day()
	lastDay := time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, date.Location()).Day()

	return day == metadata.PaymentDayOfMonth || day == lastDay, nil
}

// notifyHolders sends the dividend notice followed by the risk alert to each holder.
// A failing user is logged and skipped; only failing to list holders is an error.
func (j *DividendJob) notifyHolders(ctx context.Context, symbol string) (int, error) {
	users, err := j.UserRepo.ListHolding(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to list holders of %s: %w", symbol, err)
	}
	if len(users) == 0 {
		j.log.Info().Str("symbol", symbol).Msg("No holders found")
		return 0, nil
	}

	j.log.Info().Str("symbol", symbol).Int("holders", len(users)).Msg("Sending dividend notifications")

	notified := 0
	for _, user := range users {
		if err := j.notifyUser(ctx, user.ID, symbol); err != nil {
			j.log.Error().
				Err(err).
				Str("user_id", user.ID.String()).
				Str("symbol", symbol).
				Msg("Failed to notify user")
			continue
		}
		notified++
	}

	j.log.Info().Str("symbol", symbol).Int("notified", notified).Msg("Dividend notifications sent")
	return notified, nil
}

func (j *DividendJob) notifyUser(ctx context.Context, userID uuid.UUID, symbol string) error {
	if err := j.Notifier.SendDividendNotification(ctx, userID, symbol); err != nil {
		return err
	}
	return j.Notifier.SendRiskAlert(ctx, userID, symbol)
}
