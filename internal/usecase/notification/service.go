package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/etfguard-backend/internal/domain"
)

// InstrumentAnalyzer produces the current risk of one instrument
type InstrumentAnalyzer interface {
	AnalyzeInstrument(ctx context.Context, symbol string) (domain.RiskMetrics, error)
}

// NotificationService renders dividend and risk notifications and hands them to the sender
type NotificationService struct {
	Sender       domain.NotificationSender
	UserRepo     domain.UserRepository
	DividendRepo domain.DividendRepository
	Analyzer     InstrumentAnalyzer
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(
	sender domain.NotificationSender,
	userRepo domain.UserRepository,
	dividendRepo domain.DividendRepository,
	analyzer InstrumentAnalyzer,
) *NotificationService {
	return &NotificationService{
		Sender:       sender,
		UserRepo:     userRepo,
		DividendRepo: dividendRepo,
		Analyzer:     analyzer,
	}
}

// Send delivers a rendered message. It fails with ErrNotificationUnavailable when the
// sender cannot deliver.
func (s *NotificationService) Send(ctx context.Context, message *domain.NotificationMessage) error {
	if !s.Sender.Available() {
		return domain.ErrNotificationUnavailable
	}
	if err := s.Sender.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send notification to chat %s: %w", message.ChatID, err)
	}
	return nil
}

// SendDividendNotification tells the user what their position in symbol earns from the
// latest distribution. Users not holding symbol are skipped without error.
func (s *NotificationService) SendDividendNotification(ctx context.Context, userID uuid.UUID, symbol string) error {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPosition(symbol) {
		return nil
	}

	position, err := user.Portfolio.Position(symbol)
	if err != nil {
		return err
	}

	dividend, err := s.DividendRepo.GetLatest(ctx, symbol)
	if err != nil && !errors.Is(err, domain.ErrInstrumentNotFound) {
		return fmt.Errorf("failed to load latest dividend for %s: %w", symbol, err)
	}

	content, err := DividendContent(position, dividend)
	if err != nil {
		return err
	}

	priority := domain.NotificationPriorityLow
	if dividend != nil && dividend.HasROC() {
		priority = domain.NotificationPriorityNormal
	}

	message, err := domain.NewNotificationMessage(user.TelegramChatID, symbol+" dividend notice", content, priority)
	if err != nil {
		return err
	}

	return s.Send(ctx, message)
}

// SendRiskAlert sends the current risk assessment of symbol to the user
func (s *NotificationService) SendRiskAlert(ctx context.Context, userID uuid.UUID, symbol string) error {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	metrics, err := s.Analyzer.AnalyzeInstrument(ctx, symbol)
	if err != nil {
		return err
	}

	message, err := domain.NewNotificationMessage(
		user.TelegramChatID,
		symbol+" risk alert",
		RiskAlertContent(metrics),
		domain.PriorityForRiskLevel(metrics.OverallRiskLevel()),
	)
	if err != nil {
		return err
	}

	return s.Send(ctx, message)
}

// DividendContent renders the dividend body for a position. dividend may be nil.
func DividendContent(position *domain.Position, dividend *domain.Dividend) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Quantity held: %d shares\n", position.Quantity())
	fmt.Fprintf(&sb, "Average cost: %s\n\n", position.AveragePrice())

	if dividend == nil {
		sb.WriteString("No dividend information available.")
		return sb.String(), nil
	}

	expected, err := dividend.TotalFor(position.Quantity())
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&sb, "Dividend per share: %s\n", dividend.AmountPerShare)
	fmt.Fprintf(&sb, "Expected dividend: %s\n", expected)
	fmt.Fprintf(&sb, "Payment date: %s\n", dividend.PayDate.Format(time.DateOnly))

	if roc, ok := dividend.ROC.Get(); ok {
		fmt.Fprintf(&sb, "\nROC: %s\n", roc)
	}

	return sb.String(), nil
}

// RiskAlertContent renders the overall level and every factor of metrics
func RiskAlertContent(metrics domain.RiskMetrics) string {
	level := metrics.OverallRiskLevel()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Overall risk: %s (%s)\n\n", level.DisplayName(), level.Description())

	sb.WriteString("Details:\n")
	for _, f := range metrics.Factors() {
		fmt.Fprintf(&sb, "- [%s] %s: %s\n", f.Level.DisplayName(), f.Category, f.Message)
	}

	if metrics.RequiresAction() {
		sb.WriteString("\nCaution: action may be required immediately.")
	}

	return sb.String()
}
