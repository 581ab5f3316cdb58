package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NotificationPriority routes notifications
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityNormal NotificationPriority = "NORMAL"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
	NotificationPriorityUrgent NotificationPriority = "URGENT"
)

// PriorityForRiskLevel is the fixed one-to-one RiskLevel → priority table
func PriorityForRiskLevel(level RiskLevel) NotificationPriority {
	switch level {
	case RiskLevelMedium:
		return NotificationPriorityNormal
	case RiskLevelHigh:
		return NotificationPriorityHigh
	case RiskLevelCritical:
		return NotificationPriorityUrgent
	default:
		return NotificationPriorityLow
	}
}

// DisplayName is the label shown to users
func (p NotificationPriority) DisplayName() string {
	switch p {
	case NotificationPriorityLow:
		return "Low"
	case NotificationPriorityNormal:
		return "Normal"
	case NotificationPriorityHigh:
		return "High"
	case NotificationPriorityUrgent:
		return "Urgent"
	default:
		return string(p)
	}
}

// TelegramChatID identifies a user's Telegram chat. It is never 0.
type TelegramChatID int64

// NewTelegramChatID validates a chat id
func NewTelegramChatID(value int64) (TelegramChatID, error) {
	if value == 0 {
		return 0, fmt.Errorf("%w: telegram chat id cannot be 0", ErrMalformedValue)
	}
	return TelegramChatID(value), nil
}

// ParseTelegramChatID parses a chat id from text
func ParseTelegramChatID(value string) (TelegramChatID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: telegram chat id %q", ErrMalformedValue, value)
	}
	return NewTelegramChatID(v)
}

func (id TelegramChatID) String() string { return strconv.FormatInt(int64(id), 10) }

// NotificationMessage is a rendered message ready for a sender
type NotificationMessage struct {
	ChatID    TelegramChatID
	Title     string
	Content   string
	Priority  NotificationPriority
	CreatedAt time.Time
}

// NewNotificationMessage validates and stamps a message
func NewNotificationMessage(chatID TelegramChatID, title, content string, priority NotificationPriority) (*NotificationMessage, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("%w: chat id is required", ErrMalformedValue)
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrMalformedValue)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrMalformedValue)
	}
	if priority == "" {
		return nil, fmt.Errorf("%w: priority is required", ErrMalformedValue)
	}

	return &NotificationMessage{
		ChatID:    chatID,
		Title:     title,
		Content:   content,
		Priority:  priority,
		CreatedAt: now(),
	}, nil
}

// FormatForTelegram renders the message as Telegram Markdown
func (m *NotificationMessage) FormatForTelegram() string {
	return "*" + m.Title + "*\n\n" + m.Content
}

// IsHighPriority is true for HIGH and URGENT
func (m *NotificationMessage) IsHighPriority() bool {
	return m.Priority == NotificationPriorityHigh || m.Priority == NotificationPriorityUrgent
}
