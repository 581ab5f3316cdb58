package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/simaogato/etfguard-backend/internal/usecase/user"
)

// UserHandlers contains HTTP handlers for user registration
type UserHandlers struct {
	service *user.UserService
	log     zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(service *user.UserService, log zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		service: service,
		log:     log.With().Str("handler", "users").Logger(),
	}
}

type registerUserRequest struct {
	ChatID   int64  `json:"chatId"`
	Username string `json:"username"`
}

type userResponse struct {
	ID            string    `json:"id"`
	ChatID        string    `json:"chatId"`
	Username      string    `json:"username"`
	PositionCount int       `json:"positionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:            u.ID.String(),
		ChatID:        u.TelegramChatID.String(),
		Username:      u.TelegramUsername,
		PositionCount: u.Portfolio.Len(),
		CreatedAt:     u.CreatedAt,
	}
}

// HandleRegister registers a Telegram chat
// POST /api/users/register
func (h *UserHandlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}

	u, err := h.service.Register(r.Context(), domain.TelegramChatID(req.ChatID), req.Username)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeOK(w, http.StatusCreated, "user registered", toUserResponse(u))
}

// HandleGetByChatID returns the user registered for a chat
// GET /api/users/chat/{chatId}
func (h *UserHandlers) HandleGetByChatID(w http.ResponseWriter, r *http.Request) {
	chatID, err := domain.ParseTelegramChatID(chi.URLParam(r, "chatId"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	u, err := h.service.FindByChatID(r.Context(), chatID)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeOK(w, http.StatusOK, "", toUserResponse(u))
}

// HandleIsRegistered reports whether a chat is registered
// GET /api/users/chat/{chatId}/exists
func (h *UserHandlers) HandleIsRegistered(w http.ResponseWriter, r *http.Request) {
	chatID, err := domain.ParseTelegramChatID(chi.URLParam(r, "chatId"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	exists, err := h.service.IsRegistered(r.Context(), chatID)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: exists})
}
