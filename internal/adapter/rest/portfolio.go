package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/simaogato/etfguard-backend/internal/usecase/portfolio"
)

// PortfolioHandlers contains HTTP handlers for position management and valuation
type PortfolioHandlers struct {
	service *portfolio.PortfolioService
	log     zerolog.Logger
}

// NewPortfolioHandlers creates a new portfolio handlers instance
func NewPortfolioHandlers(service *portfolio.PortfolioService, log zerolog.Logger) *PortfolioHandlers {
	return &PortfolioHandlers{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// Prices accept JSON numbers or strings
type addPositionRequest struct {
	UserID       string          `json:"userId"`
	Symbol       string          `json:"symbol"`
	Quantity     int             `json:"quantity"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
}

type updatePositionRequest struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type reducePositionRequest struct {
	Quantity int `json:"quantity"`
}

type positionResponse struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Quantity     int       `json:"quantity"`
	AveragePrice string    `json:"averagePrice"`
	CostBasis    string    `json:"costBasis"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toPositionResponse(p *domain.Position) positionResponse {
	return positionResponse{
		ID:           p.ID.String(),
		Symbol:       p.Symbol,
		Quantity:     p.Quantity(),
		AveragePrice: p.AveragePrice().StringFixed(),
		CostBasis:    p.CostBasis().StringFixed(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type positionValuationResponse struct {
	Symbol         string `json:"symbol"`
	Quantity       int    `json:"quantity"`
	AveragePrice   string `json:"averagePrice"`
	CurrentPrice   string `json:"currentPrice"`
	Value          string `json:"value"`
	CostBasis      string `json:"costBasis"`
	ProfitLossRate string `json:"profitLossRate"`
	Weight         string `json:"weight"`
}

type valuationResponse struct {
	UserID     string                      `json:"userId"`
	TotalValue string                      `json:"totalValue"`
	CostBasis  string                      `json:"costBasis"`
	Display    string                      `json:"display"`
	PricedAt   time.Time                   `json:"pricedAt"`
	Positions  []positionValuationResponse `json:"positions"`
}

func parseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: user id %q", domain.ErrMalformedValue, raw)
	}
	return id, nil
}

// HandleAddPosition opens a position
// POST /api/portfolios/positions
func (h *PortfolioHandlers) HandleAddPosition(w http.ResponseWriter, r *http.Request) {
	var req addPositionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}
	userID, err := parseUserID(req.UserID)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	position, err := h.service.AddPosition(r.Context(), userID, req.Symbol, req.Quantity, domain.NewMoney(req.AveragePrice))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeOK(w, http.StatusCreated, "position added", toPositionResponse(position))
}

// HandleAddToPosition buys more of a held instrument
// PUT /api/portfolios/users/{userId}/positions/{symbol}/add
func (h *PortfolioHandlers) HandleAddToPosition(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	var req updatePositionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}

	position, err := h.service.AddToPosition(r.Context(), userID, chi.URLParam(r, "symbol"), req.Quantity, domain.NewMoney(req.Price))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeOK(w, http.StatusOK, "position increased", toPositionResponse(position))
}

// HandleReducePosition sells part of a position; selling everything closes it
// PUT /api/portfolios/users/{userId}/positions/{symbol}/reduce
func (h *PortfolioHandlers) HandleReducePosition(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	var req reducePositionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}

	position, err := h.service.ReducePosition(r.Context(), userID, chi.URLParam(r, "symbol"), req.Quantity)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if position == nil {
		writeOK(w, http.StatusOK, "position closed", nil)
		return
	}
	writeOK(w, http.StatusOK, "position reduced", toPositionResponse(position))
}

// HandleRemovePosition drops a position
// DELETE /api/portfolios/users/{userId}/positions/{symbol}
func (h *PortfolioHandlers) HandleRemovePosition(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if err := h.service.RemovePosition(r.Context(), userID, chi.URLParam(r, "symbol")); err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeOK(w, http.StatusOK, "position removed", nil)
}

// HandleListPositions returns every position of a user
// GET /api/portfolios/users/{userId}/positions
func (h *PortfolioHandlers) HandleListPositions(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	positions, err := h.service.ListPositions(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	out := make([]positionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, toPositionResponse(p))
	}
	writeOK(w, http.StatusOK, "", out)
}

// HandleGetPosition returns one position
// GET /api/portfolios/users/{userId}/positions/{symbol}
func (h *PortfolioHandlers) HandleGetPosition(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	position, err := h.service.GetPosition(r.Context(), userID, chi.URLParam(r, "symbol"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeOK(w, http.StatusOK, "", toPositionResponse(position))
}

// HandleValuation prices the portfolio at the latest stored quotes
// GET /api/portfolios/users/{userId}/valuation
func (h *PortfolioHandlers) HandleValuation(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	result, err := h.service.Valuation(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	resp := valuationResponse{
		UserID:     result.UserID.String(),
		TotalValue: result.TotalValue.StringFixed(),
		CostBasis:  result.CostBasis.StringFixed(),
		Display:    result.TotalValue.String(),
		PricedAt:   result.PricedAt,
		Positions:  make([]positionValuationResponse, 0, len(result.Positions)),
	}
	for _, p := range result.Positions {
		resp.Positions = append(resp.Positions, positionValuationResponse{
			Symbol:         p.Symbol,
			Quantity:       p.Quantity,
			AveragePrice:   p.AveragePrice.StringFixed(),
			CurrentPrice:   p.CurrentPrice.StringFixed(),
			Value:          p.Value.StringFixed(),
			CostBasis:      p.CostBasis.StringFixed(),
			ProfitLossRate: p.ProfitLossRate.StringFixed(2),
			Weight:         p.Weight.StringFixed(2),
		})
	}

	writeOK(w, http.StatusOK, "", resp)
}
