package grpc

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/simaogato/etfguard-backend/internal/usecase/dividendalert"
	"github.com/simaogato/etfguard-backend/internal/usecase/marketsync"
	"github.com/simaogato/etfguard-backend/internal/usecase/portfolio"
	"github.com/simaogato/etfguard-backend/internal/usecase/risk"
	"github.com/simaogato/etfguard-backend/internal/usecase/user"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "etfguard.v1.RiskGuardService"

// Server implements the RiskGuardService gRPC server. Requests and responses are
// google.protobuf.Struct messages.
type Server struct {
	UserService      *user.UserService
	PortfolioService *portfolio.PortfolioService
	RiskService      *risk.RiskService
	MarketSync       *marketsync.MarketSyncService
	DividendJob      *dividendalert.DividendJob
}

// NewServer creates a new gRPC server instance
func NewServer(
	userService *user.UserService,
	portfolioService *portfolio.PortfolioService,
	riskService *risk.RiskService,
	marketSync *marketsync.MarketSyncService,
	dividendJob *dividendalert.DividendJob,
) *Server {
	return &Server{
		UserService:      userService,
		PortfolioService: portfolioService,
		RiskService:      riskService,
		MarketSync:       marketSync,
		DividendJob:      dividendJob,
	}
}

// Register attaches the service to a gRPC server
func Register(registrar grpc.ServiceRegistrar, srv *Server) {
	registrar.RegisterService(&serviceDesc, srv)
}

type rpc func(s *Server, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

var rpcs = map[string]rpc{
	"RegisterUser":         (*Server).RegisterUser,
	"AddPosition":          (*Server).AddPosition,
	"ReducePosition":       (*Server).ReducePosition,
	"ListPositions":        (*Server).ListPositions,
	"GetValuation":         (*Server).GetValuation,
	"AnalyzeInstrument":    (*Server).AnalyzeInstrument,
	"AnalyzePortfolio":     (*Server).AnalyzePortfolio,
	"SyncMarketData":       (*Server).SyncMarketData,
	"TriggerDividendAlert": (*Server).TriggerDividendAlert,
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods:     methodDescs(),
	Streams:     []grpc.StreamDesc{},
	Metadata:    "etfguard/v1/risk_guard.proto",
}

func methodDescs() []grpc.MethodDesc {
	names := []string{
		"RegisterUser", "AddPosition", "ReducePosition", "ListPositions", "GetValuation",
		"AnalyzeInstrument", "AnalyzePortfolio", "SyncMarketData", "TriggerDividendAlert",
	}
	descs := make([]grpc.MethodDesc, 0, len(names))
	for _, name := range names {
		descs = append(descs, grpc.MethodDesc{MethodName: name, Handler: unaryHandler(name, rpcs[name])})
	}
	return descs
}

func unaryHandler(name string, call rpc) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(*Server)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegisterUser handles the RegisterUser RPC: {chat_id, username}
func (s *Server) RegisterUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chatID, err := intField(req, "chat_id")
	if err != nil {
		return nil, err
	}

	u, err := s.UserService.Register(ctx, domain.TelegramChatID(chatID), stringValue(req, "username"))
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{
		"user_id":    u.ID.String(),
		"chat_id":    u.TelegramChatID.String(),
		"username":   u.TelegramUsername,
		"created_at": u.CreatedAt.Format(time.RFC3339),
	})
}

// AddPosition handles the AddPosition RPC: {user_id, symbol, quantity, average_price}
func (s *Server) AddPosition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := uuidField(req, "user_id")
	if err != nil {
		return nil, err
	}
	symbol, err := stringField(req, "symbol")
	if err != nil {
		return nil, err
	}
	quantity, err := intField(req, "quantity")
	if err != nil {
		return nil, err
	}
	price, err := moneyField(req, "average_price")
	if err != nil {
		return nil, err
	}

	position, err := s.PortfolioService.AddPosition(ctx, userID, symbol, int(quantity), price)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"position": positionValue(position)})
}

// ReducePosition handles the ReducePosition RPC: {user_id, symbol, quantity}.
// The response has no position when it was closed.
func (s *Server) ReducePosition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := uuidField(req, "user_id")
	if err != nil {
		return nil, err
	}
	symbol, err := stringField(req, "symbol")
	if err != nil {
		return nil, err
	}
	quantity, err := intField(req, "quantity")
	if err != nil {
		return nil, err
	}

	position, err := s.PortfolioService.ReducePosition(ctx, userID, symbol, int(quantity))
	if err != nil {
		return nil, mapError(err)
	}

	if position == nil {
		return toStruct(map[string]any{"closed": true})
	}
	return toStruct(map[string]any{"closed": false, "position": positionValue(position)})
}

// ListPositions handles the ListPositions RPC: {user_id}
func (s *Server) ListPositions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := uuidField(req, "user_id")
	if err != nil {
		return nil, err
	}

	positions, err := s.PortfolioService.ListPositions(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	list := make([]any, 0, len(positions))
	for _, p := range positions {
		list = append(list, positionValue(p))
	}
	return toStruct(map[string]any{"positions": list})
}

// GetValuation handles the GetValuation RPC: {user_id}
func (s *Server) GetValuation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := uuidField(req, "user_id")
	if err != nil {
		return nil, err
	}

	result, err := s.PortfolioService.Valuation(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	positions := make([]any, 0, len(result.Positions))
	for _, p := range result.Positions {
		positions = append(positions, map[string]any{
			"symbol":           p.Symbol,
			"quantity":         p.Quantity,
			"average_price":    p.AveragePrice.StringFixed(),
			"current_price":    p.CurrentPrice.StringFixed(),
			"value":            p.Value.StringFixed(),
			"profit_loss_rate": p.ProfitLossRate.StringFixed(2),
			"weight":           p.Weight.StringFixed(2),
		})
	}

	return toStruct(map[string]any{
		"user_id":     result.UserID.String(),
		"total_value": result.TotalValue.StringFixed(),
		"cost_basis":  result.CostBasis.StringFixed(),
		"display":     result.TotalValue.String(),
		"priced_at":   result.PricedAt.Format(time.RFC3339),
		"positions":   positions,
	})
}

// AnalyzeInstrument handles the AnalyzeInstrument RPC: {symbol}
func (s *Server) AnalyzeInstrument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	symbol, err := stringField(req, "symbol")
	if err != nil {
		return nil, err
	}

	metrics, err := s.RiskService.AnalyzeInstrument(ctx, symbol)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(metricsValue(metrics))
}

// AnalyzePortfolio handles the AnalyzePortfolio RPC: {user_id}
func (s *Server) AnalyzePortfolio(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := uuidField(req, "user_id")
	if err != nil {
		return nil, err
	}

	metrics, err := s.RiskService.AnalyzePortfolio(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return toStruct(metricsValue(metrics))
}

// SyncMarketData handles the SyncMarketData RPC. Instruments that fail are reported in
// the response rather than failing the call.
func (s *Server) SyncMarketData(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	synced, err := s.MarketSync.SyncAll(ctx)

	out := map[string]any{"synced": synced}
	if err != nil {
		out["error"] = err.Error()
	}
	return toStruct(out)
}

// TriggerDividendAlert handles the TriggerDividendAlert RPC: {symbol?}. Without a symbol
// every supported instrument is triggered.
func (s *Server) TriggerDividendAlert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		notified int
		err      error
	)
	if symbol := stringValue(req, "symbol"); symbol != "" {
		notified, err = s.DividendJob.TriggerSymbol(ctx, symbol)
	} else {
		notified, err = s.DividendJob.TriggerAll(ctx)
	}
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]any{"notified": notified})
}

func positionValue(p *domain.Position) map[string]any {
	return map[string]any{
		"id":            p.ID.String(),
		"symbol":        p.Symbol,
		"quantity":      p.Quantity(),
		"average_price": p.AveragePrice().StringFixed(),
		"created_at":    p.CreatedAt.Format(time.RFC3339),
		"updated_at":    p.UpdatedAt.Format(time.RFC3339),
	}
}

func metricsValue(m domain.RiskMetrics) map[string]any {
	factors := make([]any, 0, len(m.Factors()))
	for _, f := range m.Factors() {
		factors = append(factors, map[string]any{
			"category": f.Category,
			"level":    f.Level.String(),
			"message":  f.Message,
		})
	}
	return map[string]any{
		"subject":         m.Subject(),
		"overall_level":   m.OverallRiskLevel().String(),
		"requires_action": m.RequiresAction(),
		"factors":         factors,
	}
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

func stringValue(req *structpb.Struct, key string) string {
	v, ok := req.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func stringField(req *structpb.Struct, key string) (string, error) {
	v := stringValue(req, key)
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return v, nil
}

func uuidField(req *structpb.Struct, key string) (uuid.UUID, error) {
	v, err := stringField(req, key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", key, err)
	}
	return id, nil
}

// intField accepts a whole JSON number or its string form. Numbers beyond 2^53 lose
// precision as doubles and must be sent as strings.
func intField(req *structpb.Struct, key string) (int64, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", key)
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number, got %v", key, n)
		}
		return int64(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(kind.StringValue), 10, 64)
		if err != nil {
			return 0, status.Errorf(codes.InvalidArgument, "invalid %s format: %q", key, kind.StringValue)
		}
		return n, nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", key)
	}
}

// moneyField reads amounts as strings so no precision is lost in float transit
func moneyField(req *structpb.Struct, key string) (domain.Money, error) {
	v, err := stringField(req, key)
	if err != nil {
		return domain.Money{}, err
	}
	m, err := domain.MoneyFromString(v)
	if err != nil {
		return domain.Money{}, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", key, err)
	}
	return m, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrPositionNotFound),
		errors.Is(err, domain.ErrInstrumentNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrUserAlreadyRegistered),
		errors.Is(err, domain.ErrDuplicatePosition):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrMissingPrice),
		errors.Is(err, domain.ErrNotificationUnavailable),
		errors.Is(err, domain.ErrEmptyPortfolio):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInsufficientQuantity),
		errors.Is(err, domain.ErrMalformedValue),
		errors.Is(err, domain.ErrUnsupportedInstrument),
		errors.Is(err, domain.ErrDivisionByZero):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}

	// Default to Internal error for unknown errors
	return status.Error(codes.Internal, err.Error())
}
