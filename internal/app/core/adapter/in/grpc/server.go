package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
)

// ServiceName gRPC 服務名稱
const ServiceName = "ledger.v1.TransactionService"

// 訊息欄位 (與 REST API 相同的 snake_case)
const (
	FieldAccountID       = "account_id"
	FieldOperationTypeID = "operation_type_id"
	FieldAmount          = "amount"
	FieldTransactionID   = "transaction_id"
	FieldEventDate       = "event_date"
	FieldDocumentNumber  = "document_number"
)

// RequestIDKey metadata 中的請求追蹤 ID
const RequestIDKey = "x-request-id"

// TransactionServiceServer 服務介面，請求與回應都是 google.protobuf.Struct
type TransactionServiceServer interface {
	PerformTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type GrpcServer struct {
	core *usecase.CoreUseCase
}

func NewGrpcServer(core *usecase.CoreUseCase) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

// Register 將服務註冊到 grpc.Server
func Register(s grpc.ServiceRegistrar, srv TransactionServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// PerformTransaction 處理交易
//
// 請求: {account_id, operation_type_id, amount (字串)}
// 回應: {transaction_id, account_id, operation_type_id, amount, event_date}
func (s *GrpcServer) PerformTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// 1. 解析欄位
	accountID, err := intField(req, FieldAccountID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	operationTypeID, err := intField(req, FieldOperationTypeID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	amount, err := amountField(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	// 2. 執行交易
	tran, err := s.core.PerformTransaction(ctx, accountID, operationTypeID, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return transactionResponse(tran)
}

// GetTransaction 查詢交易 {transaction_id}
func (s *GrpcServer) GetTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := intField(req, FieldTransactionID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	tran, err := s.core.GetTransaction(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return transactionResponse(tran)
}

// CreateAccount 建立帳戶 {document_number}
func (s *GrpcServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	account, err := s.core.CreateAccount(ctx, req.GetFields()[FieldDocumentNumber].GetStringValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return accountResponse(account)
}

// GetAccount 查詢帳戶 {account_id}
func (s *GrpcServer) GetAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := intField(req, FieldAccountID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	account, err := s.core.GetAccount(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return accountResponse(account)
}

// intField 讀取整數欄位 (Struct 的數字是 float64)
func intField(req *structpb.Struct, name string) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if n.NumberValue != float64(int64(n.NumberValue)) {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return int64(n.NumberValue), nil
}

// amountField 讀取金額，接受字串 (建議，避免精度問題) 或數字；未提供時 Valid=false
func amountField(req *structpb.Struct) (decimal.NullDecimal, error) {
	v, ok := req.GetFields()[FieldAmount]
	if !ok {
		return decimal.NullDecimal{}, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return decimal.NullDecimal{}, nil
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(kind.StringValue)
		if err != nil {
			return decimal.NullDecimal{}, fmt.Errorf("amount is not a decimal: %w", err)
		}
		return decimal.NewNullDecimal(d), nil
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return decimal.NullDecimal{}, errors.New("amount must be a finite number")
		}
		return decimal.NewNullDecimal(decimal.NewFromFloat(kind.NumberValue)), nil
	}
	return decimal.NullDecimal{}, errors.New("amount must be a string or number")
}

func transactionResponse(tran *domain.Transaction) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		FieldTransactionID:   tran.ID,
		FieldAccountID:       tran.Account.ID(),
		FieldOperationTypeID: tran.OperationType.ID,
		FieldAmount:          tran.Amount.StringFixed(2),
		FieldEventDate:       tran.EventDate.Format(time.RFC3339Nano),
	})
}

func accountResponse(account *domain.Account) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		FieldAccountID:      account.ID,
		FieldDocumentNumber: account.DocumentNumber,
	})
}

// toStatus 將 domain 錯誤轉成 gRPC status
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAccount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidOperationType),
		errors.Is(err, domain.ErrInvalidDocumentNumber),
		errors.Is(err, domain.ErrInvalidTransaction):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrOperationTypeNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAccountAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// LoggingInterceptor 記錄每次呼叫的方法、耗時與狀態碼，並附上 request_id
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDKey); len(ids) > 0 {
				requestID = ids[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("grpc call",
			"request_id", requestID,
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// RecoveryInterceptor 攔截 handler 中的 panic，回傳 Internal 而不讓整個行程結束
func RecoveryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("grpc handler panic",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

var _ TransactionServiceServer = (*GrpcServer)(nil)
