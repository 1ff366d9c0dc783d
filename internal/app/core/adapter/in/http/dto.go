package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// CreateAccountRequest POST /accounts
type CreateAccountRequest struct {
	DocumentNumber string `json:"document_number" validate:"required,max=64"`
}

// PerformTransactionRequest POST /transactions
//
// amount 接受 JSON 字串或數字，未提供或 null 時交給核心回傳 InvalidAmount
type PerformTransactionRequest struct {
	AccountID       int64               `json:"account_id"`
	OperationTypeID *int64              `json:"operation_type_id" validate:"required"`
	Amount          decimal.NullDecimal `json:"amount"`
}

// OperationTypeRequest PUT /operation-types
type OperationTypeRequest struct {
	ID          int64  `json:"operation_type_id" validate:"gte=0"`
	Description string `json:"description" validate:"required,max=255"`
	Handler     string `json:"handler" validate:"required"`
	Direction   string `json:"direction" validate:"required"`
}

type AccountResponse struct {
	AccountID      int64  `json:"account_id"`
	DocumentNumber string `json:"document_number"`
}

type TransactionResponse struct {
	TransactionID   int64     `json:"transaction_id"`
	AccountID       int64     `json:"account_id"`
	OperationTypeID int64     `json:"operation_type_id"`
	Amount          string    `json:"amount"`
	EventDate       time.Time `json:"event_date"`
}

type OperationTypeResponse struct {
	ID          int64  `json:"operation_type_id"`
	Description string `json:"description"`
	Handler     string `json:"handler"`
	Direction   string `json:"direction"`
}

// ErrorResponse 錯誤回應格式
type ErrorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      a.ID,
		DocumentNumber: a.DocumentNumber,
	}
}

func newTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.ID,
		AccountID:       t.Account.ID(),
		OperationTypeID: t.OperationType.ID,
		Amount:          t.Amount.StringFixed(2),
		EventDate:       t.EventDate,
	}
}

func newOperationTypeResponses(ops []domain.OperationType) []OperationTypeResponse {
	out := make([]OperationTypeResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, OperationTypeResponse{
			ID:          op.ID,
			Description: op.Description,
			Handler:     string(op.Handler),
			Direction:   string(op.Direction),
		})
	}
	return out
}

// toDomain 轉成 domain.OperationType，handler 必須在支援集合中
func (r OperationTypeRequest) toDomain() (domain.OperationType, error) {
	handler := domain.NormalizeHandlerName(r.Handler)
	if !handler.IsSupported() {
		return domain.OperationType{}, &requestError{msg: "unsupported handler: " + string(handler) + ". Supported types: " + domain.SupportedHandlerNames()}
	}
	direction, err := domain.ParseDirection(r.Direction)
	if err != nil {
		return domain.OperationType{}, &requestError{msg: err.Error()}
	}
	return domain.OperationType{
		ID:          r.ID,
		Description: r.Description,
		Handler:     handler,
		Direction:   direction,
	}, nil
}
