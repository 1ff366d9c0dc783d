package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// 日誌紀錄種類
const (
	kindAccount             = "account"
	kindOperationType       = "operation_type"
	kindOperationTypeDelete = "operation_type_delete"
	kindTransaction         = "transaction"
)

// walRecord 寫入 WAL 的一筆異動
type walRecord struct {
	Kind          string               `json:"kind"`
	Account       *accountRecord       `json:"account,omitempty"`
	OperationType *operationTypeRecord `json:"operation_type,omitempty"`
	Transaction   *transactionRecord   `json:"transaction,omitempty"`
	DeletedID     int64                `json:"deleted_id,omitempty"`
}

type accountRecord struct {
	ID             int64     `json:"id"`
	DocumentNumber string    `json:"document_number"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Active         bool      `json:"active"`
}

func newAccountRecord(a *domain.Account) *accountRecord {
	return &accountRecord{
		ID:             a.ID,
		DocumentNumber: a.DocumentNumber,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Active:         a.Active,
	}
}

func (r *accountRecord) toDomain() *domain.Account {
	return &domain.Account{
		ID:             r.ID,
		DocumentNumber: r.DocumentNumber,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Active:         r.Active,
	}
}

type operationTypeRecord struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Handler     string `json:"handler"`
	Direction   string `json:"direction"`
}

func newOperationTypeRecord(op domain.OperationType) *operationTypeRecord {
	return &operationTypeRecord{
		ID:          op.ID,
		Description: op.Description,
		Handler:     string(op.Handler),
		Direction:   string(op.Direction),
	}
}

func (r *operationTypeRecord) toDomain() domain.OperationType {
	return domain.OperationType{
		ID:          r.ID,
		Description: r.Description,
		Handler:     domain.HandlerName(r.Handler),
		Direction:   domain.Direction(r.Direction),
	}
}

type transactionRecord struct {
	ID            int64                `json:"id"`
	AccountID     int64                `json:"account_id"`
	OperationType *operationTypeRecord `json:"operation_type"`
	Amount        decimal.Decimal      `json:"amount"`
	EventDate     time.Time            `json:"event_date"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Active        bool                 `json:"active"`
}

func newTransactionRecord(t *domain.Transaction) *transactionRecord {
	return &transactionRecord{
		ID:            t.ID,
		AccountID:     t.Account.ID(),
		OperationType: newOperationTypeRecord(t.OperationType),
		Amount:        t.Amount,
		EventDate:     t.EventDate,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Active:        t.Active,
	}
}

func (r *transactionRecord) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:            r.ID,
		Account:       domain.NewAccountRef(r.AccountID),
		OperationType: r.OperationType.toDomain(),
		Amount:        r.Amount,
		EventDate:     r.EventDate,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Active:        r.Active,
	}
}
