package gormdb

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID             int64     `gorm:"column:account_id;primaryKey;autoIncrement"`
	DocumentNumber string    `gorm:"column:document_number;size:64;uniqueIndex;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
	IsActive       bool      `gorm:"column:is_active;not null"`
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

func (a *sqlAccount) toDomain() *domain.Account {
	return &domain.Account{
		ID:             a.ID,
		DocumentNumber: a.DocumentNumber,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Active:         a.IsActive,
	}
}

// sqlOperationType 對應資料庫的 operation_types 表
type sqlOperationType struct {
	ID              int64     `gorm:"column:operation_id;primaryKey;autoIncrement"`
	Description     string    `gorm:"column:description;size:255"`
	TransactionType string    `gorm:"column:transaction_type;size:16;not null"`
	Handler         string    `gorm:"column:handler;size:64;not null"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
	IsActive        bool      `gorm:"column:is_active;not null"`
}

func (*sqlOperationType) TableName() string {
	return "operation_types"
}

func newSQLOperationType(op domain.OperationType) *sqlOperationType {
	return &sqlOperationType{
		ID:              op.ID,
		Description:     op.Description,
		TransactionType: string(op.Direction),
		Handler:         string(op.Handler),
		IsActive:        true,
	}
}

func (o *sqlOperationType) toDomain() domain.OperationType {
	return domain.OperationType{
		ID:          o.ID,
		Description: o.Description,
		Handler:     domain.HandlerName(o.Handler),
		Direction:   domain.Direction(o.TransactionType),
	}
}

// sqlTransaction 對應資料庫的 transactions 表
type sqlTransaction struct {
	ID              int64            `gorm:"column:transaction_id;primaryKey;autoIncrement"`
	AccountID       int64            `gorm:"column:account_id;index;not null"`
	OperationTypeID int64            `gorm:"column:operation_type_id;not null"`
	OperationType   sqlOperationType `gorm:"foreignKey:OperationTypeID;references:ID"`
	Amount          decimal.Decimal  `gorm:"column:amount;type:decimal(19,2);not null"`
	EventDate       time.Time        `gorm:"column:event_date;not null"`
	CreatedAt       time.Time        `gorm:"column:created_at"`
	UpdatedAt       time.Time        `gorm:"column:updated_at"`
	IsActive        bool             `gorm:"column:is_active;not null"`
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

func newSQLTransaction(tran *domain.Transaction) *sqlTransaction {
	return &sqlTransaction{
		ID:              tran.ID,
		AccountID:       tran.Account.ID(),
		OperationTypeID: tran.OperationType.ID,
		Amount:          tran.Amount,
		EventDate:       tran.EventDate,
		IsActive:        tran.Active,
	}
}

// toDomain 轉成 domain.Transaction，op 為交易類型 (儲存時沿用呼叫端傳入的值)
func (t *sqlTransaction) toDomain(op domain.OperationType) *domain.Transaction {
	return &domain.Transaction{
		ID:            t.ID,
		Account:       domain.NewAccountRef(t.AccountID),
		OperationType: op,
		Amount:        t.Amount,
		EventDate:     t.EventDate,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Active:        t.IsActive,
	}
}

// Models 所有需要 AutoMigrate 的資料表
func Models() []any {
	return []any{&sqlAccount{}, &sqlOperationType{}, &sqlTransaction{}}
}
