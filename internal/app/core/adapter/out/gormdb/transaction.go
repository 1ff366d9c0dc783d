package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-txn-ledger/pkg/database"
)

// TransactionStore 交易紀錄 (transactions 表)
type TransactionStore struct {
	client *database.Client
}

func NewTransactionStore(client *database.Client) *TransactionStore {
	return &TransactionStore{
		client: client,
	}
}

// Save 建立交易紀錄，ID 與 created_at/updated_at 由資料庫層分配
func (s *TransactionStore) Save(ctx context.Context, tran *domain.Transaction) (*domain.Transaction, error) {
	if tran == nil {
		return nil, domain.ErrInvalidTransaction
	}
	row := newSQLTransaction(tran)
	// 交易類型已存在於目錄，不隨交易一起寫入
	if err := s.client.DB().WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, err
	}
	return row.toDomain(tran.OperationType), nil
}

// FindByID 查詢交易紀錄 (含交易類型)
func (s *TransactionStore) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	var row sqlTransaction
	err := s.client.DB().WithContext(ctx).
		Preload("OperationType").
		Where("transaction_id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return row.toDomain(row.OperationType.toDomain()), nil
}

var _ usecase.TransactionStore = (*TransactionStore)(nil)
