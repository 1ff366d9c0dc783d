package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-txn-ledger/pkg/database"
)

// AccountStore 帳戶 (accounts 表)
type AccountStore struct {
	client *database.Client
}

func NewAccountStore(client *database.Client) *AccountStore {
	return &AccountStore{
		client: client,
	}
}

// Create 建立帳戶，document_number 唯一
func (s *AccountStore) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	row := &sqlAccount{
		DocumentNumber: account.DocumentNumber,
		IsActive:       account.Active,
	}
	if err := s.client.DB().WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrAccountAlreadyExists
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// FindActiveByID 查詢啟用中的帳戶
func (s *AccountStore) FindActiveByID(ctx context.Context, id int64) (*domain.Account, error) {
	var row sqlAccount
	err := s.client.DB().WithContext(ctx).Where("account_id = ? AND is_active = ?", id, true).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

var _ usecase.AccountStore = (*AccountStore)(nil)
