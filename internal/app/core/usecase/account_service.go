package usecase

import (
	"context"
	"log/slog"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// AccountService 帳戶建立與查詢
type AccountService struct {
	store  AccountStore
	logger *slog.Logger
}

// NewAccountService 建立 AccountService
func NewAccountService(store AccountStore, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

// CreateAccount 以證件號碼建立帳戶
//
// 回傳:
//
//	*domain.Account: 建立後的帳戶
//	error: domain.ErrInvalidDocumentNumber / domain.ErrAccountAlreadyExists 或 store 錯誤
func (s *AccountService) CreateAccount(ctx context.Context, documentNumber string) (*domain.Account, error) {
	account, err := domain.NewAccount(documentNumber)
	if err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, account)
	if err != nil {
		s.logger.Error("Error creating account", "document_number", account.DocumentNumber, "error", err)
		return nil, err
	}
	s.logger.Info("Account created successfully", "account", created.ID)
	return created, nil
}

// GetAccount 查詢啟用中的帳戶
func (s *AccountService) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return s.store.FindActiveByID(ctx, id)
}
