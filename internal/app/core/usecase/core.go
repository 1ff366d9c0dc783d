package usecase

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// CoreUseCase 是核心業務邏輯層，提供給 driving adapter (gRPC / HTTP) 使用
type CoreUseCase struct {
	transactions *TransactionService
	accounts     *AccountService
	catalog      *OperationTypeCache
}

func NewCoreUseCase(transactions *TransactionService, accounts *AccountService, catalog *OperationTypeCache) *CoreUseCase {
	return &CoreUseCase{
		transactions: transactions,
		accounts:     accounts,
		catalog:      catalog,
	}
}

// PerformTransaction 處理交易
func (c *CoreUseCase) PerformTransaction(ctx context.Context, accountID, operationTypeID int64, amount decimal.NullDecimal) (*domain.Transaction, error) {
	return c.transactions.PerformTransaction(ctx, accountID, operationTypeID, amount)
}

// GetTransaction 查詢交易
func (c *CoreUseCase) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	return c.transactions.GetTransaction(ctx, id)
}

// CreateAccount 建立帳戶
func (c *CoreUseCase) CreateAccount(ctx context.Context, documentNumber string) (*domain.Account, error) {
	return c.accounts.CreateAccount(ctx, documentNumber)
}

// GetAccount 查詢帳戶
func (c *CoreUseCase) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return c.accounts.GetAccount(ctx, id)
}

// ListOperationTypes 取得交易類型目錄 (依 ID 排序)
func (c *CoreUseCase) ListOperationTypes(ctx context.Context) ([]domain.OperationType, error) {
	return sorted(c.catalog.GetAll(ctx))
}

// UpsertOperationType 新增或更新交易類型，回傳更新後的目錄
func (c *CoreUseCase) UpsertOperationType(ctx context.Context, op domain.OperationType) ([]domain.OperationType, error) {
	return sorted(c.catalog.Upsert(ctx, op))
}

// DeleteOperationType 刪除交易類型，回傳更新後的目錄
func (c *CoreUseCase) DeleteOperationType(ctx context.Context, id int64) ([]domain.OperationType, error) {
	return sorted(c.catalog.Delete(ctx, id))
}

// SeedOperationTypes 目錄為空時寫入預設交易類型
//
// 回傳:
//
//	int: 寫入的筆數 (目錄非空時為 0)
//	error: 初始化或 store 錯誤
func (c *CoreUseCase) SeedOperationTypes(ctx context.Context, defaults []domain.OperationType) (int, error) {
	current, err := c.catalog.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(current) > 0 {
		return 0, nil
	}
	for _, op := range defaults {
		if _, err := c.catalog.Upsert(ctx, op); err != nil {
			return 0, err
		}
	}
	return len(defaults), nil
}

func sorted(ops map[domain.HandlerName]domain.OperationType, err error) ([]domain.OperationType, error) {
	if err != nil {
		return nil, err
	}
	out := make([]domain.OperationType, 0, len(ops))
	for _, op := range ops {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
