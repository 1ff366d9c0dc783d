package usecase

import (
	"context"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks -source=ports.go

// CatalogStore 交易類型目錄的持久化介面
type CatalogStore interface {
	// LoadAllActive 載入所有啟用中的交易類型
	LoadAllActive(ctx context.Context) ([]domain.OperationType, error)
	// FindByID 查詢交易類型，不存在時回傳 domain.ErrOperationTypeNotFound
	FindByID(ctx context.Context, id int64) (*domain.OperationType, error)
	// Save 新增或更新交易類型，回傳儲存後的值 (含分配的 ID)
	Save(ctx context.Context, op domain.OperationType) (*domain.OperationType, error)
	// DeleteByID 刪除交易類型，不存在時回傳 domain.ErrOperationTypeNotFound
	DeleteByID(ctx context.Context, id int64) error
}

// TransactionStore 交易紀錄的持久化介面
type TransactionStore interface {
	// Save 儲存交易，分配 ID 與儲存時間
	Save(ctx context.Context, tran *domain.Transaction) (*domain.Transaction, error)
	// FindByID 查詢交易，不存在時回傳 domain.ErrTransactionNotFound
	FindByID(ctx context.Context, id int64) (*domain.Transaction, error)
}

// AccountStore 帳戶的持久化介面
type AccountStore interface {
	// Create 建立帳戶，證件號碼重複時回傳 domain.ErrAccountAlreadyExists
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// FindActiveByID 查詢啟用中的帳戶，不存在時回傳 domain.ErrAccountNotFound
	FindActiveByID(ctx context.Context, id int64) (*domain.Account, error)
}

// OperationTypeReader 策略執行時讀取交易類型目錄的介面 (由 OperationTypeCache 實作)
type OperationTypeReader interface {
	GetAll(ctx context.Context) (map[domain.HandlerName]domain.OperationType, error)
}
