package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// TransactionService 交易請求的入口
type TransactionService struct {
	catalog    OperationTypeReader
	dispatcher *Dispatcher
	store      TransactionStore
	logger     *slog.Logger
}

// NewTransactionService 建立 TransactionService
func NewTransactionService(catalog OperationTypeReader, dispatcher *Dispatcher, store TransactionStore, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		catalog:    catalog,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
	}
}

// PerformTransaction 處理一筆交易
//
// 流程: 以 ID 查交易類型 -> 依 handler 名稱取得策略 -> 策略 Validate/Execute。
// 任一步驟失敗即中止並原樣回傳錯誤，不重試。
//
// 參數:
//
//	ctx: 上下文
//	accountID: 帳戶 ID
//	operationTypeID: 交易類型 ID
//	amount: 金額大小 (正數)，Valid=false 表示未提供
//
// 回傳:
//
//	*domain.Transaction: 儲存後的交易
//	error: domain.ErrInvalidAccount / ErrInvalidAmount / ErrInvalidOperationType 或 store 錯誤
func (s *TransactionService) PerformTransaction(ctx context.Context, accountID, operationTypeID int64, amount decimal.NullDecimal) (*domain.Transaction, error) {
	tran, err := s.performTransaction(ctx, accountID, operationTypeID, amount)
	if err != nil {
		s.logger.Error("Transaction failed", "account", accountID, "operation_type_id", operationTypeID, "error", err)
		return nil, err
	}
	s.logger.Info("Transaction completed successfully", "account", accountID, "transaction_id", tran.ID, "amount", tran.Amount.String())
	return tran, nil
}

func (s *TransactionService) performTransaction(ctx context.Context, accountID, operationTypeID int64, amount decimal.NullDecimal) (*domain.Transaction, error) {
	ops, err := s.catalog.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	op, ok := indexByID(ops)[operationTypeID]
	if !ok {
		return nil, fmt.Errorf("%w: invalid operation type id: %d", domain.ErrInvalidOperationType, operationTypeID)
	}
	strategy, err := s.dispatcher.Resolve(string(op.Handler))
	if err != nil {
		return nil, err
	}
	return strategy.PerformTransaction(ctx, domain.NewAccountRef(accountID), amount)
}

// GetTransaction 查詢交易
func (s *TransactionService) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	return s.store.FindByID(ctx, id)
}

// indexByID 以 ID 建立反向索引 (每次請求重建，目錄很小)
func indexByID(ops map[domain.HandlerName]domain.OperationType) map[int64]domain.OperationType {
	byID := make(map[int64]domain.OperationType, len(ops))
	for _, op := range ops {
		byID[op.ID] = op
	}
	return byID
}
