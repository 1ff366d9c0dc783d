package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// amountRule 各策略額外的金額檢查 (作用在套用正負號之前的原始金額)
type amountRule func(amount decimal.Decimal) error

// Strategy 單一交易處理策略，綁定一個 handler 名稱
//
// 所有策略共用同一個流程: Validate (共用規則 + 策略規則) -> Execute (簽名並儲存)
type Strategy struct {
	name      domain.HandlerName
	extraRule amountRule

	catalog OperationTypeReader
	store   TransactionStore
	logger  *slog.Logger
	now     func() time.Time
}

// HandlerName 此策略負責的 handler 名稱
func (s *Strategy) HandlerName() domain.HandlerName {
	return s.name
}

// Validate 檢查帳戶與金額
//
// 參數:
//
//	account: 帳戶
//	amount: 原始金額 (未套用正負號)，Valid=false 表示未提供
//
// 回傳:
//
//	error: domain.ErrInvalidAccount 或 domain.ErrInvalidAmount
func (s *Strategy) Validate(account domain.AccountRef, amount decimal.NullDecimal) error {
	// 先檢查帳戶，再檢查金額
	if account.IsZero() {
		return fmt.Errorf("%w: account identifier cannot be null or empty", domain.ErrInvalidAccount)
	}
	if !amount.Valid {
		return fmt.Errorf("%w: amount cannot be null", domain.ErrInvalidAmount)
	}
	if !amount.Decimal.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrInvalidAmount)
	}
	if s.extraRule != nil {
		return s.extraRule(amount.Decimal)
	}
	return nil
}

// Execute 依交易類型方向建立交易並儲存
//
// 參數:
//
//	ctx: 上下文
//	account: 帳戶
//	amount: 原始金額
//
// 回傳:
//
//	*domain.Transaction: 儲存後的交易 (含 ID)
//	error: 目錄中找不到此策略的交易類型時回傳 domain.ErrInvalidOperationType，其餘為 store 錯誤
func (s *Strategy) Execute(ctx context.Context, account domain.AccountRef, amount decimal.Decimal) (*domain.Transaction, error) {
	op, err := s.operationType(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Processing transaction", "handler", s.name, "account", account.ID(), "amount", amount.String())

	tran := &domain.Transaction{
		Account:       account,
		OperationType: op,
		Amount:        op.Direction.Apply(amount),
		EventDate:     s.now(),
		Active:        true,
	}
	return s.store.Save(ctx, tran)
}

// PerformTransaction 先 Validate，通過後才 Execute
func (s *Strategy) PerformTransaction(ctx context.Context, account domain.AccountRef, amount decimal.NullDecimal) (*domain.Transaction, error) {
	if err := s.Validate(account, amount); err != nil {
		return nil, err
	}
	return s.Execute(ctx, account, amount.Decimal)
}

// operationType 從快取取得此策略的交易類型
func (s *Strategy) operationType(ctx context.Context) (domain.OperationType, error) {
	ops, err := s.catalog.GetAll(ctx)
	if err != nil {
		return domain.OperationType{}, err
	}
	op, ok := ops[s.name]
	if !ok {
		return domain.OperationType{}, fmt.Errorf("%w: unable to find the transaction handler for operation type: %s",
			domain.ErrInvalidOperationType, s.name)
	}
	return op, nil
}

// rejectNegative 金額不可為負數
func rejectNegative(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: amount cannot be negative", domain.ErrInvalidAmount)
	}
	return nil
}

// strategyRules 每個 handler 名稱對應的額外規則
//
// 回傳 false 表示此名稱沒有對應的策略，NewDispatcher 會因此啟動失敗
func strategyRules(name domain.HandlerName) (amountRule, bool) {
	switch name {
	case domain.HandlerCashPurchase:
		return nil, true
	case domain.HandlerInstallmentPurchase:
		return rejectNegative, true
	case domain.HandlerWithdrawal:
		return rejectNegative, true
	case domain.HandlerPayment:
		return rejectNegative, true
	}
	return nil, false
}
