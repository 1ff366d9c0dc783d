package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// Dispatcher 將 handler 名稱對應到唯一的處理策略
type Dispatcher struct {
	strategies map[domain.HandlerName]*Strategy
	logger     *slog.Logger
}

// DispatcherOption 定義 Dispatcher 的配置選項函數
type DispatcherOption func(*dispatcherConfig)

type dispatcherConfig struct {
	now func() time.Time
}

// WithClock 設定策略取得目前時間的函數 (測試用)
func WithClock(now func() time.Time) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.now = now
	}
}

// NewDispatcher 為 domain.SupportedHandlers 中的每個名稱建立一個策略
//
// 參數:
//
//	catalog: 交易類型目錄 (通常是 OperationTypeCache)
//	store: 交易儲存
//	logger: 日誌
//
// 回傳:
//
//	*Dispatcher: Dispatcher 實例
//	error: 有名稱沒有對應策略時回傳錯誤 (啟動時即失敗)
func NewDispatcher(catalog OperationTypeReader, store TransactionStore, logger *slog.Logger, opts ...DispatcherOption) (*Dispatcher, error) {
	cfg := dispatcherConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Dispatcher{
		strategies: make(map[domain.HandlerName]*Strategy, len(domain.SupportedHandlers)),
		logger:     logger,
	}
	for _, name := range domain.SupportedHandlers {
		rule, ok := strategyRules(name)
		if !ok {
			return nil, fmt.Errorf("no transaction strategy bound to handler %s", name)
		}
		d.strategies[name] = &Strategy{
			name:      name,
			extraRule: rule,
			catalog:   catalog,
			store:     store,
			logger:    logger,
			now:       cfg.now,
		}
	}
	return d, nil
}

// Resolve 取得 handler 名稱對應的策略 (去除空白、不分大小寫)
//
// 參數:
//
//	name: handler 名稱
//
// 回傳:
//
//	*Strategy: 對應的策略
//	error: 名稱為空或不在支援集合中時回傳 domain.ErrInvalidOperationType
func (d *Dispatcher) Resolve(name string) (*Strategy, error) {
	if strings.TrimSpace(name) == "" {
		d.logger.Warn("Attempted to get handler with blank transaction handler")
		return nil, fmt.Errorf("%w: transaction handler cannot be blank", domain.ErrInvalidOperationType)
	}
	normalized := domain.NormalizeHandlerName(name)
	s, ok := d.strategies[normalized]
	if !ok {
		d.logger.Error("Invalid transaction handler type", "handler", normalized)
		return nil, fmt.Errorf("%w: invalid transaction handler: %s. Supported types: %s",
			domain.ErrInvalidOperationType, normalized, domain.SupportedHandlerNames())
	}
	d.logger.Debug("Successfully resolved handler", "handler", normalized)
	return s, nil
}
