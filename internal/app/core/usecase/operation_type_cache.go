package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// OperationTypeCache 交易類型目錄的記憶體快取
//
// 結構:
//
//	store: 目錄的持久化儲存
//	table: handler 名稱 -> OperationType (sync.Map，讀取不互相阻塞)
//	once/done/initErr: 初始化只執行一次，所有等待者共享同一個結果
//
// 寫入一律先寫 store，成功後才更新 table (write-through)；讀取一律回傳複本
type OperationTypeCache struct {
	store  CatalogStore
	logger *slog.Logger

	table sync.Map // map[domain.HandlerName]domain.OperationType

	once    sync.Once
	done    chan struct{}
	initErr error
}

// NewOperationTypeCache 建立快取，第一次使用時才會載入
func NewOperationTypeCache(store CatalogStore, logger *slog.Logger) *OperationTypeCache {
	return &OperationTypeCache{
		store:  store,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Warm 立即觸發初始化並等待結果 (啟動時呼叫)
func (c *OperationTypeCache) Warm(ctx context.Context) error {
	return c.awaitInit(ctx)
}

// awaitInit 等待初始化完成
//
// 第一個呼叫者啟動載入，之後的呼叫者等待同一個結果。
// 呼叫者的 ctx 取消只會讓自己提早返回，不會中斷正在進行的載入。
// 載入失敗不會重試，之後的呼叫都會拿到同一個錯誤。
func (c *OperationTypeCache) awaitInit(ctx context.Context) error {
	c.once.Do(func() {
		loadCtx := context.WithoutCancel(ctx)
		go func() {
			defer close(c.done)
			c.initErr = c.load(loadCtx)
		}()
	})
	select {
	case <-c.done:
		return c.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// load 從 store 載入所有啟用中的交易類型
func (c *OperationTypeCache) load(ctx context.Context) error {
	c.logger.Info("Starting operation type cache initialization")
	ops, err := c.store.LoadAllActive(ctx)
	if err != nil {
		c.logger.Error("Failed to initialize operation type cache", "error", err)
		return err
	}
	for _, op := range ops {
		c.table.Store(op.Handler, op)
	}
	c.logger.Info("Successfully loaded operation types into cache", "count", len(ops))
	return nil
}

// snapshot 目前 table 的複本
func (c *OperationTypeCache) snapshot() map[domain.HandlerName]domain.OperationType {
	out := make(map[domain.HandlerName]domain.OperationType)
	c.table.Range(func(key, value any) bool {
		out[key.(domain.HandlerName)] = value.(domain.OperationType)
		return true
	})
	return out
}

// GetAll 取得所有交易類型 (以 handler 名稱為 key 的複本)
//
// 參數:
//
//	ctx: 上下文
//
// 回傳:
//
//	map[domain.HandlerName]domain.OperationType: 呼叫當下的複本，修改不影響快取
//	error: 初始化錯誤
func (c *OperationTypeCache) GetAll(ctx context.Context) (map[domain.HandlerName]domain.OperationType, error) {
	if err := c.awaitInit(ctx); err != nil {
		return nil, err
	}
	return c.snapshot(), nil
}

// Upsert 新增或更新交易類型
//
// 參數:
//
//	ctx: 上下文
//	op: 交易類型
//
// 回傳:
//
//	map[domain.HandlerName]domain.OperationType: 寫入後的複本
//	error: 初始化錯誤或 store 錯誤 (此時快取不變)
func (c *OperationTypeCache) Upsert(ctx context.Context, op domain.OperationType) (map[domain.HandlerName]domain.OperationType, error) {
	if err := c.awaitInit(ctx); err != nil {
		return nil, err
	}
	saved, err := c.store.Save(ctx, op)
	if err != nil {
		return nil, err
	}
	c.storeByID(*saved)
	return c.snapshot(), nil
}

// storeByID 寫入 table，同一個 ID 在 table 中只保留一個 handler
func (c *OperationTypeCache) storeByID(op domain.OperationType) {
	c.table.Range(func(key, value any) bool {
		if value.(domain.OperationType).ID == op.ID && key.(domain.HandlerName) != op.Handler {
			c.table.Delete(key)
		}
		return true
	})
	c.table.Store(op.Handler, op)
}

// Delete 刪除交易類型，ID 不存在時不視為錯誤，直接回傳目前的複本
//
// 參數:
//
//	ctx: 上下文
//	id: 交易類型 ID
//
// 回傳:
//
//	map[domain.HandlerName]domain.OperationType: 刪除後的複本
//	error: 初始化錯誤或 store 錯誤 (此時快取不變)
func (c *OperationTypeCache) Delete(ctx context.Context, id int64) (map[domain.HandlerName]domain.OperationType, error) {
	if err := c.awaitInit(ctx); err != nil {
		return nil, err
	}
	op, err := c.store.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return c.snapshot(), nil
		}
		return nil, err
	}
	if err := c.store.DeleteByID(ctx, id); err != nil {
		if isNotFound(err) {
			return c.snapshot(), nil
		}
		return nil, err
	}
	c.table.Delete(op.Handler)
	return c.snapshot(), nil
}

var _ OperationTypeReader = (*OperationTypeCache)(nil)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrOperationTypeNotFound)
}
