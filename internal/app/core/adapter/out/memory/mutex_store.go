package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-txn-ledger/pkg/wal"
)

// MutexStore 以 Mutex 保護的記憶體儲存，可選擇寫入 WAL 以便重啟後恢復
//
// 結構:
//
//	mu: RWMutex 保護以下所有資料
//	accounts / documents: 帳戶與證件號碼索引
//	operationTypes: 交易類型目錄
//	transactions: 交易紀錄
//	nextXxxID: 下一個分配的 ID
//	wal: Write-Ahead Log 實例 (nil 表示純記憶體)
type MutexStore struct {
	mu sync.RWMutex

	accounts       map[int64]*accountRecord
	documents      map[string]int64
	operationTypes map[int64]*operationTypeRecord
	transactions   map[int64]*transactionRecord

	nextAccountID       int64
	nextOperationTypeID int64
	nextTransactionID   int64

	wal *wal.WAL
	now func() time.Time
}

// NewMutexStore 建立一個新的 MutexStore 實例
//
// 參數:
//
//	w: Write-Ahead Log 實例，可為 nil
//
// 回傳:
//
//	*MutexStore: MutexStore 實例
//	error: 初始化錯誤 (如 WAL 恢復失敗)
func NewMutexStore(w *wal.WAL) (*MutexStore, error) {
	s := &MutexStore{
		accounts:            make(map[int64]*accountRecord),
		documents:           make(map[string]int64),
		operationTypes:      make(map[int64]*operationTypeRecord),
		transactions:        make(map[int64]*transactionRecord),
		nextAccountID:       1,
		nextOperationTypeID: 1,
		nextTransactionID:   1,
		wal:                 w,
		now:                 time.Now,
	}
	if w != nil {
		if err := s.recoverFromWAL(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// recoverFromWAL 從 WAL 檔案恢復狀態
// 只有 NewMutexStore 呼叫，無需 Lock (單執行緒)
func (s *MutexStore) recoverFromWAL() error {
	return s.wal.Replay(func(raw json.RawMessage) error {
		var rec walRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		return s.apply(&rec)
	})
}

// apply 將一筆異動套用到記憶體 (呼叫端需持有寫鎖)
func (s *MutexStore) apply(rec *walRecord) error {
	switch rec.Kind {
	case kindAccount:
		s.accounts[rec.Account.ID] = rec.Account
		s.documents[rec.Account.DocumentNumber] = rec.Account.ID
		s.nextAccountID = max(s.nextAccountID, rec.Account.ID+1)
	case kindOperationType:
		s.operationTypes[rec.OperationType.ID] = rec.OperationType
		s.nextOperationTypeID = max(s.nextOperationTypeID, rec.OperationType.ID+1)
	case kindOperationTypeDelete:
		delete(s.operationTypes, rec.DeletedID)
	case kindTransaction:
		s.transactions[rec.Transaction.ID] = rec.Transaction
		s.nextTransactionID = max(s.nextTransactionID, rec.Transaction.ID+1)
	default:
		return fmt.Errorf("unknown wal record kind: %q", rec.Kind)
	}
	return nil
}

// commit 先寫 WAL 再套用到記憶體 (呼叫端需持有寫鎖)
func (s *MutexStore) commit(rec *walRecord) error {
	if s.wal != nil {
		if err := s.wal.Append(rec); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrWALWriteFailed, err)
		}
	}
	return s.apply(rec)
}

// Catalog 交易類型目錄
func (s *MutexStore) Catalog() *CatalogStore {
	return &CatalogStore{s: s}
}

// Transactions 交易紀錄
func (s *MutexStore) Transactions() *TransactionStore {
	return &TransactionStore{s: s}
}

// Accounts 帳戶
func (s *MutexStore) Accounts() *AccountStore {
	return &AccountStore{s: s}
}

// CatalogStore 記憶體版交易類型目錄
type CatalogStore struct {
	s *MutexStore
}

// LoadAllActive 載入所有交易類型 (依 ID 排序)
func (c *CatalogStore) LoadAllActive(ctx context.Context) ([]domain.OperationType, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	ops := make([]domain.OperationType, 0, len(c.s.operationTypes))
	for id := int64(1); id < c.s.nextOperationTypeID; id++ {
		if rec, ok := c.s.operationTypes[id]; ok {
			ops = append(ops, rec.toDomain())
		}
	}
	return ops, nil
}

// FindByID 查詢交易類型
func (c *CatalogStore) FindByID(ctx context.Context, id int64) (*domain.OperationType, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	rec, ok := c.s.operationTypes[id]
	if !ok {
		return nil, domain.ErrOperationTypeNotFound
	}
	op := rec.toDomain()
	return &op, nil
}

// Save 新增 (ID 為 0 時分配 ID) 或覆寫交易類型
func (c *CatalogStore) Save(ctx context.Context, op domain.OperationType) (*domain.OperationType, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if op.ID == 0 {
		op.ID = c.s.nextOperationTypeID
	}
	if err := c.s.commit(&walRecord{Kind: kindOperationType, OperationType: newOperationTypeRecord(op)}); err != nil {
		return nil, err
	}
	return &op, nil
}

// DeleteByID 刪除交易類型
func (c *CatalogStore) DeleteByID(ctx context.Context, id int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.operationTypes[id]; !ok {
		return domain.ErrOperationTypeNotFound
	}
	return c.s.commit(&walRecord{Kind: kindOperationTypeDelete, DeletedID: id})
}

// TransactionStore 記憶體版交易紀錄
type TransactionStore struct {
	s *MutexStore
}

// Save 分配 ID 與儲存時間後寫入
func (t *TransactionStore) Save(ctx context.Context, tran *domain.Transaction) (*domain.Transaction, error) {
	if tran == nil {
		return nil, domain.ErrInvalidTransaction
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	now := t.s.now()
	rec := newTransactionRecord(tran)
	rec.ID = t.s.nextTransactionID
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := t.s.commit(&walRecord{Kind: kindTransaction, Transaction: rec}); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

// FindByID 查詢交易紀錄
func (t *TransactionStore) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	rec, ok := t.s.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return rec.toDomain(), nil
}

// AccountStore 記憶體版帳戶
type AccountStore struct {
	s *MutexStore
}

// Create 建立帳戶，證件號碼重複時回傳 domain.ErrAccountAlreadyExists
func (a *AccountStore) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.documents[account.DocumentNumber]; ok {
		return nil, domain.ErrAccountAlreadyExists
	}

	now := a.s.now()
	rec := newAccountRecord(account)
	rec.ID = a.s.nextAccountID
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := a.s.commit(&walRecord{Kind: kindAccount, Account: rec}); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

// FindActiveByID 查詢啟用中的帳戶
func (a *AccountStore) FindActiveByID(ctx context.Context, id int64) (*domain.Account, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	rec, ok := a.s.accounts[id]
	if !ok || !rec.Active {
		return nil, domain.ErrAccountNotFound
	}
	return rec.toDomain(), nil
}

var (
	_ usecase.CatalogStore     = (*CatalogStore)(nil)
	_ usecase.TransactionStore = (*TransactionStore)(nil)
	_ usecase.AccountStore     = (*AccountStore)(nil)
)
