package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountRef 交易流程中使用的帳戶識別，只包裝原始帳戶 ID
type AccountRef struct {
	id int64
}

// NewAccountRef 以原始帳戶 ID 建立 AccountRef
func NewAccountRef(id int64) AccountRef {
	return AccountRef{id: id}
}

// ID 原始帳戶 ID
func (a AccountRef) ID() int64 {
	return a.id
}

// IsZero 帳戶 ID 未提供 (ID 由資料庫從 1 開始分配，非正數視為缺少)
func (a AccountRef) IsZero() bool {
	return a.id <= 0
}

// Transaction 一筆已簽名的金額異動
//
// Amount 的正負號由處理策略依 OperationType.Direction 決定，呼叫端只提供金額大小
type Transaction struct {
	// ID: 儲存後由資料庫分配
	ID            int64
	Account       AccountRef
	OperationType OperationType
	Amount        decimal.Decimal
	// EventDate: 交易發生時間 (由策略設定)
	EventDate time.Time
	// CreatedAt, UpdatedAt: 儲存時間 (由儲存層設定)
	CreatedAt time.Time
	UpdatedAt time.Time
	Active    bool
}
