package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Direction 交易方向，決定金額在帳上是增加還是減少
type Direction string

const (
	// 入帳 (金額保持非負)
	DirectionCredit Direction = "CREDIT"
	// 出帳 (金額以負數儲存)
	DirectionDebit Direction = "DEBIT"
)

// ParseDirection 解析交易方向 (不分大小寫)
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case DirectionCredit:
		return DirectionCredit, nil
	case DirectionDebit:
		return DirectionDebit, nil
	}
	return "", fmt.Errorf("unknown direction: %q", s)
}

// Apply 依方向套用金額正負號，DEBIT 取負、CREDIT 不變
func (d Direction) Apply(amount decimal.Decimal) decimal.Decimal {
	if d == DirectionDebit {
		return amount.Neg()
	}
	return amount
}

// HandlerName 交易處理器名稱，只接受 SupportedHandlers 中的值
type HandlerName string

const (
	HandlerCashPurchase        HandlerName = "CASH_PURCHASE_TRANSACTION"
	HandlerInstallmentPurchase HandlerName = "INSTALLMENT_PURCHASE"
	HandlerWithdrawal          HandlerName = "WITHDRAWAL"
	HandlerPayment             HandlerName = "PAYMENT"
)

// SupportedHandlers 封閉的處理器名稱集合，順序即為錯誤訊息中列出的順序
var SupportedHandlers = [...]HandlerName{
	HandlerCashPurchase,
	HandlerInstallmentPurchase,
	HandlerWithdrawal,
	HandlerPayment,
}

// NormalizeHandlerName 去除空白並轉成大寫
func NormalizeHandlerName(name string) HandlerName {
	return HandlerName(strings.ToUpper(strings.TrimSpace(name)))
}

// IsSupported 是否屬於封閉集合
func (h HandlerName) IsSupported() bool {
	for _, s := range SupportedHandlers {
		if s == h {
			return true
		}
	}
	return false
}

// SupportedHandlerNames 以逗號串接所有支援的處理器名稱
func SupportedHandlerNames() string {
	names := make([]string, 0, len(SupportedHandlers))
	for _, s := range SupportedHandlers {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// OperationType 交易類型目錄中的一筆資料
type OperationType struct {
	ID          int64
	Description string
	Handler     HandlerName
	Direction   Direction
}

// DefaultOperationTypes 系統預設的交易類型目錄 (資料庫為空時用於初始化)
func DefaultOperationTypes() []OperationType {
	return []OperationType{
		{ID: 1, Description: "Normal Purchase", Handler: HandlerCashPurchase, Direction: DirectionDebit},
		{ID: 2, Description: "Purchase with installments", Handler: HandlerInstallmentPurchase, Direction: DirectionDebit},
		{ID: 3, Description: "Withdrawal", Handler: HandlerWithdrawal, Direction: DirectionDebit},
		{ID: 4, Description: "Credit Voucher", Handler: HandlerPayment, Direction: DirectionCredit},
	}
}
