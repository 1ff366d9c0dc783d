package domain

import (
	"strings"
	"time"
)

// Account 客戶帳戶
type Account struct {
	ID             int64
	DocumentNumber string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Active         bool
}

// NewAccount 建立一個待儲存的帳戶 (ID 由儲存層分配)
func NewAccount(documentNumber string) (*Account, error) {
	documentNumber = strings.TrimSpace(documentNumber)
	if documentNumber == "" {
		return nil, ErrInvalidDocumentNumber
	}
	return &Account{
		DocumentNumber: documentNumber,
		Active:         true,
	}, nil
}

// Ref 轉成交易流程使用的 AccountRef
func (a *Account) Ref() AccountRef {
	return NewAccountRef(a.ID)
}
