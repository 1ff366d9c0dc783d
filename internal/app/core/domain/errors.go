package domain

import "errors"

var (
	// ErrInvalidAccount 帳戶識別缺少或不合法
	ErrInvalidAccount = errors.New("invalid account")

	// ErrInvalidAmount 金額缺少、為零或為負數
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidOperationType 交易類型不存在或無對應處理器
	ErrInvalidOperationType = errors.New("invalid operation type")

	// ErrInvalidTransaction 交易物件為空
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInvalidDocumentNumber 證件號碼為空
	ErrInvalidDocumentNumber = errors.New("invalid document number")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountAlreadyExists 帳戶已存在
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrTransactionNotFound 找不到交易
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrOperationTypeNotFound 找不到交易類型
	ErrOperationTypeNotFound = errors.New("operation type not found")

	// ErrWALWriteFailed WAL 寫入失敗
	ErrWALWriteFailed = errors.New("wal write failed")
)
