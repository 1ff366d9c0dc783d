package memory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/pkg/wal"
)

func TestCatalogStore_CRUD(t *testing.T) {
	store, err := NewMutexStore(nil)
	require.NoError(t, err)
	catalog := store.Catalog()
	ctx := context.Background()

	for _, op := range domain.DefaultOperationTypes() {
		_, err := catalog.Save(ctx, op)
		require.NoError(t, err)
	}
	created, err := catalog.Save(ctx, domain.OperationType{Description: "Refund", Handler: "REFUND", Direction: domain.DirectionCredit})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)

	ops, err := catalog.LoadAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 5)
	assert.Equal(t, domain.DefaultOperationTypes(), ops[:4])

	require.NoError(t, catalog.DeleteByID(ctx, 5))
	assert.ErrorIs(t, catalog.DeleteByID(ctx, 5), domain.ErrOperationTypeNotFound)

	_, err = catalog.FindByID(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrOperationTypeNotFound)

	op, err := catalog.FindByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.HandlerPayment, op.Handler)
}

func TestTransactionStore_SaveAssignsIDAndTimestamps(t *testing.T) {
	store, err := NewMutexStore(nil)
	require.NoError(t, err)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	op := domain.DefaultOperationTypes()[0]
	first, err := store.Transactions().Save(ctx, &domain.Transaction{
		Account:       domain.NewAccountRef(1001),
		OperationType: op,
		Amount:        decimal.RequireFromString("-100.00"),
		EventDate:     now,
		Active:        true,
	})
	require.NoError(t, err)
	second, err := store.Transactions().Save(ctx, &domain.Transaction{Account: domain.NewAccountRef(1001), OperationType: op, Amount: decimal.NewFromInt(-1)})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, now, first.CreatedAt)
	assert.Equal(t, now, first.UpdatedAt)

	got, err := store.Transactions().FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	_, err = store.Transactions().FindByID(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	_, err = store.Transactions().Save(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransaction)
}

func TestAccountStore_DuplicateDocument(t *testing.T) {
	store, err := NewMutexStore(nil)
	require.NoError(t, err)
	ctx := context.Background()

	account, err := store.Accounts().Create(ctx, &domain.Account{DocumentNumber: "12345678900", Active: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)

	_, err = store.Accounts().Create(ctx, &domain.Account{DocumentNumber: "12345678900", Active: true})
	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	got, err := store.Accounts().FindActiveByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, account, got)

	_, err = store.Accounts().FindActiveByID(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestMutexStore_RecoverFromWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.wal")
	ctx := context.Background()

	w, err := wal.Open(path)
	require.NoError(t, err)
	store, err := NewMutexStore(w)
	require.NoError(t, err)

	for _, op := range domain.DefaultOperationTypes() {
		_, err := store.Catalog().Save(ctx, op)
		require.NoError(t, err)
	}
	require.NoError(t, store.Catalog().DeleteByID(ctx, 2))
	account, err := store.Accounts().Create(ctx, &domain.Account{DocumentNumber: "12345678900", Active: true})
	require.NoError(t, err)
	tran, err := store.Transactions().Save(ctx, &domain.Transaction{
		Account:       account.Ref(),
		OperationType: domain.DefaultOperationTypes()[3],
		Amount:        decimal.RequireFromString("500.00"),
		EventDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:        true,
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// 重新開啟並恢復
	w, err = wal.Open(path)
	require.NoError(t, err)
	defer w.Close()
	recovered, err := NewMutexStore(w)
	require.NoError(t, err)

	ops, err := recovered.Catalog().LoadAllActive(ctx)
	require.NoError(t, err)
	assert.Len(t, ops, 3)

	gotAccount, err := recovered.Accounts().FindActiveByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.DocumentNumber, gotAccount.DocumentNumber)

	gotTran, err := recovered.Transactions().FindByID(ctx, tran.ID)
	require.NoError(t, err)
	assert.True(t, gotTran.Amount.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, domain.HandlerPayment, gotTran.OperationType.Handler)

	// ID 從最大值之後繼續分配
	next, err := recovered.Transactions().Save(ctx, &domain.Transaction{Account: account.Ref(), OperationType: domain.DefaultOperationTypes()[3], Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, tran.ID+1, next.ID)

	_, err = recovered.Accounts().Create(ctx, &domain.Account{DocumentNumber: "12345678900", Active: true})
	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)
}
