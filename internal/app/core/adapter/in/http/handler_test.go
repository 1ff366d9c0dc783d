package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase/mocks"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := memory.NewMutexStore(nil)
	require.NoError(t, err)
	for _, op := range domain.DefaultOperationTypes() {
		_, err := store.Catalog().Save(context.Background(), op)
		require.NoError(t, err)
	}
	cache := usecase.NewOperationTypeCache(store.Catalog(), logger)
	dispatcher, err := usecase.NewDispatcher(cache, store.Transactions(), logger)
	require.NoError(t, err)
	core := usecase.NewCoreUseCase(
		usecase.NewTransactionService(cache, dispatcher, store.Transactions(), logger),
		usecase.NewAccountService(store.Accounts(), logger),
		cache,
	)
	return NewHandler(core, logger).Router()
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccounts(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/accounts", `{"document_number":"12345678900"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[AccountResponse](t, rec)
	assert.Equal(t, "12345678900", created.DocumentNumber)
	assert.Positive(t, created.AccountID)

	rec = do(t, router, http.MethodGet, "/accounts/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[AccountResponse](t, rec))

	rec = do(t, router, http.MethodPost, "/accounts", `{"document_number":"12345678900"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.Equal(t, http.StatusConflict, errResp.Status)
	assert.Equal(t, "Conflict", errResp.Error)

	rec = do(t, router, http.MethodGet, "/accounts/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/accounts/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/accounts", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactions(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantAmount string
	}{
		{"cash purchase is debited", `{"account_id":1,"operation_type_id":1,"amount":"50.00"}`, http.StatusCreated, "-50.00"},
		{"installment purchase is debited", `{"account_id":1,"operation_type_id":2,"amount":23.5}`, http.StatusCreated, "-23.50"},
		{"withdrawal is debited", `{"account_id":1,"operation_type_id":3,"amount":"18.7"}`, http.StatusCreated, "-18.70"},
		{"payment is credited", `{"account_id":1,"operation_type_id":4,"amount":"60"}`, http.StatusCreated, "60.00"},
		{"unknown operation type", `{"account_id":1,"operation_type_id":999,"amount":"10"}`, http.StatusBadRequest, ""},
		{"zero amount", `{"account_id":1,"operation_type_id":1,"amount":"0"}`, http.StatusBadRequest, ""},
		{"negative amount", `{"account_id":1,"operation_type_id":4,"amount":"-10"}`, http.StatusBadRequest, ""},
		{"null amount", `{"account_id":1,"operation_type_id":4,"amount":null}`, http.StatusBadRequest, ""},
		{"missing account", `{"operation_type_id":4,"amount":"10"}`, http.StatusBadRequest, ""},
		{"missing operation type", `{"account_id":1,"amount":"10"}`, http.StatusBadRequest, ""},
		{"malformed body", `{"account_id":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/transactions", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantAmount != "" {
				assert.Equal(t, tt.wantAmount, decode[TransactionResponse](t, rec).Amount)
			}
		})
	}
}

func TestGetTransaction(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/transactions", `{"account_id":7,"operation_type_id":4,"amount":"123.45"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[TransactionResponse](t, rec)

	rec = do(t, router, http.MethodGet, "/transactions/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[TransactionResponse](t, rec)
	assert.Equal(t, created.TransactionID, got.TransactionID)
	assert.Equal(t, int64(7), got.AccountID)
	assert.Equal(t, int64(4), got.OperationTypeID)
	assert.Equal(t, "123.45", got.Amount)

	rec = do(t, router, http.MethodGet, "/transactions/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOperationTypes(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/operation-types", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ops := decode[[]OperationTypeResponse](t, rec)
	require.Len(t, ops, 4)
	assert.Equal(t, int64(1), ops[0].ID)
	assert.Equal(t, "CASH_PURCHASE_TRANSACTION", ops[0].Handler)

	rec = do(t, router, http.MethodPut, "/operation-types",
		`{"operation_type_id":4,"description":"Refund","handler":"payment","direction":"credit"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ops = decode[[]OperationTypeResponse](t, rec)
	require.Len(t, ops, 4)
	assert.Equal(t, OperationTypeResponse{ID: 4, Description: "Refund", Handler: "PAYMENT", Direction: "CREDIT"}, ops[3])

	rec = do(t, router, http.MethodPut, "/operation-types",
		`{"operation_type_id":9,"description":"Bogus","handler":"TRANSFER","direction":"DEBIT"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPut, "/operation-types",
		`{"operation_type_id":9,"description":"Bogus","handler":"PAYMENT","direction":"SIDEWAYS"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodDelete, "/operation-types/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]OperationTypeResponse](t, rec), 3)

	rec = do(t, router, http.MethodDelete, "/operation-types/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]OperationTypeResponse](t, rec), 3)

	rec = do(t, router, http.MethodPost, "/transactions", `{"account_id":1,"operation_type_id":3,"amount":"10"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&requestError{msg: "x"}))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrOperationTypeNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(domain.ErrWALWriteFailed))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
}

func TestInternalErrorHidesDetail(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalogStore(ctrl)
	catalog.EXPECT().LoadAllActive(gomock.Any()).
		Return(nil, errors.New("Error 1045 (28000): Access denied for user 'root'@'10.0.0.5'"))
	transactions := mocks.NewMockTransactionStore(ctrl)
	accounts := mocks.NewMockAccountStore(ctrl)

	cache := usecase.NewOperationTypeCache(catalog, logger)
	dispatcher, err := usecase.NewDispatcher(cache, transactions, logger)
	require.NoError(t, err)
	core := usecase.NewCoreUseCase(
		usecase.NewTransactionService(cache, dispatcher, transactions, logger),
		usecase.NewAccountService(accounts, logger),
		cache,
	)
	router := NewHandler(core, logger).Router()

	rec := do(t, router, http.MethodGet, "/operation-types", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "internal server error", errResp.Message)
	assert.NotContains(t, rec.Body.String(), "Access denied")
	assert.Contains(t, logs.String(), "Access denied")

	// 4xx 仍回傳詳細訊息
	rec = do(t, router, http.MethodGet, "/accounts/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "invalid id")
}
