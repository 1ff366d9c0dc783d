package grpc

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
)

func newTestClient(t *testing.T) *Client {
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

	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(LoggingInterceptor(logger), RecoveryInterceptor(logger)))
	Register(s, NewGrpcServer(core))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestGrpcServer_AccountAndTransactionFlow(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	account, err := client.CreateAccount(ctx, mustStruct(t, map[string]any{FieldDocumentNumber: "12345678900"}))
	require.NoError(t, err)
	accountID := account.GetFields()[FieldAccountID].GetNumberValue()
	assert.Equal(t, float64(1), accountID)

	got, err := client.GetAccount(ctx, mustStruct(t, map[string]any{FieldAccountID: accountID}))
	require.NoError(t, err)
	assert.Equal(t, "12345678900", got.GetFields()[FieldDocumentNumber].GetStringValue())

	tran, err := client.PerformTransaction(ctx, mustStruct(t, map[string]any{
		FieldAccountID:       accountID,
		FieldOperationTypeID: 1,
		FieldAmount:          "100.00",
	}))
	require.NoError(t, err)
	assert.Equal(t, "-100.00", tran.GetFields()[FieldAmount].GetStringValue())
	assert.Equal(t, float64(1), tran.GetFields()[FieldOperationTypeID].GetNumberValue())

	payment, err := client.PerformTransaction(ctx, mustStruct(t, map[string]any{
		FieldAccountID:       accountID,
		FieldOperationTypeID: 4,
		FieldAmount:          500,
	}))
	require.NoError(t, err)
	assert.Equal(t, "500.00", payment.GetFields()[FieldAmount].GetStringValue())

	fetched, err := client.GetTransaction(ctx, mustStruct(t, map[string]any{
		FieldTransactionID: tran.GetFields()[FieldTransactionID].GetNumberValue(),
	}))
	require.NoError(t, err)
	assert.Equal(t, "-100.00", fetched.GetFields()[FieldAmount].GetStringValue())
}

func TestGrpcServer_ErrorCodes(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{
			name: "unknown operation type",
			call: func() error {
				_, err := client.PerformTransaction(ctx, mustStruct(t, map[string]any{FieldAccountID: 1001, FieldOperationTypeID: 999, FieldAmount: "50.00"}))
				return err
			},
			want: codes.InvalidArgument,
		},
		{
			name: "negative amount",
			call: func() error {
				_, err := client.PerformTransaction(ctx, mustStruct(t, map[string]any{FieldAccountID: 1001, FieldOperationTypeID: 1, FieldAmount: "-50.00"}))
				return err
			},
			want: codes.InvalidArgument,
		},
		{
			name: "malformed amount",
			call: func() error {
				_, err := client.PerformTransaction(ctx, mustStruct(t, map[string]any{FieldAccountID: 1001, FieldOperationTypeID: 1, FieldAmount: "abc"}))
				return err
			},
			want: codes.InvalidArgument,
		},
		{
			name: "missing account id",
			call: func() error {
				_, err := client.PerformTransaction(ctx, mustStruct(t, map[string]any{FieldOperationTypeID: 1, FieldAmount: "1"}))
				return err
			},
			want: codes.InvalidArgument,
		},
		{
			name: "account not found",
			call: func() error {
				_, err := client.GetAccount(ctx, mustStruct(t, map[string]any{FieldAccountID: 42}))
				return err
			},
			want: codes.NotFound,
		},
		{
			name: "transaction not found",
			call: func() error {
				_, err := client.GetTransaction(ctx, mustStruct(t, map[string]any{FieldTransactionID: 42}))
				return err
			},
			want: codes.NotFound,
		},
		{
			name: "blank document number",
			call: func() error {
				_, err := client.CreateAccount(ctx, mustStruct(t, map[string]any{FieldDocumentNumber: " "}))
				return err
			},
			want: codes.InvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(tt.call()))
		})
	}
}

func TestGrpcServer_DuplicateAccount(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	req := mustStruct(t, map[string]any{FieldDocumentNumber: "12345678900"})

	_, err := client.CreateAccount(ctx, req)
	require.NoError(t, err)
	_, err = client.CreateAccount(ctx, req)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestIntField(t *testing.T) {
	req := mustStruct(t, map[string]any{"a": 12, "b": 1.5, "c": "12"})

	n, err := intField(req, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = intField(req, "b")
	assert.Error(t, err)
	_, err = intField(req, "c")
	assert.Error(t, err)
	_, err = intField(req, "missing")
	assert.Error(t, err)
}

func TestAmountField(t *testing.T) {
	tests := []struct {
		name    string
		value   *structpb.Value
		want    decimal.NullDecimal
		wantErr bool
	}{
		{"string", structpb.NewStringValue("12.34"), decimal.NewNullDecimal(decimal.RequireFromString("12.34")), false},
		{"number", structpb.NewNumberValue(5.5), decimal.NewNullDecimal(decimal.RequireFromString("5.5")), false},
		{"null", structpb.NewNullValue(), decimal.NullDecimal{}, false},
		{"malformed string", structpb.NewStringValue("abc"), decimal.NullDecimal{}, true},
		{"bool", structpb.NewBoolValue(true), decimal.NullDecimal{}, true},
		{"NaN", structpb.NewNumberValue(math.NaN()), decimal.NullDecimal{}, true},
		{"+Inf", structpb.NewNumberValue(math.Inf(1)), decimal.NullDecimal{}, true},
		{"-Inf", structpb.NewNumberValue(math.Inf(-1)), decimal.NullDecimal{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &structpb.Struct{Fields: map[string]*structpb.Value{FieldAmount: tt.value}}
			got, err := amountField(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Valid, got.Valid)
			if tt.want.Valid {
				assert.True(t, tt.want.Decimal.Equal(got.Decimal))
			}
		})
	}

	_, err := amountField(&structpb.Struct{})
	assert.NoError(t, err)
}

func TestGrpcServer_NonFiniteAmountIsInvalidArgument(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		req := &structpb.Struct{Fields: map[string]*structpb.Value{
			FieldAccountID:       structpb.NewNumberValue(1),
			FieldOperationTypeID: structpb.NewNumberValue(4),
			FieldAmount:          structpb.NewNumberValue(v),
		}}
		_, err := client.PerformTransaction(ctx, req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	}

	// 伺服器仍可服務
	_, err := client.CreateAccount(ctx, mustStruct(t, map[string]any{FieldDocumentNumber: "after-nan"}))
	assert.NoError(t, err)
}

func TestRecoveryInterceptor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	interceptor := RecoveryInterceptor(logger)
	info := &grpc.UnaryServerInfo{FullMethod: "/" + ServiceName + "/PerformTransaction"}

	resp, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))

	resp, err = interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
