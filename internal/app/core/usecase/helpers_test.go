package usecase_test

import (
	"io"
	"log/slog"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultCatalog() map[domain.HandlerName]domain.OperationType {
	out := make(map[domain.HandlerName]domain.OperationType)
	for _, op := range domain.DefaultOperationTypes() {
		out[op.Handler] = op
	}
	return out
}
