package gormdb

import (
	"context"

	"github.com/JoeShih716/go-txn-ledger/pkg/database"
)

// AutoMigrate 建立或更新 accounts / operation_types / transactions 資料表
func AutoMigrate(ctx context.Context, client *database.Client) error {
	return client.DB().WithContext(ctx).AutoMigrate(Models()...)
}
