package gormdb

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-txn-ledger/pkg/database"
)

// CatalogStore 交易類型目錄 (operation_types 表)
type CatalogStore struct {
	client *database.Client
}

func NewCatalogStore(client *database.Client) *CatalogStore {
	return &CatalogStore{
		client: client,
	}
}

// LoadAllActive 載入所有啟用中的交易類型
func (s *CatalogStore) LoadAllActive(ctx context.Context) ([]domain.OperationType, error) {
	var rows []sqlOperationType
	if err := s.client.DB().WithContext(ctx).Where("is_active = ?", true).Order("operation_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	ops := make([]domain.OperationType, 0, len(rows))
	for i := range rows {
		ops = append(ops, rows[i].toDomain())
	}
	return ops, nil
}

// FindByID 查詢交易類型
func (s *CatalogStore) FindByID(ctx context.Context, id int64) (*domain.OperationType, error) {
	var row sqlOperationType
	err := s.client.DB().WithContext(ctx).Where("operation_id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOperationTypeNotFound
		}
		return nil, err
	}
	op := row.toDomain()
	return &op, nil
}

// Save 新增 (ID 為 0) 或以 ID upsert 交易類型
//
// upsert 使用 ON DUPLICATE KEY UPDATE (mysql) / ON CONFLICT (postgres)，保留原本的 created_at
func (s *CatalogStore) Save(ctx context.Context, op domain.OperationType) (*domain.OperationType, error) {
	row := newSQLOperationType(op)
	db := s.client.DB().WithContext(ctx)
	if row.ID != 0 {
		db = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "operation_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "transaction_type", "handler", "updated_at", "is_active"}),
		})
	}
	if err := db.Create(row).Error; err != nil {
		return nil, err
	}
	saved := row.toDomain()
	return &saved, nil
}

// DeleteByID 刪除交易類型
func (s *CatalogStore) DeleteByID(ctx context.Context, id int64) error {
	res := s.client.DB().WithContext(ctx).Where("operation_id = ?", id).Delete(&sqlOperationType{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOperationTypeNotFound
	}
	return nil
}

var _ usecase.CatalogStore = (*CatalogStore)(nil)
