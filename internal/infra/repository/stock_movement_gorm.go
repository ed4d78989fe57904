package repository

import (
	"context"

	"innledger/internal/domain/model"

	"gorm.io/gorm"
)

type StockMovementGormRepository struct {
	db *gorm.DB
}

func NewStockMovementGormRepository(db *gorm.DB) *StockMovementGormRepository {
	return &StockMovementGormRepository{db: db}
}

func (r *StockMovementGormRepository) CreateBulk(ctx context.Context, movements []model.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&movements).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// 新しい順
func (r *StockMovementGormRepository) ListByGoodID(ctx context.Context, goodID int64, limit int) ([]model.StockMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var items []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("good_id = ?", goodID).
		Order("id desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.StockMovement{}, err
	}
	return items, nil
}
