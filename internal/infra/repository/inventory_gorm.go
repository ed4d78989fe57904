package repository

import (
	"context"

	"innledger/internal/domain/model"
	repo "innledger/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫が足りるときだけ加算（減算）する。
// 条件付きUPDATEなので同じ行への同時更新は行ロックで直列化される。
func (r *InventoryGormRepository) AdjustQuantity(ctx context.Context, goodID int64, delta int64) (int64, error) {
	var g model.Good
	res := r.db.WithContext(ctx).
		Model(&g).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("id = ? AND quantity + ? >= 0", goodID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))

	if res.Error != nil {
		return 0, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		//存在しないのか在庫不足なのかを切り分ける
		var n int64
		if err := r.db.WithContext(ctx).Model(&model.Good{}).Where("id = ?", goodID).Count(&n).Error; err != nil {
			return 0, mapError(err)
		}
		if n == 0 {
			return 0, repo.ErrNotFound
		}
		return 0, repo.ErrInsufficientStock
	}
	return g.Quantity, nil
}

// 0未満は0に丸める（売却の取り消し用）
func (r *InventoryGormRepository) AdjustQuantityClamped(ctx context.Context, goodID int64, delta int64) (int64, int64, error) {
	var applied, quantity int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//行ロックして現在値を取得
		var g model.Good
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&g, goodID).Error; err != nil {
			return mapError(err)
		}

		next := g.Quantity + delta
		if next < 0 {
			next = 0
		}

		res := tx.Model(&model.Good{}).Where("id = ?", goodID).Update("quantity", next)
		if res.Error != nil {
			return mapError(res.Error)
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		applied = next - g.Quantity
		quantity = next
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return applied, quantity, nil
}
