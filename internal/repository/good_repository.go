package repository

import (
	"context"

	"innledger/internal/domain/model"
)

// 一覧検索
type GoodListQuery struct {
	Name     string
	Material string
}

// 在庫品の保存・取得。数量の増減はInventoryRepositoryで行う。
type GoodRepository interface {
	Create(ctx context.Context, g model.Good) (model.Good, error)
	FindByID(ctx context.Context, id int64) (model.Good, error)
	FindByName(ctx context.Context, name string) (model.Good, error)
	List(ctx context.Context, q GoodListQuery) ([]model.Good, error)

	// Quantity以外の項目を更新
	Update(ctx context.Context, g model.Good) error
	Delete(ctx context.Context, id int64) error
}
