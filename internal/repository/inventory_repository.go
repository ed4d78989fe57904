package repository

import (
	"context"

	"innledger/internal/domain/model"
)

// 在庫数の変更はすべてここを通す。
type InventoryRepository interface {
	// deltaを加算して新しい数量を返す。0未満になるならErrInsufficientStockで何もしない。
	AdjustQuantity(ctx context.Context, goodID int64, delta int64) (int64, error)

	// deltaを加算し、0未満は0に丸める。実際に反映した増減と新しい数量を返す。
	AdjustQuantityClamped(ctx context.Context, goodID int64, delta int64) (applied int64, quantity int64, err error)
}

// 在庫調整履歴
type StockMovementRepository interface {
	CreateBulk(ctx context.Context, movements []model.StockMovement) error
	ListByGoodID(ctx context.Context, goodID int64, limit int) ([]model.StockMovement, error)
}
