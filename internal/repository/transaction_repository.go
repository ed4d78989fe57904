package repository

import (
	"context"
	"time"

	"innledger/internal/domain/model"
)

// 取引の絞り込み条件。HunterIDとMerchantIDを両方指定したときはOR。
type TransactionFilter struct {
	HunterID   *int64
	MerchantID *int64
	From       *time.Time
	To         *time.Time
	Kind       *model.TransactionKind
}

// 取引と明細の永続化。明細は取引と一緒に保存・置換・削除する。
type TransactionRepository interface {
	Create(ctx context.Context, t model.Transaction) (model.Transaction, error)
	FindByID(ctx context.Context, id int64) (model.Transaction, error)
	List(ctx context.Context, f TransactionFilter) ([]model.Transaction, error)

	// 明細ごと置き換える
	Update(ctx context.Context, t model.Transaction) error
	Delete(ctx context.Context, id int64) error
}
