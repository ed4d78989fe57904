package repository

import (
	"context"

	repo "innledger/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	goods          repo.GoodRepository
	inventory      repo.InventoryRepository
	stockMovements repo.StockMovementRepository
	hunters        repo.HunterRepository
	merchants      repo.MerchantRepository
	transactions   repo.TransactionRepository
}

func (r *txReposGorm) Goods() repo.GoodRepository                   { return r.goods }
func (r *txReposGorm) Inventory() repo.InventoryRepository           { return r.inventory }
func (r *txReposGorm) StockMovements() repo.StockMovementRepository { return r.stockMovements }
func (r *txReposGorm) Hunters() repo.HunterRepository               { return r.hunters }
func (r *txReposGorm) Merchants() repo.MerchantRepository           { return r.merchants }
func (r *txReposGorm) Transactions() repo.TransactionRepository     { return r.transactions }

func newTxReposGorm(db *gorm.DB) *txReposGorm {
	return &txReposGorm{
		goods:          NewGoodGormRepository(db),
		inventory:      NewInventoryGormRepository(db),
		stockMovements: NewStockMovementGormRepository(db),
		hunters:        NewHunterGormRepository(db),
		merchants:      NewMerchantGormRepository(db),
		transactions:   NewTransactionGormRepository(db),
	}
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(newTxReposGorm(tx))
	})
}

// Tx外で使うrepo一式
func (tm *TxManagerGorm) Repos() repo.TxRepos {
	return newTxReposGorm(tm.db)
}
