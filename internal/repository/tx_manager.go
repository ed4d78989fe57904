package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Goods() GoodRepository
	Inventory() InventoryRepository
	StockMovements() StockMovementRepository
	Hunters() HunterRepository
	Merchants() MerchantRepository
	Transactions() TransactionRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがエラーを返したらそれまでの変更はすべて取り消される。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
