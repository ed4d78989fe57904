package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	// Hunterが宿から買う（在庫が減る）
	TransactionKindPurchase TransactionKind = "purchase"
	// Merchantが宿に売る（在庫が増える）
	TransactionKindSell TransactionKind = "sell"
)

// 取引。HunterIDとMerchantIDはKindに応じてどちらか一方だけ入る。
// Itemsの数量は、この取引が存在する間ずっと在庫に反映済み。
type Transaction struct {
	ID         int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind       TransactionKind   `gorm:"type:varchar(10);not null;index" json:"type"`
	HunterID   *int64            `gorm:"index" json:"hunter_id"`
	MerchantID *int64            `gorm:"index" json:"merchant_id"`
	Items      []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"goods"`
	Date       time.Time         `gorm:"not null;index" json:"date"`
	TotalValue decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"total_value"`
	CreatedAt  time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 明細の合計を再計算する
func (t Transaction) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range t.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
