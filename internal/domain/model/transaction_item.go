package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 取引明細。名前と単価は解決した時点のスナップショット。
type TransactionItem struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	TransactionID int64           `gorm:"not null;index" json:"-"`
	GoodID        int64           `gorm:"not null;index" json:"good_id"`
	GoodName      string          `gorm:"type:varchar(100);not null" json:"name"`
	UnitValue     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_value"`
	Quantity      int64           `gorm:"not null" json:"quantity"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"-"`
}

func (it TransactionItem) Subtotal() decimal.Decimal {
	return it.UnitValue.Mul(decimal.NewFromInt(it.Quantity))
}
