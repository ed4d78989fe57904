package model

import "time"

// 在庫が動いた理由
type MovementReason string

const (
	MovementReasonPurchase        MovementReason = "purchase"
	MovementReasonSell            MovementReason = "sell"
	MovementReasonReversePurchase MovementReason = "reverse_purchase"
	MovementReasonReverseSell     MovementReason = "reverse_sell"
	MovementReasonManual          MovementReason = "manual"
)

// 在庫調整の履歴。
// Requestedは要求した増減、Appliedは実際に反映した増減（0丸めのときだけ差が出る）。
type StockMovement struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	GoodID        int64          `gorm:"not null;index" json:"good_id"`
	TransactionID *int64         `gorm:"index" json:"transaction_id"`
	Reason        MovementReason `gorm:"type:varchar(30);not null" json:"reason"`
	Requested     int64          `gorm:"not null" json:"requested"`
	Applied       int64          `gorm:"not null" json:"applied"`
	QuantityAfter int64          `gorm:"not null" json:"quantity_after"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (m StockMovement) Clamped() bool {
	return m.Requested != m.Applied
}
