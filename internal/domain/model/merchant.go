package model

import "time"

type MerchantType string

const (
	MerchantTypeBlacksmith MerchantType = "blacksmith"
	MerchantTypeAlchemist  MerchantType = "alchemist"
	MerchantTypeTrader     MerchantType = "trader"
	MerchantTypeHerbalist  MerchantType = "herbalist"
)

// 売却側の取引相手（宿に品物を卸す商人）
type Merchant struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string       `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Age       int          `gorm:"not null" json:"age"`
	Location  Location     `gorm:"type:varchar(20);not null" json:"location"`
	Type      MerchantType `gorm:"type:varchar(20);not null" json:"type"`
	CreatedAt time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
