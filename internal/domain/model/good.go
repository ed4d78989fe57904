package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 素材
type Material string

const (
	MaterialIron    Material = "Iron"
	MaterialSteel   Material = "Steel"
	MaterialSilver  Material = "Silver"
	MaterialLeather Material = "Leather"
	MaterialHerbs   Material = "Herbs"
)

// 在庫数を作成時に指定しなかったときの値
const DefaultGoodQuantity int64 = 20

// 宿の在庫品。
// Quantityは在庫調整（InventoryRepository）経由でしか変えない。
type Good struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description string          `gorm:"type:varchar(100)" json:"description"`
	Material    Material        `gorm:"type:varchar(20);not null" json:"material"`
	Weight      float64         `gorm:"not null" json:"weight"`
	Value       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`
	Quantity    int64           `gorm:"not null;default:0;check:chk_goods_quantity,quantity >= 0" json:"quantity"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
