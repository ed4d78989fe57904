package model

import "time"

type Race string

const (
	RaceWitcher  Race = "Witcher"
	RaceKnight   Race = "Knight"
	RaceNoble    Race = "Noble"
	RaceBandit   Race = "Bandit"
	RaceVillager Race = "Villager"
)

type Location string

const (
	LocationBrugge  Location = "Brugge"
	LocationMaribor Location = "Maribor"
	LocationCintra  Location = "Cintra"
	LocationVerden  Location = "Verden"
)

// 購入側の取引相手（客）
type Hunter struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Age       int       `gorm:"not null" json:"age"`
	Race      Race      `gorm:"type:varchar(20);not null" json:"race"`
	Location  Location  `gorm:"type:varchar(20);not null" json:"location"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
