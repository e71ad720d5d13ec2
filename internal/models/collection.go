package models

import (
	"time"
)

// OwnedCard is a card the user confirmed from a scan (or entered manually).
type OwnedCard struct {
	ID      uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID  uint      `json:"-" gorm:"not null;index"`
	User    User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Name    string    `json:"name" gorm:"not null"`
	SetName string    `json:"set" gorm:"index"`
	Number  string    `json:"number"`
	Rarity  string    `json:"rarity" gorm:"index"`
	Price   float64   `json:"price"`
	Image   *string   `json:"image"`
	Finish  Finish    `json:"finish" gorm:"default:'Normal';index"`
	AddedAt time.Time `json:"added_at" gorm:"autoCreateTime"`
}

// ConfirmCardRequest is bound from the /confirm form.
type ConfirmCardRequest struct {
	Name    string   `form:"name" binding:"required"`
	SetName string   `form:"set_name" binding:"required"`
	Number  string   `form:"number" binding:"required"`
	Rarity  string   `form:"rarity" binding:"required"`
	Price   *float64 `form:"price" binding:"required"`
	Image   string   `form:"image"`
	Finish  string   `form:"finish"`
}

// CollectionFilter narrows the collection listing. Nil or empty fields are ignored.
type CollectionFilter struct {
	SetName  string   `form:"set_name"`
	Rarity   string   `form:"rarity"`
	Finish   string   `form:"finish"`
	MinPrice *float64 `form:"min_price"`
	MaxPrice *float64 `form:"max_price"`
}

// CollectionCardSummary is the short form used by stats.
type CollectionCardSummary struct {
	Name   string  `json:"name"`
	Set    string  `json:"set"`
	Price  float64 `json:"price"`
	Finish Finish  `json:"finish"`
}

type CollectionStats struct {
	Count         int                     `json:"count"`
	AvgPrice      float64                 `json:"avg_price"`
	MaxPrice      float64                 `json:"max_price"`
	MinPrice      float64                 `json:"min_price"`
	MostExpensive *CollectionCardSummary  `json:"most_expensive"`
	Top5          []CollectionCardSummary `json:"top5"`
	// ByFinish always lists every known finish, plus any custom ones in use.
	ByFinish  map[Finish]int `json:"by_finish"`
	FoilCount int            `json:"foil_count"`
}

type CollectionValue struct {
	TotalValue float64 `json:"total_value"`
}
