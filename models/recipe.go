package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Recipe struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      uint            `gorm:"not null;index"`
	User        *User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text"`
	PrepTime    int             `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Link        string          `gorm:"size:255"`
	Categories  []Category      `gorm:"many2many:recipe_categories;constraint:OnDelete:CASCADE"`
	Ingredients []Ingredient    `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
