package models

// Tag holds the columns shared by every user-scoped label. A tag belongs to
// exactly one user and its name is unique within that user's tags.
type Tag struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"not null;uniqueIndex:,composite:owner_name"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name   string `gorm:"size:255;not null;uniqueIndex:,composite:owner_name"`
}

// Base gives generic code access to the embedded Tag of a Category or Ingredient.
func (t *Tag) Base() *Tag { return t }

// Category classifies recipes ("Sobremesa", "Vegano").
type Category struct {
	Tag
}

// JoinTable names the many2many table linking recipes to categories and
// the column in it that references this tag.
func (Category) JoinTable() (table, column string) {
	return "recipe_categories", "category_id"
}

// Ingredient lists what goes into a recipe.
type Ingredient struct {
	Tag
}

func (Ingredient) JoinTable() (table, column string) {
	return "recipe_ingredients", "ingredient_id"
}
