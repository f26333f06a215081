package repositories

import (
	"recipe-api/models"

	"gorm.io/gorm"
)

// Manager hands out repositories bound to a given handle, so a service can
// run several of them inside one transaction.
type Manager interface {
	Users(db *gorm.DB) UserRepository
	Categories(db *gorm.DB) TagRepository[models.Category]
	Ingredients(db *gorm.DB) TagRepository[models.Ingredient]
	Recipes(db *gorm.DB) RecipeRepository
}

type manager struct{}

// NewManager returns the gorm-backed Manager
func NewManager() Manager {
	return manager{}
}

func (manager) Users(db *gorm.DB) UserRepository { return NewUserRepository(db) }

func (manager) Categories(db *gorm.DB) TagRepository[models.Category] {
	return NewCategoryRepository(db)
}

func (manager) Ingredients(db *gorm.DB) TagRepository[models.Ingredient] {
	return NewIngredientRepository(db)
}

func (manager) Recipes(db *gorm.DB) RecipeRepository { return NewRecipeRepository(db) }
