package repositories

import (
	"context"

	"recipe-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeRepository interface defines Recipe-related database operations.
// Reads and deletes are always scoped to the owner.
type RecipeRepository interface {
	ListByOwner(ctx context.Context, userID uint) ([]models.Recipe, error)
	FindByOwner(ctx context.Context, userID, id uint) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	// Update writes only the given columns of an existing recipe.
	Update(ctx context.Context, recipe *models.Recipe, columns ...string) error
	ReplaceCategories(ctx context.Context, recipe *models.Recipe, categories []models.Category) error
	ReplaceIngredients(ctx context.Context, recipe *models.Recipe, ingredients []models.Ingredient) error
	Delete(ctx context.Context, userID, id uint) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new RecipeRepository instance
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func (r *recipeRepository) withTags(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Categories", byID).
		Preload("Ingredients", byID)
}

func (r *recipeRepository) ListByOwner(ctx context.Context, userID uint) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.withTags(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, translate(err)
	}
	return recipes, nil
}

func (r *recipeRepository) FindByOwner(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.withTags(ctx).Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error; err != nil {
		return nil, translate(err)
	}
	return &recipe, nil
}

// Create inserts the recipe row only; tags are linked separately.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(recipe).
		Select(append(columns, "updated_at")).
		Updates(recipe).Error
	if err != nil {
		return translate(err)
	}
	return nil
}

func (r *recipeRepository) ReplaceCategories(ctx context.Context, recipe *models.Recipe, categories []models.Category) error {
	assoc := r.db.WithContext(ctx).Model(recipe).Association("Categories")
	if len(categories) == 0 {
		return wrapAssoc(assoc.Clear())
	}
	return wrapAssoc(assoc.Replace(categories))
}

func (r *recipeRepository) ReplaceIngredients(ctx context.Context, recipe *models.Recipe, ingredients []models.Ingredient) error {
	assoc := r.db.WithContext(ctx).Model(recipe).Association("Ingredients")
	if len(ingredients) == 0 {
		return wrapAssoc(assoc.Clear())
	}
	return wrapAssoc(assoc.Replace(ingredients))
}

func (r *recipeRepository) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error; err != nil {
			return translate(err)
		}
		// Selecting the many2many fields removes their join rows only.
		if err := tx.Select("Categories", "Ingredients").Delete(&recipe).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}

func wrapAssoc(err error) error {
	if err != nil {
		return translate(err)
	}
	return nil
}
