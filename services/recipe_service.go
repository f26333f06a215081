package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"recipe-api/models"
	"recipe-api/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UpdateMode selects between replace (PUT) and merge (PATCH) semantics.
type UpdateMode int

const (
	FullUpdate UpdateMode = iota
	PartialUpdate
)

var maxPrice = decimal.NewFromInt(1000)

// RecipeInput carries the writable recipe fields. Nil means "not provided".
// A nil tag list leaves the relation alone; an empty one clears it.
// The owner is not part of the input.
type RecipeInput struct {
	Name        *string          `json:"nome" validate:"omitnil,min=1,max=255"`
	Description *string          `json:"descricao"`
	PrepTime    *int             `json:"tempo_preparo" validate:"omitnil,min=0"`
	Price       *decimal.Decimal `json:"preco"`
	Link        *string          `json:"link" validate:"omitnil,max=255"`
	Categories  []TagInput       `json:"categorias" validate:"omitempty,dive"`
	Ingredients []TagInput       `json:"ingredientes" validate:"omitempty,dive"`

	// nulls lists the keys the client sent as an explicit JSON null.
	nulls []string
}

// nonNullable are the input keys whose columns cannot hold NULL.
var nonNullable = []string{"nome", "descricao", "tempo_preparo", "preco", "link", "categorias", "ingredientes"}

// UnmarshalJSON decodes the body and remembers explicit nulls, which the
// plain decoder cannot tell apart from omitted keys.
func (in *RecipeInput) UnmarshalJSON(data []byte) error {
	type plain RecipeInput
	if err := json.Unmarshal(data, (*plain)(in)); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	in.nulls = nil
	for _, key := range nonNullable {
		if v, ok := raw[key]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			in.nulls = append(in.nulls, key)
		}
	}
	return nil
}

func (in *RecipeInput) validate(requireAll bool) error {
	verr := &ValidationError{}
	for _, key := range in.nulls {
		verr.add(key, nullMessage)
	}
	if requireAll {
		if in.Name == nil {
			verr.add("nome", requiredMessage)
		}
		if in.PrepTime == nil {
			verr.add("tempo_preparo", requiredMessage)
		}
		if in.Price == nil {
			verr.add("preco", requiredMessage)
		}
	}

	if err := validateStruct(in); err != nil {
		var fieldErr *ValidationError
		if !errors.As(err, &fieldErr) {
			return err
		}
		for k, v := range fieldErr.Fields {
			verr.add(k, v)
		}
	}

	if in.Price != nil {
		switch {
		case !in.Price.Equal(in.Price.Round(2)):
			verr.add("preco", "Ensure that there are no more than 2 decimal places.")
		case in.Price.Abs().GreaterThanOrEqual(maxPrice):
			verr.add("preco", "Ensure that there are no more than 3 digits before the decimal point.")
		}
	}
	return verr.orNil()
}

// apply copies the provided scalar fields onto recipe and reports the
// columns that changed.
func (in *RecipeInput) apply(recipe *models.Recipe) []string {
	var columns []string
	if in.Name != nil {
		recipe.Name = *in.Name
		columns = append(columns, "name")
	}
	if in.Description != nil {
		recipe.Description = *in.Description
		columns = append(columns, "description")
	}
	if in.PrepTime != nil {
		recipe.PrepTime = *in.PrepTime
		columns = append(columns, "prep_time")
	}
	if in.Price != nil {
		recipe.Price = in.Price.Round(2)
		columns = append(columns, "price")
	}
	if in.Link != nil {
		recipe.Link = *in.Link
		columns = append(columns, "link")
	}
	return columns
}

// RecipeService implements the recipe aggregate. Every method acts on
// behalf of userID and never sees recipes owned by anyone else.
type RecipeService interface {
	List(ctx context.Context, userID uint) ([]models.Recipe, error)
	Get(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	Create(ctx context.Context, userID uint, input *RecipeInput) (*models.Recipe, error)
	Update(ctx context.Context, userID, recipeID uint, input *RecipeInput, mode UpdateMode) (*models.Recipe, error)
	Delete(ctx context.Context, userID, recipeID uint) error
}

type recipeService struct {
	db    *gorm.DB
	repos repositories.Manager
}

var _ RecipeService = (*recipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, repos repositories.Manager) RecipeService {
	return &recipeService{db: db, repos: repos}
}

func (s *recipeService) List(ctx context.Context, userID uint) ([]models.Recipe, error) {
	recipes, err := s.repos.Recipes(s.db).ListByOwner(ctx, userID)
	if err != nil {
		return nil, translate("list recipes", err)
	}
	return recipes, nil
}

func (s *recipeService) Get(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.repos.Recipes(s.db).FindByOwner(ctx, userID, recipeID)
	if err != nil {
		return nil, translate("get recipe", err)
	}
	return recipe, nil
}

// Create stores the recipe and links its tags in one transaction. Tags are
// resolved or created under userID.
func (s *recipeService) Create(ctx context.Context, userID uint, input *RecipeInput) (*models.Recipe, error) {
	if err := input.validate(true); err != nil {
		return nil, err
	}

	var created *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipes := s.repos.Recipes(tx)

		recipe := &models.Recipe{UserID: userID}
		input.apply(recipe)
		if err := recipes.Create(ctx, recipe); err != nil {
			return err
		}
		if err := s.reconcileTags(ctx, tx, recipe, input); err != nil {
			return err
		}

		var err error
		created, err = recipes.FindByOwner(ctx, userID, recipe.ID)
		return err
	})
	if err != nil {
		return nil, translate("create recipe", err)
	}
	return created, nil
}

// Update applies input to the caller's recipe. The owner never changes.
func (s *recipeService) Update(ctx context.Context, userID, recipeID uint, input *RecipeInput, mode UpdateMode) (*models.Recipe, error) {
	if err := input.validate(mode == FullUpdate); err != nil {
		return nil, err
	}

	var updated *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipes := s.repos.Recipes(tx)

		recipe, err := recipes.FindByOwner(ctx, userID, recipeID)
		if err != nil {
			return err
		}
		if err := recipes.Update(ctx, recipe, input.apply(recipe)...); err != nil {
			return err
		}
		if err := s.reconcileTags(ctx, tx, recipe, input); err != nil {
			return err
		}

		updated, err = recipes.FindByOwner(ctx, userID, recipeID)
		return err
	})
	if err != nil {
		return nil, translate("update recipe", err)
	}
	return updated, nil
}

func (s *recipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	if err := s.repos.Recipes(s.db).Delete(ctx, userID, recipeID); err != nil {
		return translate("delete recipe", err)
	}
	return nil
}

// reconcileTags replaces each provided tag list with tags resolved under
// the recipe owner's id. Omitted lists are left alone.
func (s *recipeService) reconcileTags(ctx context.Context, tx *gorm.DB, recipe *models.Recipe, input *RecipeInput) error {
	recipes := s.repos.Recipes(tx)

	if input.Categories != nil {
		categories, err := getOrCreateAll(ctx, s.repos.Categories(tx), recipe.UserID, input.Categories)
		if err != nil {
			return err
		}
		if err := recipes.ReplaceCategories(ctx, recipe, categories); err != nil {
			return err
		}
	}

	if input.Ingredients != nil {
		ingredients, err := getOrCreateAll(ctx, s.repos.Ingredients(tx), recipe.UserID, input.Ingredients)
		if err != nil {
			return err
		}
		if err := recipes.ReplaceIngredients(ctx, recipe, ingredients); err != nil {
			return err
		}
	}
	return nil
}

// getOrCreateAll resolves names in order, collapsing repeats to one tag.
func getOrCreateAll[T any](ctx context.Context, repo repositories.TagRepository[T], userID uint, inputs []TagInput) ([]T, error) {
	seen := make(map[string]bool, len(inputs))
	tags := make([]T, 0, len(inputs))
	for _, in := range inputs {
		if seen[in.Name] {
			continue
		}
		seen[in.Name] = true

		tag, err := repo.GetOrCreate(ctx, userID, in.Name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}
