package services

import (
	"context"
	"errors"

	"recipe-api/models"
	"recipe-api/repositories"
)

// TagInput names a tag inside a recipe payload. Tags are matched by name,
// any id sent by the client is ignored.
type TagInput struct {
	Name string `json:"nome" validate:"required,max=255"`
}

type TagUpdateInput struct {
	Name *string `json:"nome" validate:"omitnil,min=1,max=255"`
}

// TagService manages a user's categories or ingredients directly. Tags are
// created implicitly through recipes, so there is no Create.
type TagService[T any] interface {
	List(ctx context.Context, userID uint) ([]T, error)
	Update(ctx context.Context, userID, tagID uint, input *TagUpdateInput, mode UpdateMode) (*T, error)
	Delete(ctx context.Context, userID, tagID uint) error
}

type tagService[T any] struct {
	repo repositories.TagRepository[T]
}

// NewTagService creates a TagService over repo
func NewTagService[T any](repo repositories.TagRepository[T]) TagService[T] {
	return &tagService[T]{repo: repo}
}

// NewCategoryService and NewIngredientService wire the two tag kinds.
func NewCategoryService(repo repositories.TagRepository[models.Category]) TagService[models.Category] {
	return NewTagService(repo)
}

func NewIngredientService(repo repositories.TagRepository[models.Ingredient]) TagService[models.Ingredient] {
	return NewTagService(repo)
}

func (s *tagService[T]) List(ctx context.Context, userID uint) ([]T, error) {
	tags, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, translate("list tags", err)
	}
	return tags, nil
}

func (s *tagService[T]) Update(ctx context.Context, userID, tagID uint, input *TagUpdateInput, mode UpdateMode) (*T, error) {
	if mode == FullUpdate && input.Name == nil {
		return nil, NewValidationError("nome", requiredMessage)
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if input.Name == nil {
		tag, err := s.repo.FindByOwner(ctx, userID, tagID)
		if err != nil {
			return nil, translate("get tag", err)
		}
		return tag, nil
	}

	tag, err := s.repo.Rename(ctx, userID, tagID, *input.Name)
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, NewValidationError("nome", "A tag with this name already exists.")
	}
	if err != nil {
		return nil, translate("rename tag", err)
	}
	return tag, nil
}

func (s *tagService[T]) Delete(ctx context.Context, userID, tagID uint) error {
	if err := s.repo.Delete(ctx, userID, tagID); err != nil {
		return translate("delete tag", err)
	}
	return nil
}
