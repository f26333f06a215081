package repositories

import (
	"context"
	"errors"

	"recipe-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository stores the user-scoped labels attached to recipes. Every
// method takes the owner id; rows of other users are reported as ErrNotFound.
type TagRepository[T any] interface {
	ListByOwner(ctx context.Context, userID uint) ([]T, error)
	FindByOwner(ctx context.Context, userID, id uint) (*T, error)
	// GetOrCreate returns the owner's tag with the given name, inserting it
	// when absent. Concurrent callers converge on a single row.
	GetOrCreate(ctx context.Context, userID uint, name string) (*T, error)
	Rename(ctx context.Context, userID, id uint, name string) (*T, error)
	// Delete removes the tag and its recipe links. Recipes are kept.
	Delete(ctx context.Context, userID, id uint) error
}

// Taggable is satisfied by pointers to the concrete tag models.
type Taggable[T any] interface {
	*T
	Base() *models.Tag
	JoinTable() (table, column string)
}

type tagRepository[T any, P Taggable[T]] struct {
	db *gorm.DB
}

// NewCategoryRepository creates a TagRepository over the categories table
func NewCategoryRepository(db *gorm.DB) TagRepository[models.Category] {
	return &tagRepository[models.Category, *models.Category]{db: db}
}

// NewIngredientRepository creates a TagRepository over the ingredients table
func NewIngredientRepository(db *gorm.DB) TagRepository[models.Ingredient] {
	return &tagRepository[models.Ingredient, *models.Ingredient]{db: db}
}

func (r *tagRepository[T, P]) ListByOwner(ctx context.Context, userID uint) ([]T, error) {
	var tags []T
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name DESC").
		Find(&tags).Error
	if err != nil {
		return nil, translate(err)
	}
	return tags, nil
}

func (r *tagRepository[T, P]) FindByOwner(ctx context.Context, userID, id uint) (*T, error) {
	var tag T
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&tag).Error; err != nil {
		return nil, translate(err)
	}
	return &tag, nil
}

func (r *tagRepository[T, P]) findByName(ctx context.Context, userID uint, name string, locking ...clause.Expression) (*T, error) {
	var tag T
	err := r.db.WithContext(ctx).
		Clauses(locking...).
		Where("user_id = ? AND name = ?", userID, name).
		First(&tag).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tag, nil
}

func (r *tagRepository[T, P]) GetOrCreate(ctx context.Context, userID uint, name string) (*T, error) {
	tag, err := r.findByName(ctx, userID, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var created T
	base := P(&created).Base()
	base.UserID = userID
	base.Name = name

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(&created).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, translate(err)
	}

	// Either our insert or a concurrent one produced the row. A plain read
	// could still use the snapshot taken by the first lookup (MySQL
	// REPEATABLE READ) and miss a row committed since; a locking read sees
	// the latest committed version. SQLite drops the clause.
	return r.findByName(ctx, userID, name, clause.Locking{Strength: clause.LockingStrengthShare})
}

func (r *tagRepository[T, P]) Rename(ctx context.Context, userID, id uint, name string) (*T, error) {
	tag, err := r.FindByOwner(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(P(tag)).Update("name", name).Error; err != nil {
		return nil, translate(err)
	}
	P(tag).Base().Name = name
	return tag, nil
}

func (r *tagRepository[T, P]) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag T
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&tag).Error; err != nil {
			return translate(err)
		}

		table, column := P(&tag).JoinTable()
		if err := tx.Exec("DELETE FROM "+table+" WHERE "+column+" = ?", id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(P(&tag)).Error; err != nil {
			return translate(err)
		}
		return nil
	})
}
