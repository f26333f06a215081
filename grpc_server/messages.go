package grpcserver

import (
	"recipe-api/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

type ValidateTokenRequest struct {
	Token string `json:"token"`
}

type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID uint64 `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

type ListRecipesRequest struct{}

type ListRecipesResponse struct {
	Recipes []*Recipe `json:"recipes"`
}

type GetRecipeRequest struct {
	ID uint64 `json:"id"`
}

type Tag struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type Recipe struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PrepTime    int    `json:"prep_time"`
	Price       string `json:"price"`
	Link        string `json:"link"`
	Categories  []*Tag `json:"categories"`
	Ingredients []*Tag `json:"ingredients"`
}

type DiscoverRequest struct {
	Name string `json:"name"`
}

type DiscoverResponse struct {
	Found   bool   `json:"found"`
	Address string `json:"address,omitempty"`
	Error   string `json:"error,omitempty"`
}

// modelToRecipe converts a stored recipe into its wire form.
func modelToRecipe(r *models.Recipe) *Recipe {
	if r == nil {
		return nil
	}

	out := &Recipe{
		ID:          uint64(r.ID),
		Name:        r.Name,
		Description: r.Description,
		PrepTime:    r.PrepTime,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Categories:  make([]*Tag, 0, len(r.Categories)),
		Ingredients: make([]*Tag, 0, len(r.Ingredients)),
	}
	for _, c := range r.Categories {
		out.Categories = append(out.Categories, &Tag{ID: uint64(c.ID), Name: c.Name})
	}
	for _, i := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, &Tag{ID: uint64(i.ID), Name: i.Name})
	}
	return out
}
