package controllers

import (
	"net/http"

	"recipe-api/auth"
	"recipe-api/models"
	"recipe-api/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// TagResponse is how categories and ingredients are rendered, standalone
// and nested in recipes.
type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"nome"`
}

// RecipeSummary is the list representation of a recipe.
type RecipeSummary struct {
	ID          uint          `json:"id"`
	Name        string        `json:"nome"`
	PrepTime    int           `json:"tempo_preparo"`
	Price       string        `json:"preco"`
	Link        string        `json:"link"`
	Categories  []TagResponse `json:"categorias"`
	Ingredients []TagResponse `json:"ingredientes"`
}

// RecipeDetail adds the description to the summary fields.
type RecipeDetail struct {
	RecipeSummary
	Description string `json:"descricao"`
}

func mapTags[T any, P interface {
	*T
	Base() *models.Tag
}](tags []T) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for i := range tags {
		base := P(&tags[i]).Base()
		out = append(out, TagResponse{ID: base.ID, Name: base.Name})
	}
	return out
}

func mapRecipeSummary(recipe *models.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          recipe.ID,
		Name:        recipe.Name,
		PrepTime:    recipe.PrepTime,
		Price:       recipe.Price.StringFixed(2),
		Link:        recipe.Link,
		Categories:  mapTags[models.Category](recipe.Categories),
		Ingredients: mapTags[models.Ingredient](recipe.Ingredients),
	}
}

func mapRecipeDetail(recipe *models.Recipe) RecipeDetail {
	return RecipeDetail{
		RecipeSummary: mapRecipeSummary(recipe),
		Description:   recipe.Description,
	}
}

type RecipeController struct {
	recipeService services.RecipeService
	authenticator *auth.Authenticator
	log           *zap.Logger
}

func NewRecipeController(recipeService services.RecipeService, authenticator *auth.Authenticator, log *zap.Logger) *RecipeController {
	return &RecipeController{recipeService: recipeService, authenticator: authenticator, log: log}
}

// RegisterRoutes sets up /receita. Every route requires authentication and
// only ever sees the caller's recipes.
func (ctl *RecipeController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/receita").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Filter(auth.AuthFilter(ctl.authenticator))
	tags := []string{"receita"}
	idParam := ws.PathParameter("recipe-id", "Identifier of the recipe").DataType("integer")

	ws.Route(ws.GET("").To(ctl.listHandler).
		Doc("List the caller's recipes, newest first").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]RecipeSummary{}).
		Returns(http.StatusOK, "OK", []RecipeSummary{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}))

	ws.Route(ws.POST("").To(ctl.createHandler).
		Doc("Create a recipe; categories and ingredients are matched by name or created").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RecipeInput{}).
		Returns(http.StatusCreated, "Recipe created", RecipeDetail{}).
		Returns(http.StatusBadRequest, "Invalid input", ErrorResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}))

	ws.Route(ws.GET("/{recipe-id}").To(ctl.getHandler).
		Doc("Retrieve a recipe").
		Param(idParam).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(RecipeDetail{}).
		Returns(http.StatusOK, "OK", RecipeDetail{}).
		Returns(http.StatusNotFound, "Recipe not found", ErrorResponse{}))

	ws.Route(ws.PUT("/{recipe-id}").To(ctl.updateHandler(services.FullUpdate)).
		Doc("Replace a recipe; nome, tempo_preparo and preco are required").
		Param(idParam).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RecipeInput{}).
		Returns(http.StatusOK, "Recipe updated", RecipeDetail{}).
		Returns(http.StatusBadRequest, "Invalid input", ErrorResponse{}).
		Returns(http.StatusNotFound, "Recipe not found", ErrorResponse{}))

	ws.Route(ws.PATCH("/{recipe-id}").To(ctl.updateHandler(services.PartialUpdate)).
		Doc("Update the given fields of a recipe").
		Param(idParam).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RecipeInput{}).
		Returns(http.StatusOK, "Recipe updated", RecipeDetail{}).
		Returns(http.StatusBadRequest, "Invalid input", ErrorResponse{}).
		Returns(http.StatusNotFound, "Recipe not found", ErrorResponse{}))

	ws.Route(ws.DELETE("/{recipe-id}").To(ctl.deleteHandler).
		Doc("Delete a recipe").
		Param(idParam).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusNoContent, "Recipe deleted", nil).
		Returns(http.StatusNotFound, "Recipe not found", ErrorResponse{}))
}

func (ctl *RecipeController) listHandler(request *restful.Request, response *restful.Response) {
	userID, ok := requestingUserID(request, response)
	if !ok {
		return
	}

	recipes, err := ctl.recipeService.List(request.Request.Context(), userID)
	if err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}

	out := make([]RecipeSummary, 0, len(recipes))
	for i := range recipes {
		out = append(out, mapRecipeSummary(&recipes[i]))
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, out, restful.MIME_JSON)
}

func (ctl *RecipeController) createHandler(request *restful.Request, response *restful.Response) {
	userID, ok := requestingUserID(request, response)
	if !ok {
		return
	}

	input := new(services.RecipeInput)
	if !readEntity(request, response, input) {
		return
	}

	recipe, err := ctl.recipeService.Create(request.Request.Context(), userID, input)
	if err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, mapRecipeDetail(recipe), restful.MIME_JSON)
}

func (ctl *RecipeController) getHandler(request *restful.Request, response *restful.Response) {
	userID, ok := requestingUserID(request, response)
	if !ok {
		return
	}
	recipeID, ok := pathID(request, response, "recipe-id")
	if !ok {
		return
	}

	recipe, err := ctl.recipeService.Get(request.Request.Context(), userID, recipeID)
	if err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapRecipeDetail(recipe), restful.MIME_JSON)
}

func (ctl *RecipeController) updateHandler(mode services.UpdateMode) restful.RouteFunction {
	return func(request *restful.Request, response *restful.Response) {
		userID, ok := requestingUserID(request, response)
		if !ok {
			return
		}
		recipeID, ok := pathID(request, response, "recipe-id")
		if !ok {
			return
		}

		// A "user" key in the body has no field to land in and is dropped.
		input := new(services.RecipeInput)
		if !readEntity(request, response, input) {
			return
		}

		recipe, err := ctl.recipeService.Update(request.Request.Context(), userID, recipeID, input, mode)
		if err != nil {
			handleServiceError(ctl.log, response, err)
			return
		}
		_ = response.WriteHeaderAndJson(http.StatusOK, mapRecipeDetail(recipe), restful.MIME_JSON)
	}
}

func (ctl *RecipeController) deleteHandler(request *restful.Request, response *restful.Response) {
	userID, ok := requestingUserID(request, response)
	if !ok {
		return
	}
	recipeID, ok := pathID(request, response, "recipe-id")
	if !ok {
		return
	}

	if err := ctl.recipeService.Delete(request.Request.Context(), userID, recipeID); err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}
	response.WriteHeader(http.StatusNoContent)
}
