package controllers

import (
	"recipe-api/auth"
	"recipe-api/filters"
	"recipe-api/models"
	"recipe-api/services"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	DB            *gorm.DB
	Authenticator *auth.Authenticator
	Users         services.UserService
	Recipes       services.RecipeService
	Categories    services.TagService[models.Category]
	Ingredients   services.TagService[models.Ingredient]
}

// NewContainer registers every web service and the container-wide filters.
// metrics may be nil.
func NewContainer(svc Services, log *zap.Logger, metrics *filters.Metrics) *restful.Container {
	container := restful.NewContainer()

	container.Filter(filters.RequestID())
	container.Filter(filters.Logger(log))
	if metrics != nil {
		container.Filter(metrics.Filter)
	}
	container.Filter(filters.Recovery(log))

	routes := []interface{ RegisterRoutes(*restful.WebService) }{
		NewUserController(svc.Users, svc.Authenticator, log),
		NewRecipeController(svc.Recipes, svc.Authenticator, log),
		NewCategoryController(svc.Categories, svc.Authenticator, log),
		NewIngredientController(svc.Ingredients, svc.Authenticator, log),
		NewHealthController(svc.DB, log),
	}

	var wss []*restful.WebService
	for _, r := range routes {
		ws := new(restful.WebService)
		r.RegisterRoutes(ws)
		container.Add(ws)
		wss = append(wss, ws)
	}
	container.Add(NewAPIDocsService(wss))

	if metrics != nil {
		container.Handle("/metrics", metrics.Handler())
	}
	return container
}
