package controllers

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
)

const APIDocsPath = "/apidocs.json"

// NewAPIDocsService serves the OpenAPI document generated from the route
// metadata of wss.
func NewAPIDocsService(wss []*restful.WebService) *restful.WebService {
	return restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices: wss,
		APIPath:     APIDocsPath,
		PostBuildSwaggerObjectHandler: func(swo *spec.Swagger) {
			swo.Info = &spec.Info{
				InfoProps: spec.InfoProps{
					Title:       "Receita API",
					Description: "Recipes, categories and ingredients, scoped to the authenticated user.",
					Version:     "1.0.0",
				},
			}
			swo.SecurityDefinitions = spec.SecurityDefinitions{
				"token": spec.APIKeyAuth("Authorization", "header"),
			}
		},
	})
}
