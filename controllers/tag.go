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

// TagController serves one kind of tag (categories or ingredients) under
// its own path. Tags are only created through recipes.
type TagController[T any, P interface {
	*T
	Base() *models.Tag
}] struct {
	path          string
	docTag        string
	tagService    services.TagService[T]
	authenticator *auth.Authenticator
	log           *zap.Logger
}

func NewCategoryController(svc services.TagService[models.Category], authenticator *auth.Authenticator, log *zap.Logger) *TagController[models.Category, *models.Category] {
	return &TagController[models.Category, *models.Category]{
		path: "/categorias", docTag: "categorias", tagService: svc, authenticator: authenticator, log: log,
	}
}

func NewIngredientController(svc services.TagService[models.Ingredient], authenticator *auth.Authenticator, log *zap.Logger) *TagController[models.Ingredient, *models.Ingredient] {
	return &TagController[models.Ingredient, *models.Ingredient]{
		path: "/ingredientes", docTag: "ingredientes", tagService: svc, authenticator: authenticator, log: log,
	}
}

func (ctl *TagController[T, P]) RegisterRoutes(ws *restful.WebService) {
	ws.Path(ctl.path).Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Filter(auth.AuthFilter(ctl.authenticator))
	tags := []string{ctl.docTag}
	idParam := ws.PathParameter("tag-id", "Identifier of the tag").DataType("integer")

	ws.Route(ws.GET("").To(ctl.listHandler).
		Doc("List the caller's tags ordered by name, descending").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]TagResponse{}).
		Returns(http.StatusOK, "OK", []TagResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}))

	ws.Route(ws.PUT("/{tag-id}").To(ctl.updateHandler(services.FullUpdate)).
		Doc("Rename a tag").
		Param(idParam).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.TagUpdateInput{}).
		Returns(http.StatusOK, "Tag updated", TagResponse{}).
		Returns(http.StatusBadRequest, "Invalid input", ErrorResponse{}).
		Returns(http.StatusNotFound, "Tag not found", ErrorResponse{}))

	ws.Route(ws.PATCH("/{tag-id}").To(ctl.updateHandler(services.PartialUpdate)).
		Doc("Rename a tag").
		Param(idParam).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.TagUpdateInput{}).
		Returns(http.StatusOK, "Tag updated", TagResponse{}).
		Returns(http.StatusBadRequest, "Invalid input", ErrorResponse{}).
		Returns(http.StatusNotFound, "Tag not found", ErrorResponse{}))

	ws.Route(ws.DELETE("/{tag-id}").To(ctl.deleteHandler).
		Doc("Delete a tag; recipes using it are kept").
		Param(idParam).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusNoContent, "Tag deleted", nil).
		Returns(http.StatusNotFound, "Tag not found", ErrorResponse{}))
}

func (ctl *TagController[T, P]) toResponse(tag *T) TagResponse {
	base := P(tag).Base()
	return TagResponse{ID: base.ID, Name: base.Name}
}

func (ctl *TagController[T, P]) listHandler(request *restful.Request, response *restful.Response) {
	userID, ok := requestingUserID(request, response)
	if !ok {
		return
	}

	items, err := ctl.tagService.List(request.Request.Context(), userID)
	if err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, mapTags[T, P](items), restful.MIME_JSON)
}

func (ctl *TagController[T, P]) updateHandler(mode services.UpdateMode) restful.RouteFunction {
	return func(request *restful.Request, response *restful.Response) {
		userID, ok := requestingUserID(request, response)
		if !ok {
			return
		}
		tagID, ok := pathID(request, response, "tag-id")
		if !ok {
			return
		}

		input := new(services.TagUpdateInput)
		if !readEntity(request, response, input) {
			return
		}

		tag, err := ctl.tagService.Update(request.Request.Context(), userID, tagID, input, mode)
		if err != nil {
			handleServiceError(ctl.log, response, err)
			return
		}
		_ = response.WriteHeaderAndJson(http.StatusOK, ctl.toResponse(tag), restful.MIME_JSON)
	}
}

func (ctl *TagController[T, P]) deleteHandler(request *restful.Request, response *restful.Response) {
	userID, ok := requestingUserID(request, response)
	if !ok {
		return
	}
	tagID, ok := pathID(request, response, "tag-id")
	if !ok {
		return
	}

	if err := ctl.tagService.Delete(request.Request.Context(), userID, tagID); err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}
	response.WriteHeader(http.StatusNoContent)
}
