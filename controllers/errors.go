package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"recipe-api/auth"
	"recipe-api/services"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every 4xx/5xx reply. Errors maps JSON field
// names to messages for validation failures.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeError(response *restful.Response, status int, message string) {
	_ = response.WriteHeaderAndJson(status, ErrorResponse{Message: message}, restful.MIME_JSON)
}

// handleServiceError translates service errors to HTTP responses.
func handleServiceError(log *zap.Logger, response *restful.Response, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		_ = response.WriteHeaderAndJson(http.StatusBadRequest,
			ErrorResponse{Message: "Invalid input.", Errors: verr.Fields}, restful.MIME_JSON)
	case errors.Is(err, services.ErrNotFound):
		writeError(response, http.StatusNotFound, "Not found.")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(response, http.StatusUnauthorized, err.Error())
	default:
		log.Error("Unhandled service error", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Internal server error")
	}
}

// readEntity decodes the JSON body into entity. An empty body leaves entity
// untouched.
func readEntity(request *restful.Request, response *restful.Response, entity any) bool {
	if err := request.ReadEntity(entity); err != nil && !errors.Is(err, io.EOF) {
		writeError(response, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// requestingUserID extracts the user ID set by the AuthFilter.
func requestingUserID(request *restful.Request, response *restful.Response) (uint, bool) {
	userID, ok := auth.UserID(request)
	if !ok {
		writeError(response, http.StatusUnauthorized, "Unauthorized: Cannot identify requesting user")
	}
	return userID, ok
}

// pathID parses a numeric path parameter. Anything else cannot name a
// resource, so it is a 404.
func pathID(request *restful.Request, response *restful.Response, name string) (uint, bool) {
	id, err := strconv.ParseUint(request.PathParameter(name), 10, 0)
	if err != nil || id == 0 {
		writeError(response, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return uint(id), true
}
