package controllers

import (
	"errors"
	"net/http"

	"recipe-api/auth"
	"recipe-api/models"
	"recipe-api/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// Define the Service interface that the Controller depends on
type UserController struct {
	userService   services.UserService
	authenticator *auth.Authenticator
	log           *zap.Logger
}

// Constructor, used to create a UserController instance
func NewUserController(userService services.UserService, authenticator *auth.Authenticator, log *zap.Logger) *UserController {
	return &UserController{userService: userService, authenticator: authenticator, log: log}
}

// UserResponse Defines the response structure of user information.
// The password is never echoed.
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type TokenRequest struct {
	Email    string `json:"email" description:"Email for login"`
	Password string `json:"password" description:"Password for login"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// --- Helper to map model to response ---
func mapModelToUserResponse(user *models.User) UserResponse {
	return UserResponse{Email: user.Email, Name: user.Name}
}

// --- go-restful Route Definitions ---

// RegisterRoutes sets up the user-related routes for a go-restful WebService.
func (ctl *UserController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/user").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"user"}

	// --- Public routes ---
	ws.Route(ws.POST("").To(ctl.createUserHandler).
		Doc("Register a new user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.CreateUserInput{}).
		Returns(http.StatusCreated, "User created", UserResponse{}).
		Returns(http.StatusBadRequest, "Invalid input or email already registered", ErrorResponse{}))

	ws.Route(ws.POST("/token").To(ctl.createTokenHandler).
		Doc("Create an auth token for a user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(TokenRequest{}).
		Returns(http.StatusOK, "Token issued", TokenResponse{}).
		Returns(http.StatusBadRequest, "Missing fields or invalid credentials", ErrorResponse{}))

	// --- Routes requiring Authentication (Apply AuthFilter) ---
	ws.Route(ws.GET("/me").Filter(auth.AuthFilter(ctl.authenticator)).To(ctl.getMeHandler).
		Doc("Retrieve the authenticated user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(UserResponse{}).
		Returns(http.StatusOK, "OK", UserResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}))

	ws.Route(ws.PATCH("/me").Filter(auth.AuthFilter(ctl.authenticator)).To(ctl.updateMeHandler).
		Doc("Update the authenticated user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.UpdateProfileInput{}).
		Writes(UserResponse{}).
		Returns(http.StatusOK, "User updated", UserResponse{}).
		Returns(http.StatusBadRequest, "Invalid input", ErrorResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}))
}

// --- go-restful Handler Functions ---

// createUserHandler (Handles POST /user/)
func (ctl *UserController) createUserHandler(request *restful.Request, response *restful.Response) {
	input := new(services.CreateUserInput)
	if !readEntity(request, response, input) {
		return
	}

	user, err := ctl.userService.CreateUser(request.Request.Context(), input)
	if err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToUserResponse(user), restful.MIME_JSON)
}

// createTokenHandler (Handles POST /user/token/). Bad credentials are a
// 400 here, as for any other invalid input.
func (ctl *UserController) createTokenHandler(request *restful.Request, response *restful.Response) {
	creds := new(TokenRequest)
	if !readEntity(request, response, creds) {
		return
	}

	missing := map[string]string{}
	if creds.Email == "" {
		missing["email"] = "This field is required."
	}
	if creds.Password == "" {
		missing["password"] = "This field is required."
	}
	if len(missing) > 0 {
		handleServiceError(ctl.log, response, &services.ValidationError{Fields: missing})
		return
	}

	user, err := ctl.userService.Authenticate(request.Request.Context(), creds.Email, creds.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		handleServiceError(ctl.log, response, services.NewValidationError("non_field_errors", "Unable to authenticate with provided credentials."))
		return
	}
	if err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}

	token, err := ctl.authenticator.Tokens().GenerateToken(user)
	if err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, TokenResponse{Token: token}, restful.MIME_JSON)
}

// getMeHandler (Handles GET /user/me/)
func (ctl *UserController) getMeHandler(request *restful.Request, response *restful.Response) {
	userID, ok := requestingUserID(request, response)
	if !ok {
		return
	}

	user, err := ctl.userService.GetUser(request.Request.Context(), userID)
	if err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(user), restful.MIME_JSON)
}

// updateMeHandler (Handles PATCH /user/me/)
func (ctl *UserController) updateMeHandler(request *restful.Request, response *restful.Response) {
	userID, ok := requestingUserID(request, response)
	if !ok {
		return
	}

	input := new(services.UpdateProfileInput)
	if !readEntity(request, response, input) {
		return
	}

	user, err := ctl.userService.UpdateProfile(request.Request.Context(), userID, input)
	if err != nil {
		handleServiceError(ctl.log, response, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(user), restful.MIME_JSON)
}
