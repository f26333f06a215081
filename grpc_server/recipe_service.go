package grpcserver

import (
	"context"
	"errors"

	"recipe-api/interceptors"
	"recipe-api/services"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	RecipeServiceName       = "receita.RecipeService"
	RecipeListRecipesMethod = "/receita.RecipeService/ListRecipes"
	RecipeGetRecipeMethod   = "/receita.RecipeService/GetRecipe"
)

// RecipeServiceServer is the server API for receita.RecipeService. Every
// call acts on behalf of the user the auth interceptor put in the context.
type RecipeServiceServer interface {
	ListRecipes(context.Context, *ListRecipesRequest) (*ListRecipesResponse, error)
	GetRecipe(context.Context, *GetRecipeRequest) (*Recipe, error)
}

var RecipeServiceDesc = grpc.ServiceDesc{
	ServiceName: RecipeServiceName,
	HandlerType: (*RecipeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRecipes", Handler: unary(RecipeListRecipesMethod, RecipeServiceServer.ListRecipes)},
		{MethodName: "GetRecipe", Handler: unary(RecipeGetRecipeMethod, RecipeServiceServer.GetRecipe)},
	},
	Streams: []grpc.StreamDesc{},
}

type recipeServiceServer struct {
	recipes services.RecipeService
}

func NewRecipeServiceServer(rs services.RecipeService) RecipeServiceServer {
	return &recipeServiceServer{recipes: rs}
}

func (s *recipeServiceServer) ListRecipes(ctx context.Context, _ *ListRecipesRequest) (*ListRecipesResponse, error) {
	userID, ok := interceptors.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user not found in context")
	}

	recipes, err := s.recipes.List(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}

	out := &ListRecipesResponse{Recipes: make([]*Recipe, 0, len(recipes))}
	for i := range recipes {
		out.Recipes = append(out.Recipes, modelToRecipe(&recipes[i]))
	}
	return out, nil
}

func (s *recipeServiceServer) GetRecipe(ctx context.Context, req *GetRecipeRequest) (*Recipe, error) {
	userID, ok := interceptors.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "user not found in context")
	}
	if req.ID == 0 {
		return nil, status.Error(codes.InvalidArgument, "recipe id is required")
	}

	recipe, err := s.recipes.Get(ctx, userID, uint(req.ID))
	if err != nil {
		return nil, toStatus(err)
	}
	return modelToRecipe(recipe), nil
}

// toStatus maps service errors onto gRPC status codes.
func toStatus(err error) error {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		return status.Error(codes.NotFound, "Not found.")
	case errors.Is(err, services.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	default:
		return status.Error(codes.Internal, "Internal server error")
	}
}

// RecipeClient is the client API for receita.RecipeService.
type RecipeClient struct {
	cc grpc.ClientConnInterface
}

func NewRecipeClient(cc grpc.ClientConnInterface) *RecipeClient {
	return &RecipeClient{cc: cc}
}

func (c *RecipeClient) ListRecipes(ctx context.Context, in *ListRecipesRequest, opts ...grpc.CallOption) (*ListRecipesResponse, error) {
	out := new(ListRecipesResponse)
	if err := invoke(ctx, c.cc, RecipeListRecipesMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RecipeClient) GetRecipe(ctx context.Context, in *GetRecipeRequest, opts ...grpc.CallOption) (*Recipe, error) {
	out := new(Recipe)
	if err := invoke(ctx, c.cc, RecipeGetRecipeMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
