package interceptors

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipe-api/auth"
	"recipe-api/models"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type userTable map[uint]*models.User

func (u userTable) GetUser(_ context.Context, id uint) (*models.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return user, nil
}

func newAuthenticator(t *testing.T) (*auth.Authenticator, string, string) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour, "receita-api")
	active := &models.User{ID: 1, Email: "active@example.com", IsActive: true}
	inactive := &models.User{ID: 2, Email: "inactive@example.com", IsActive: false}

	activeToken, err := tokens.GenerateToken(active)
	require.NoError(t, err)
	inactiveToken, err := tokens.GenerateToken(inactive)
	require.NoError(t, err)

	return auth.NewAuthenticator(tokens, userTable{1: active, 2: inactive}), activeToken, inactiveToken
}

func withAuthorization(value string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", value))
}

func TestAuthInterceptor(t *testing.T) {
	a, activeToken, inactiveToken := newAuthenticator(t)
	interceptor := AuthInterceptor(a, "/receita.AuthService/Login")
	private := &grpc.UnaryServerInfo{FullMethod: "/receita.RecipeService/ListRecipes"}

	var seen context.Context
	handler := func(ctx context.Context, req any) (any, error) {
		seen = ctx
		return "ok", nil
	}

	t.Run("public method skips auth", func(t *testing.T) {
		resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/receita.AuthService/Login"}, handler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("valid token injects user", func(t *testing.T) {
		for _, scheme := range []string{"Bearer ", "Token "} {
			_, err := interceptor(withAuthorization(scheme+activeToken), nil, private, handler)
			require.NoError(t, err)
			id, ok := GetUserIDFromContext(seen)
			assert.True(t, ok)
			assert.Equal(t, uint(1), id)
			email, ok := GetEmailFromContext(seen)
			assert.True(t, ok)
			assert.Equal(t, "active@example.com", email)
		}
	})

	cases := map[string]context.Context{
		"no metadata":   context.Background(),
		"no header":     metadata.NewIncomingContext(context.Background(), metadata.Pairs("other", "x")),
		"bad scheme":    withAuthorization("Basic " + activeToken),
		"garbage token": withAuthorization("Bearer garbage"),
		"inactive user": withAuthorization("Bearer " + inactiveToken),
	}
	for name, ctx := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := interceptor(ctx, nil, private, handler)
			assert.Equal(t, codes.Unauthenticated, status.Code(err))
		})
	}
}

func TestGetUserIDFromContextMissing(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestInterceptorLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := InterceptorLogger(zap.New(core))

	l.Log(context.Background(), logging.LevelInfo, "finished call", "grpc.code", "OK", "dangling")
	l.Log(context.Background(), logging.LevelError, "failed call", 42, "ignored", "grpc.code", "Internal")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, map[string]any{"grpc.code": "OK"}, entries[0].ContextMap())
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, map[string]any{"grpc.code": "Internal"}, entries[1].ContextMap())
}

func TestRequestIDFields(t *testing.T) {
	assert.Nil(t, requestIDFields(context.Background()))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "abc"))
	assert.Equal(t, logging.Fields{"request_id", "abc"}, requestIDFields(ctx))
}

func TestZapLoggingInterceptorLogsCalls(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	interceptor := ZapLoggingInterceptor(zap.New(core))

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/receita.RecipeService/GetRecipe"},
		func(ctx context.Context, req any) (any, error) {
			return nil, status.Error(codes.NotFound, "Not found.")
		})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, 1, logs.FilterMessage("finished call").Len())
}

func TestRecoveryInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	interceptor := RecoveryInterceptor(zap.New(core))

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x/y"},
		func(ctx context.Context, req any) (any, error) {
			panic("boom")
		})
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, 1, logs.FilterMessage("Recovered from panic").Len())
}
