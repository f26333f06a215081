package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-api/models"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[uint]*models.User

func (f fakeUsers) GetUser(_ context.Context, id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, "receita-api")
	user := &models.User{ID: 7, Email: "cook@example.com"}

	token, err := tm.GenerateToken(user)
	require.NoError(t, err)

	claims, err := tm.ParseAndValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "cook@example.com", claims.Email)
	assert.Equal(t, "receita-api", claims.Issuer)
}

func TestParseAndValidateTokenFailures(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, "receita-api")
	user := &models.User{ID: 7}

	t.Run("Malformed", func(t *testing.T) {
		_, err := tm.ParseAndValidateToken("not-a-token")
		assert.EqualError(t, err, "malformed token")
	})

	t.Run("Expired", func(t *testing.T) {
		expired := NewTokenManager("secret", -time.Minute, "receita-api")
		token, err := expired.GenerateToken(user)
		require.NoError(t, err)

		_, err = tm.ParseAndValidateToken(token)
		assert.EqualError(t, err, "token is either expired or not active yet")
	})

	t.Run("Wrong key", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Hour, "receita-api")
		token, err := other.GenerateToken(user)
		require.NoError(t, err)

		_, err = tm.ParseAndValidateToken(token)
		assert.EqualError(t, err, "invalid token signature")
	})

	t.Run("Unexpected signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &CustomClaims{UserID: 7})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tm.ParseAndValidateToken(signed)
		assert.Error(t, err)
	})
}

func TestTokenFromHeader(t *testing.T) {
	token, err := TokenFromHeader("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	token, err = TokenFromHeader("Token abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = TokenFromHeader("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = TokenFromHeader("Basic abc")
	assert.Error(t, err)

	_, err = TokenFromHeader("Bearer")
	assert.Error(t, err)
}

func newFilterContainer(a *Authenticator) *restful.Container {
	ws := new(restful.WebService)
	ws.Path("/private").Produces(restful.MIME_JSON)
	ws.Route(ws.GET("").Filter(AuthFilter(a)).To(func(req *restful.Request, resp *restful.Response) {
		id, ok := UserID(req)
		_ = resp.WriteAsJson(map[string]any{"user_id": id, "ok": ok})
	}))

	c := restful.NewContainer()
	c.Add(ws)
	return c
}

func TestAuthFilter(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, "receita-api")
	users := fakeUsers{
		1: {ID: 1, IsActive: true},
		2: {ID: 2, IsActive: false},
	}
	container := newFilterContainer(NewAuthenticator(tm, users))

	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		container.ServeHTTP(w, req)
		return w
	}

	t.Run("Valid token", func(t *testing.T) {
		token, err := tm.GenerateToken(users[1])
		require.NoError(t, err)

		w := do("Bearer " + token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":1,"ok":true}`, w.Body.String())
	})

	t.Run("Missing header", func(t *testing.T) {
		w := do("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	})

	t.Run("Inactive user", func(t *testing.T) {
		token, err := tm.GenerateToken(users[2])
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, do("Bearer "+token).Code)
	})

	t.Run("Deleted user", func(t *testing.T) {
		token, err := tm.GenerateToken(&models.User{ID: 99})
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, do("Token "+token).Code)
	})

	t.Run("Garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("Bearer garbage").Code)
	})
}
