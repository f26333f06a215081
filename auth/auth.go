package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipe-api/models"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/golang-jwt/jwt/v4"
)

// UserIDAttribute is the request attribute AuthFilter stores the acting user id under.
const UserIDAttribute = "user_id"

var (
	ErrMissingToken = errors.New("authentication credentials were not provided")
	ErrInactiveUser = errors.New("user inactive or deleted")
)

// CustomClaims represents the custom claims included in every token.
type CustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens. Clients treat the token
// as an opaque string.
type TokenManager struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration, issuer string) *TokenManager {
	return &TokenManager{
		signingKey: []byte(secret),
		ttl:        ttl,
		issuer:     issuer,
		now:        time.Now,
	}
}

// GenerateToken creates a new JWT for the given user.
func (m *TokenManager) GenerateToken(user *models.User) (string, error) {
	now := m.now()
	claims := &CustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   fmt.Sprint(user.ID),
		},
	}

	// Create the token with the claims and sign it.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ParseAndValidateToken : used for gRPC and filters
func (m *TokenManager) ParseAndValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.signingKey, nil
	})

	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, errors.New("malformed token")
			case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
				return nil, errors.New("token is either expired or not active yet")
			case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				return nil, errors.New("invalid token signature")
			}
		}
		return nil, fmt.Errorf("couldn't handle this token: %w", err)
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid && claims.UserID != 0 {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// UserLookup loads the user a token refers to.
type UserLookup interface {
	GetUser(ctx context.Context, userID uint) (*models.User, error)
}

// Authenticator resolves a token to an active user id.
type Authenticator struct {
	tokens *TokenManager
	users  UserLookup
}

func NewAuthenticator(tokens *TokenManager, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

func (a *Authenticator) Tokens() *TokenManager { return a.tokens }

// Authenticate validates tokenString and checks the user still exists and
// is active.
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*CustomClaims, error) {
	claims, err := a.tokens.ParseAndValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetUser(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInactiveUser
	}
	return claims, nil
}

// TokenFromHeader extracts the token from "Bearer <token>" or the
// "Token <token>" form older clients send.
func TokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", errors.New("invalid authorization header format")
	}
	switch strings.ToLower(parts[0]) {
	case "bearer", "token":
		return parts[1], nil
	default:
		return "", errors.New("invalid authorization header format")
	}
}

// AuthFilter creates a go-restful FilterFunction for token authentication.
func AuthFilter(a *Authenticator) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		tokenString, err := TokenFromHeader(req.HeaderParameter("Authorization"))
		if err != nil {
			unauthorized(resp, err)
			return
		}

		claims, err := a.Authenticate(req.Request.Context(), tokenString)
		if err != nil {
			unauthorized(resp, err)
			return
		}

		// Store user information in request attributes for use by subsequent processing functions
		req.SetAttribute(UserIDAttribute, claims.UserID)

		// Continue handling the chain
		chain.ProcessFilter(req, resp)
	}
}

// UserID returns the id AuthFilter stored on req.
func UserID(req *restful.Request) (uint, bool) {
	id, ok := req.Attribute(UserIDAttribute).(uint)
	return id, ok && id != 0
}

func unauthorized(resp *restful.Response, err error) {
	resp.Header().Set("WWW-Authenticate", "Bearer")
	_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": err.Error()}, restful.MIME_JSON)
}
