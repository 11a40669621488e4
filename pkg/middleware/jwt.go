package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prohmpiriya/venue-reservation/pkg/response"
)

const (
	// ContextKeyClaims holds the parsed *Claims
	ContextKeyClaims = "auth_claims"
	// ContextKeyUserID holds the subject of the token
	ContextKeyUserID = "user_id"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// JWTConfig holds JWT validation settings. Issuing tokens is another service's job.
type JWTConfig struct {
	Secret    string
	Issuer    string
	SkipPaths []string
}

// Claims are the token claims this service reads
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the token subject
func (c *Claims) UserID() string {
	return c.Subject
}

// ParseToken validates an HS256 token and returns its claims
func ParseToken(cfg *JWTConfig, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// JWTMiddleware rejects requests without a valid bearer token
func JWTMiddleware(cfg *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range cfg.SkipPaths {
			if matchPath(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		tokenString, err := bearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Authorization header with bearer token is required"))
			return
		}

		claims, err := ParseToken(cfg, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Invalid or expired token"))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWT lets anonymous requests through but still rejects a bad token
func OptionalJWT(cfg *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		tokenString, err := bearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Malformed authorization header"))
			return
		}
		claims, err := ParseToken(cfg, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Invalid or expired token"))
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole must run after JWTMiddleware
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Authentication required"))
			return
		}
		for _, role := range roles {
			if strings.EqualFold(claims.Role, role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Forbidden("Insufficient role for this operation"))
	}
}

// GetClaims returns the claims stored by JWTMiddleware or OptionalJWT
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// GetUserID returns the authenticated user id
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ContextKeyClaims, claims)
	c.Set(ContextKeyUserID, claims.Subject)
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}

func matchPath(path, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "*"))
	}
	return path == pattern
}
