package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prohmpiriya/venue-reservation/internal/domain"
	"github.com/prohmpiriya/venue-reservation/pkg/logger"
	"github.com/prohmpiriya/venue-reservation/pkg/middleware"
	"github.com/prohmpiriya/venue-reservation/pkg/response"
	"go.uber.org/zap"
)

// identityFrom builds the caller's identity from the token claims. It is
// the zero Identity for anonymous requests; an unknown role is left empty
// and every role check rejects it.
func identityFrom(c *gin.Context) domain.Identity {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return domain.Identity{}
	}
	role, _ := domain.ParseRole(claims.Role)
	return domain.Identity{
		UserID:   claims.UserID(),
		Username: claims.Username,
		Role:     role,
	}
}

// optionalIdentity is nil for anonymous requests
func optionalIdentity(c *gin.Context) *domain.Identity {
	if _, ok := middleware.GetClaims(c); !ok {
		return nil
	}
	identity := identityFrom(c)
	return &identity
}

// handleError converts domain errors to HTTP responses
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, response.ValidationError(err.Error()))
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, response.Unauthorized(err.Error()))
	case domain.IsAccessDeniedError(err):
		c.JSON(http.StatusForbidden, response.Forbidden(err.Error()))
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, response.NotFound(err.Error()))
	case domain.IsConflictError(err):
		c.JSON(http.StatusConflict, response.Conflict(err.Error()))
	default:
		logger.Get().WithContext(c.Request.Context()).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, response.InternalError("Internal server error"))
	}
}

// bindError reports a request that could not be bound or failed its tags
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request: "+err.Error()))
		return
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	c.JSON(http.StatusBadRequest, response.ValidationError(strings.Join(msgs, "; ")))
}
