package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	domainErrors "github.com/polkiloo/autotransit/internal/domain/errors"
	"github.com/polkiloo/autotransit/internal/domain/model"
	"github.com/polkiloo/autotransit/internal/server/http/dto"
	"github.com/polkiloo/autotransit/internal/server/http/middleware"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

var errBadRequest = errors.New("malformed request")

// CurrentActor extracts the authenticated actor from context.
func CurrentActor(c *gin.Context) model.Actor {
	val, ok := c.Get(middleware.ActorContextKey)
	if !ok {
		return model.Actor{}
	}
	actor, _ := val.(model.Actor)
	return actor
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := cast.ToInt64E(c.Param(name))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := cast.ToIntE(raw)
	if err != nil || limit <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit"})
		return 0, false
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: errBadRequest.Error()})
		return false
	}
	return true
}

// writeError maps domain error kinds onto HTTP statuses. Unknown errors are
// attached to the context for the request logger and hidden from the caller.
func writeError(c *gin.Context, err error) {
	status, retryable := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: err.Error(), Retryable: retryable})
}

func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, false
	case errors.Is(err, domainErrors.ErrValidation):
		return http.StatusBadRequest, false
	case errors.Is(err, domainErrors.ErrForbidden):
		return http.StatusForbidden, false
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound, false
	case errors.Is(err, domainErrors.ErrConcurrency):
		return http.StatusConflict, true
	case errors.Is(err, domainErrors.ErrConflict):
		return http.StatusConflict, false
	default:
		return http.StatusInternalServerError, false
	}
}
