package handler

import (
	"escrow-settlement/internal/adapter/http/dto"
	"escrow-settlement/internal/adapter/http/middleware"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/pkg/apperror"
	"escrow-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actor returns the authenticated caller or writes a 401.
func actor(c *gin.Context) (ports.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return ports.Actor{}, false
	}
	return a, true
}

// idParam parses a UUID path parameter or writes a 400.
func idParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation(name+" must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds and sanitizes a request body or writes a 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	dto.SanitizeStruct(req)
	return true
}

// transition writes the result of a settlement operation.
func transition(c *gin.Context, res *ports.TransitionResult, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
