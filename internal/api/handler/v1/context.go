package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/participation-api/internal/api/handler/v1/response"
	"github.com/classtrack/participation-api/internal/api/middleware"
)

// getUserIDFromContext reads the authenticated user id the JWT
// middleware stored. The core trusts this id: ownership was already
// verified by the identity collaborator before the request got here.
func getUserIDFromContext(ctx *gin.Context) (uint, *response.Err) {
	value, ok := ctx.Get(middleware.CtxKeyUserID)
	if !ok {
		return 0, response.ErrUnauthorized(errors.New("user not authenticated"))
	}

	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return 0, response.ErrUnauthorized(errors.New("invalid user id in context"))
	}

	return userID, nil
}

func parseIDParam(ctx *gin.Context, name string) (uint, *response.Err) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %v (%v)", name, raw))
	}

	return uint(id), nil
}
