package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/participation-api/internal/api/handler/v1/request"
	"github.com/classtrack/participation-api/internal/api/handler/v1/response"
	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/service"
)

type ParticipationTypeService interface {
	CreateType(ctx context.Context, pt domain.ParticipationType) (domain.ParticipationType, error)
	GetType(ctx context.Context, id uint) (domain.ParticipationType, error)
	ListTypes(ctx context.Context, ownerID uint) ([]domain.ParticipationType, error)
	UpdateType(ctx context.Context, pt domain.ParticipationType, actorID uint) (domain.ParticipationType, error)
	DeleteType(ctx context.Context, id, actorID uint) error
}

type ParticipationTypeHandler struct {
	svc ParticipationTypeService
}

func NewParticipationTypeHandler(svc ParticipationTypeService) *ParticipationTypeHandler {
	return &ParticipationTypeHandler{
		svc: svc,
	}
}

// HandleListTypes godoc
// @Summary      List the caller's participation types
// @Tags         participation-types
// @Produce      json
// @Success      200  {array}   domain.ParticipationType
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /participation-types [get]
// @Security BearerAuth
func (h *ParticipationTypeHandler) HandleListTypes(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	types, err := h.svc.ListTypes(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListTypes -> h.svc.ListTypes -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, types)
}

// HandleGetType godoc
// @Summary      Get a participation type
// @Tags         participation-types
// @Produce      json
// @Param        typeID  path      integer  true  "Type ID"
// @Success      200     {object}  domain.ParticipationType
// @Failure      400     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /participation-types/{typeID} [get]
// @Security BearerAuth
func (h *ParticipationTypeHandler) HandleGetType(ctx *gin.Context) {
	typeID, respErr := parseIDParam(ctx, "typeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	pt, err := h.svc.GetType(ctx.Request.Context(), typeID)
	if err != nil {
		if errors.Is(err, service.ErrTypeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("participation type", "id", typeID))
			return
		}

		err = fmt.Errorf("v1.HandleGetType -> h.svc.GetType -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, pt)
}

// HandleCreateType godoc
// @Summary      Create a participation type
// @Tags         participation-types
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateParticipationTypeRequest  true  "Type details"
// @Success      201    {object}  domain.ParticipationType
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /participation-types [post]
// @Security BearerAuth
func (h *ParticipationTypeHandler) HandleCreateType(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateParticipationTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	pt, err := h.svc.CreateType(ctx.Request.Context(), domain.ParticipationType{
		OwnerUserID:   userID,
		Name:          req.Name,
		DefaultPoints: req.DefaultPoints,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPointValue) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleCreateType -> h.svc.CreateType -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, pt)
}

// HandleUpdateType godoc
// @Summary      Update a participation type
// @Tags         participation-types
// @Accept       json
// @Produce      json
// @Param        typeID  path      integer                                 true  "Type ID"
// @Param        input   body      request.UpdateParticipationTypeRequest  true  "New values"
// @Success      200     {object}  domain.ParticipationType
// @Failure      400     {object}  response.Err
// @Failure      403     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /participation-types/{typeID} [put]
// @Security BearerAuth
func (h *ParticipationTypeHandler) HandleUpdateType(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	typeID, respErr := parseIDParam(ctx, "typeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateParticipationTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	pt, err := h.svc.UpdateType(ctx.Request.Context(), domain.ParticipationType{
		ID:            typeID,
		Name:          req.Name,
		DefaultPoints: req.DefaultPoints,
	}, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTypeNotFound):
			response.RenderErr(ctx, response.ErrNotFound("participation type", "id", typeID))
		case errors.Is(err, service.ErrNotOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrInvalidPointValue):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateType -> h.svc.UpdateType -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, pt)
}

// HandleDeleteType godoc
// @Summary      Delete a participation type
// @Description  Refused while any point event still references the type.
// @Tags         participation-types
// @Produce      json
// @Param        typeID  path  integer  true  "Type ID"
// @Success      204
// @Failure      403     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      409     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /participation-types/{typeID} [delete]
// @Security BearerAuth
func (h *ParticipationTypeHandler) HandleDeleteType(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	typeID, respErr := parseIDParam(ctx, "typeID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	err := h.svc.DeleteType(ctx.Request.Context(), typeID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTypeNotFound):
			response.RenderErr(ctx, response.ErrNotFound("participation type", "id", typeID))
		case errors.Is(err, service.ErrNotOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrTypeInUse):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleDeleteType -> h.svc.DeleteType -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
