package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/participation-api/internal/api/handler/v1/request"
	"github.com/classtrack/participation-api/internal/api/handler/v1/response"
	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/service"
)

type ScoringService interface {
	AssignPoints(ctx context.Context, studentID, issuerID, typeID uint, value int, reason string) (domain.PointEvent, error)
	UpdatePoint(ctx context.Context, id, typeID uint, value int, reason string) (domain.PointEvent, error)
	DeletePoint(ctx context.Context, id uint) error
	RecomputeSummary(ctx context.Context, studentID uint) error
	GetSummary(ctx context.Context, studentID uint) (domain.StudentSummary, error)
	ListPoints(ctx context.Context, studentID uint, limit int) ([]domain.PointEvent, error)
	ListCoursePoints(ctx context.Context, courseID uint, limit int) ([]domain.PointEvent, error)
	GetHistory(ctx context.Context, studentID uint) ([]domain.HistoryEntry, error)
}

type PointHandler struct {
	svc ScoringService
}

func NewPointHandler(svc ScoringService) *PointHandler {
	return &PointHandler{
		svc: svc,
	}
}

// HandleAssignPoints godoc
// @Summary      Assign participation points to a student
// @Tags         points
// @Accept       json
// @Produce      json
// @Param        input  body      request.AssignPointsRequest  true  "Point event"
// @Success      201    {object}  domain.PointEvent
// @Failure      400    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /points [post]
// @Security BearerAuth
func (h *PointHandler) HandleAssignPoints(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.AssignPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.AssignPoints(ctx.Request.Context(), req.StudentID, userID, req.ParticipationTypeID, req.Value, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPointValue) || errors.Is(err, service.ErrReasonTooLong):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrStudentNotFound):
			response.RenderErr(ctx, response.ErrNotFound("student", "id", req.StudentID))
		case errors.Is(err, service.ErrTypeNotFound):
			response.RenderErr(ctx, response.ErrNotFound("participation type", "id", req.ParticipationTypeID))
		case errors.Is(err, service.ErrSummaryStale):
			// Ledger write went through; the grade catches up on the
			// next recompute.
			ctx.JSON(http.StatusCreated, event)
		default:
			err = fmt.Errorf("v1.HandleAssignPoints -> h.svc.AssignPoints -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleUpdatePoint godoc
// @Summary      Update a point event
// @Tags         points
// @Accept       json
// @Produce      json
// @Param        pointID  path      integer                     true  "Point event ID"
// @Param        input    body      request.UpdatePointRequest  true  "New values"
// @Success      200      {object}  domain.PointEvent
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /points/{pointID} [put]
// @Security BearerAuth
func (h *PointHandler) HandleUpdatePoint(ctx *gin.Context) {
	pointID, respErr := parseIDParam(ctx, "pointID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdatePointRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.UpdatePoint(ctx.Request.Context(), pointID, req.ParticipationTypeID, req.Value, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPointValue) || errors.Is(err, service.ErrReasonTooLong):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrPointNotFound):
			response.RenderErr(ctx, response.ErrNotFound("point event", "id", pointID))
		case errors.Is(err, service.ErrTypeNotFound):
			response.RenderErr(ctx, response.ErrNotFound("participation type", "id", req.ParticipationTypeID))
		case errors.Is(err, service.ErrSummaryStale):
			ctx.JSON(http.StatusOK, event)
		default:
			err = fmt.Errorf("v1.HandleUpdatePoint -> h.svc.UpdatePoint -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleDeletePoint godoc
// @Summary      Delete a point event
// @Tags         points
// @Produce      json
// @Param        pointID  path  integer  true  "Point event ID"
// @Success      204
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /points/{pointID} [delete]
// @Security BearerAuth
func (h *PointHandler) HandleDeletePoint(ctx *gin.Context) {
	pointID, respErr := parseIDParam(ctx, "pointID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	err := h.svc.DeletePoint(ctx.Request.Context(), pointID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPointNotFound):
			response.RenderErr(ctx, response.ErrNotFound("point event", "id", pointID))
		case errors.Is(err, service.ErrSummaryStale):
			ctx.Status(http.StatusNoContent)
		default:
			err = fmt.Errorf("v1.HandleDeletePoint -> h.svc.DeletePoint -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListPoints godoc
// @Summary      List a student's point events, newest first
// @Tags         points
// @Produce      json
// @Param        studentID  path   integer  true   "Student ID"
// @Param        limit      query  integer  false  "Max events to return"
// @Success      200        {array}   domain.PointEvent
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /students/{studentID}/points [get]
// @Security BearerAuth
func (h *PointHandler) HandleListPoints(ctx *gin.Context) {
	studentID, respErr := parseIDParam(ctx, "studentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid limit (%v)", raw)))
			return
		}
		limit = parsed
	}

	events, err := h.svc.ListPoints(ctx.Request.Context(), studentID, limit)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("student", "id", studentID))
			return
		}

		err = fmt.Errorf("v1.HandleListPoints -> h.svc.ListPoints -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleListCoursePoints godoc
// @Summary      List a course's recent point events, newest first
// @Tags         points
// @Produce      json
// @Param        courseID  path   integer  true   "Course ID"
// @Param        limit     query  integer  false  "Max events to return"
// @Success      200       {array}   domain.PointEvent
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /courses/{courseID}/points [get]
// @Security BearerAuth
func (h *PointHandler) HandleListCoursePoints(ctx *gin.Context) {
	courseID, respErr := parseIDParam(ctx, "courseID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid limit (%v)", raw)))
			return
		}
		limit = parsed
	}

	events, err := h.svc.ListCoursePoints(ctx.Request.Context(), courseID, limit)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("course", "id", courseID))
			return
		}

		err = fmt.Errorf("v1.HandleListCoursePoints -> h.svc.ListCoursePoints -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetSummary godoc
// @Summary      Get a student's grade summary
// @Tags         points
// @Produce      json
// @Param        studentID  path      integer  true  "Student ID"
// @Success      200        {object}  domain.StudentSummary
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /students/{studentID}/summary [get]
// @Security BearerAuth
func (h *PointHandler) HandleGetSummary(ctx *gin.Context) {
	studentID, respErr := parseIDParam(ctx, "studentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	summary, err := h.svc.GetSummary(ctx.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrSummaryNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("summary", "studentID", studentID))
			return
		}

		err = fmt.Errorf("v1.HandleGetSummary -> h.svc.GetSummary -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// HandleRecomputeSummary godoc
// @Summary      Recompute a student's grade summary
// @Description  Rebuilds the summary from the ledger. Useful after a write reported a stale summary.
// @Tags         points
// @Produce      json
// @Param        studentID  path  integer  true  "Student ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /students/{studentID}/summary/recompute [post]
// @Security BearerAuth
func (h *PointHandler) HandleRecomputeSummary(ctx *gin.Context) {
	studentID, respErr := parseIDParam(ctx, "studentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.RecomputeSummary(ctx.Request.Context(), studentID); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("student", "id", studentID))
			return
		}

		err = fmt.Errorf("v1.HandleRecomputeSummary -> h.svc.RecomputeSummary -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetHistory godoc
// @Summary      Get a student's cumulative point history
// @Description  Chronological replay of the student's ledger; every step is graded against the course max as it stands today.
// @Tags         points
// @Produce      json
// @Param        studentID  path      integer  true  "Student ID"
// @Success      200        {array}   domain.HistoryEntry
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /students/{studentID}/history [get]
// @Security BearerAuth
func (h *PointHandler) HandleGetHistory(ctx *gin.Context) {
	studentID, respErr := parseIDParam(ctx, "studentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	history, err := h.svc.GetHistory(ctx.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("student", "id", studentID))
			return
		}

		err = fmt.Errorf("v1.HandleGetHistory -> h.svc.GetHistory -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, history)
}
