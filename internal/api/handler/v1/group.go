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

type GroupService interface {
	CreateGeneralFromCourse(ctx context.Context, courseID, creatorID uint) (domain.Group, error)
	CreateSubgroup(ctx context.Context, parentGroupID uint, name string, studentIDs []uint, creatorID uint) (domain.Group, error)
	CreateIndependent(ctx context.Context, input domain.IndependentGroupInput, creatorID uint) (domain.Group, []domain.Student, error)
	GetGroup(ctx context.Context, id uint) (domain.Group, error)
	ListByCourse(ctx context.Context, courseID uint) ([]domain.Group, error)
	ListMemberIDs(ctx context.Context, groupID uint) ([]uint, error)
	AddMember(ctx context.Context, groupID, studentID uint) error
	RemoveMember(ctx context.Context, groupID, studentID uint) error
	ReplaceMembership(ctx context.Context, groupID uint, studentIDs []uint) error
	Delete(ctx context.Context, groupID uint) error
	ListExcludedFromSubgroups(ctx context.Context, parentGroupID, excludeSubgroupID uint) ([]uint, error)
	BulkAssignPoints(ctx context.Context, groupID, typeID uint, value int, reason string, issuerID uint) (domain.BulkAssignResult, error)
}

type GroupHandler struct {
	svc GroupService
}

func NewGroupHandler(svc GroupService) *GroupHandler {
	return &GroupHandler{
		svc: svc,
	}
}

// HandleCreateGeneralGroup godoc
// @Summary      Create the course's general group
// @Description  Creates the single general group of a course and enrolls every current student.
// @Tags         groups
// @Produce      json
// @Param        courseID  path      integer  true  "Course ID"
// @Success      201       {object}  domain.Group
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      409       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /courses/{courseID}/groups/general [post]
// @Security BearerAuth
func (h *GroupHandler) HandleCreateGeneralGroup(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	courseID, respErr := parseIDParam(ctx, "courseID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	group, err := h.svc.CreateGeneralFromCourse(ctx.Request.Context(), courseID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.RenderErr(ctx, response.ErrNotFound("course", "id", courseID))
		case errors.Is(err, service.ErrGeneralGroupExists):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrCourseHasNoStudents):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleCreateGeneralGroup -> h.svc.CreateGeneralFromCourse -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, group)
}

// HandleListGroupsByCourse godoc
// @Summary      List a course's groups
// @Tags         groups
// @Produce      json
// @Param        courseID  path      integer  true  "Course ID"
// @Success      200       {array}   domain.Group
// @Failure      400       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /courses/{courseID}/groups [get]
// @Security BearerAuth
func (h *GroupHandler) HandleListGroupsByCourse(ctx *gin.Context) {
	courseID, respErr := parseIDParam(ctx, "courseID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	groups, err := h.svc.ListByCourse(ctx.Request.Context(), courseID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListGroupsByCourse -> h.svc.ListByCourse -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, groups)
}

// HandleGetGroup godoc
// @Summary      Get a group
// @Tags         groups
// @Produce      json
// @Param        groupID  path      integer  true  "Group ID"
// @Success      200      {object}  domain.Group
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID} [get]
// @Security BearerAuth
func (h *GroupHandler) HandleGetGroup(ctx *gin.Context) {
	groupID, respErr := parseIDParam(ctx, "groupID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	group, err := h.svc.GetGroup(ctx.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("group", "id", groupID))
			return
		}

		err = fmt.Errorf("v1.HandleGetGroup -> h.svc.GetGroup -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, group)
}

// HandleGetGroupMembers godoc
// @Summary      List a group's member ids
// @Tags         groups
// @Produce      json
// @Param        groupID  path      integer  true  "Group ID"
// @Success      200      {object}  response.GroupMembersResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/members [get]
// @Security BearerAuth
func (h *GroupHandler) HandleGetGroupMembers(ctx *gin.Context) {
	groupID, respErr := parseIDParam(ctx, "groupID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ids, err := h.svc.ListMemberIDs(ctx.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("group", "id", groupID))
			return
		}

		err = fmt.Errorf("v1.HandleGetGroupMembers -> h.svc.ListMemberIDs -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.GroupMembersResponse{
		GroupID:    groupID,
		StudentIDs: ids,
	})
}

// HandleCreateSubgroup godoc
// @Summary      Create a subgroup of a general group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupID  path      integer                       true  "Parent general group ID"
// @Param        input    body      request.CreateSubgroupRequest true  "Subgroup details"
// @Success      201      {object}  domain.Group
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/subgroups [post]
// @Security BearerAuth
func (h *GroupHandler) HandleCreateSubgroup(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	groupID, respErr := parseIDParam(ctx, "groupID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateSubgroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	group, err := h.svc.CreateSubgroup(ctx.Request.Context(), groupID, req.Name, req.StudentIDs, userID)
	if err != nil {
		var notInParent *service.StudentNotInParentError
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.RenderErr(ctx, response.ErrNotFound("group", "id", groupID))
		case errors.Is(err, service.ErrNotGeneralGroup):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.As(err, &notInParent):
			response.RenderErr(ctx, response.ErrBadRequest(notInParent))
		default:
			err = fmt.Errorf("v1.HandleCreateSubgroup -> h.svc.CreateSubgroup -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, group)
}

// HandleCreateIndependentGroup godoc
// @Summary      Create an independent group with a fresh course and students
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateIndependentGroupRequest  true  "Group, course and students"
// @Success      201    {object}  domain.Group
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /groups/independent [post]
// @Security BearerAuth
func (h *GroupHandler) HandleCreateIndependentGroup(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateIndependentGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	group, _, err := h.svc.CreateIndependent(ctx.Request.Context(), domain.IndependentGroupInput{
		GroupName:      req.GroupName,
		CourseName:     req.CourseName,
		Level:          req.Level,
		AcademicPeriod: req.AcademicPeriod,
		StudentNames:   req.StudentNames,
	}, userID)
	if err != nil {
		if errors.Is(err, service.ErrCourseHasNoStudents) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleCreateIndependentGroup -> h.svc.CreateIndependent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, group)
}

// HandleAddGroupMember godoc
// @Summary      Add one student to a group
// @Tags         groups
// @Produce      json
// @Param        groupID    path  integer  true  "Group ID"
// @Param        studentID  path  integer  true  "Student ID"
// @Success      201
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /groups/{groupID}/members/{studentID} [post]
// @Security BearerAuth
func (h *GroupHandler) HandleAddGroupMember(ctx *gin.Context) {
	groupID, respErr := parseIDParam(ctx, "groupID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	studentID, respErr := parseIDParam(ctx, "studentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	err := h.svc.AddMember(ctx.Request.Context(), groupID, studentID)
	if err != nil {
		var notInParent *service.StudentNotInParentError
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.RenderErr(ctx, response.ErrNotFound("group", "id", groupID))
		case errors.Is(err, service.ErrStudentNotFound):
			response.RenderErr(ctx, response.ErrNotFound("student", "id", studentID))
		case errors.Is(err, service.ErrMembershipExists):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.As(err, &notInParent):
			response.RenderErr(ctx, response.ErrBadRequest(notInParent))
		default:
			err = fmt.Errorf("v1.HandleAddGroupMember -> h.svc.AddMember -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusCreated)
}

// HandleRemoveGroupMember godoc
// @Summary      Remove one student from a group
// @Tags         groups
// @Produce      json
// @Param        groupID    path  integer  true  "Group ID"
// @Param        studentID  path  integer  true  "Student ID"
// @Success      204
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /groups/{groupID}/members/{studentID} [delete]
// @Security BearerAuth
func (h *GroupHandler) HandleRemoveGroupMember(ctx *gin.Context) {
	groupID, respErr := parseIDParam(ctx, "groupID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	studentID, respErr := parseIDParam(ctx, "studentID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	err := h.svc.RemoveMember(ctx.Request.Context(), groupID, studentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.RenderErr(ctx, response.ErrNotFound("group", "id", groupID))
		case errors.Is(err, service.ErrMembershipNotFound):
			response.RenderErr(ctx, response.ErrNotFound("membership", "studentID", studentID))
		default:
			err = fmt.Errorf("v1.HandleRemoveGroupMember -> h.svc.RemoveMember -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleReplaceMembership godoc
// @Summary      Replace a group's membership
// @Description  Removes every member then adds the requested set; subgroups re-validate against the parent group first.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupID  path      integer                          true  "Group ID"
// @Param        input    body      request.ReplaceMembershipRequest true  "New member set"
// @Success      200      {object}  response.GroupMembersResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/members [put]
// @Security BearerAuth
func (h *GroupHandler) HandleReplaceMembership(ctx *gin.Context) {
	groupID, respErr := parseIDParam(ctx, "groupID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReplaceMembershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := h.svc.ReplaceMembership(ctx.Request.Context(), groupID, req.StudentIDs)
	if err != nil {
		var notInParent *service.StudentNotInParentError
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.RenderErr(ctx, response.ErrNotFound("group", "id", groupID))
		case errors.As(err, &notInParent):
			response.RenderErr(ctx, response.ErrBadRequest(notInParent))
		default:
			err = fmt.Errorf("v1.HandleReplaceMembership -> h.svc.ReplaceMembership -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.GroupMembersResponse{
		GroupID:    groupID,
		StudentIDs: req.StudentIDs,
	})
}

// HandleDeleteGroup godoc
// @Summary      Delete a group
// @Description  Fails while the group still has subgroups; delete those first.
// @Tags         groups
// @Produce      json
// @Param        groupID  path  integer  true  "Group ID"
// @Success      204
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID} [delete]
// @Security BearerAuth
func (h *GroupHandler) HandleDeleteGroup(ctx *gin.Context) {
	groupID, respErr := parseIDParam(ctx, "groupID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	err := h.svc.Delete(ctx.Request.Context(), groupID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.RenderErr(ctx, response.ErrNotFound("group", "id", groupID))
		case errors.Is(err, service.ErrGroupHasSubgroups):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleDeleteGroup -> h.svc.Delete -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListExcludedStudents godoc
// @Summary      List parent members already taken by sibling subgroups
// @Description  Advisory query used by the subgroup editor to avoid double-assignment.
// @Tags         groups
// @Produce      json
// @Param        groupID  path   integer  true   "Parent general group ID"
// @Param        exclude  query  integer  false  "Subgroup ID to leave out of the check"
// @Success      200      {object}  response.ExcludedStudentsResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/excluded-students [get]
// @Security BearerAuth
func (h *GroupHandler) HandleListExcludedStudents(ctx *gin.Context) {
	groupID, respErr := parseIDParam(ctx, "groupID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var excludeID uint
	if raw := ctx.Query("exclude"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid exclude (%v)", raw)))
			return
		}
		excludeID = uint(parsed)
	}

	ids, err := h.svc.ListExcludedFromSubgroups(ctx.Request.Context(), groupID, excludeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.RenderErr(ctx, response.ErrNotFound("group", "id", groupID))
		case errors.Is(err, service.ErrNotGeneralGroup):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleListExcludedStudents -> h.svc.ListExcludedFromSubgroups -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.ExcludedStudentsResponse{StudentIDs: ids})
}

// HandleBulkAssignPoints godoc
// @Summary      Assign the same points to every member of a group
// @Description  Best-effort fan-out: failing members are counted, the batch never aborts.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupID  path      integer                          true  "Group ID"
// @Param        input    body      request.BulkAssignPointsRequest  true  "Points to assign"
// @Success      200      {object}  response.BulkAssignResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /groups/{groupID}/points [post]
// @Security BearerAuth
func (h *GroupHandler) HandleBulkAssignPoints(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	groupID, respErr := parseIDParam(ctx, "groupID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.BulkAssignPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.BulkAssignPoints(ctx.Request.Context(), groupID, req.ParticipationTypeID, req.Value, req.Reason, userID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("group", "id", groupID))
			return
		}

		err = fmt.Errorf("v1.HandleBulkAssignPoints -> h.svc.BulkAssignPoints -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.BulkAssignResponse{
		Message:      "bulk assignment completed",
		SuccessCount: result.SuccessCount,
		FailCount:    result.FailCount,
	})
}
