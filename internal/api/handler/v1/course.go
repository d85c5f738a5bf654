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

type CourseService interface {
	CreateCourse(ctx context.Context, course domain.Course) (domain.Course, error)
	GetCourse(ctx context.Context, id uint) (domain.Course, error)
	ListCourses(ctx context.Context, teacherID uint) ([]domain.Course, error)
	AddStudent(ctx context.Context, courseID uint, name string) (domain.Student, error)
	ListStudents(ctx context.Context, courseID uint) ([]domain.Student, error)
}

type CourseHandler struct {
	svc CourseService
}

func NewCourseHandler(svc CourseService) *CourseHandler {
	return &CourseHandler{
		svc: svc,
	}
}

// HandleListCourses godoc
// @Summary      List the caller's courses
// @Tags         courses
// @Produce      json
// @Success      200  {array}   domain.Course
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /courses [get]
// @Security BearerAuth
func (h *CourseHandler) HandleListCourses(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	courses, err := h.svc.ListCourses(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListCourses -> h.svc.ListCourses -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, courses)
}

// HandleCreateCourse godoc
// @Summary      Create a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateCourseRequest  true  "Course details"
// @Success      201    {object}  domain.Course
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /courses [post]
// @Security BearerAuth
func (h *CourseHandler) HandleCreateCourse(ctx *gin.Context) {
	userID, respErr := getUserIDFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	course, err := h.svc.CreateCourse(ctx.Request.Context(), domain.Course{
		Name:           req.Name,
		Level:          req.Level,
		AcademicPeriod: req.AcademicPeriod,
		TeacherID:      userID,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateCourse -> h.svc.CreateCourse -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, course)
}

// HandleGetCourse godoc
// @Summary      Get a course
// @Tags         courses
// @Produce      json
// @Param        courseID  path      integer  true  "Course ID"
// @Success      200       {object}  domain.Course
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /courses/{courseID} [get]
// @Security BearerAuth
func (h *CourseHandler) HandleGetCourse(ctx *gin.Context) {
	courseID, respErr := parseIDParam(ctx, "courseID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	course, err := h.svc.GetCourse(ctx.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("course", "id", courseID))
			return
		}

		err = fmt.Errorf("v1.HandleGetCourse -> h.svc.GetCourse -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, course)
}

// HandleListStudents godoc
// @Summary      List a course's students
// @Tags         courses
// @Produce      json
// @Param        courseID  path      integer  true  "Course ID"
// @Success      200       {array}   domain.Student
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /courses/{courseID}/students [get]
// @Security BearerAuth
func (h *CourseHandler) HandleListStudents(ctx *gin.Context) {
	courseID, respErr := parseIDParam(ctx, "courseID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	students, err := h.svc.ListStudents(ctx.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("course", "id", courseID))
			return
		}

		err = fmt.Errorf("v1.HandleListStudents -> h.svc.ListStudents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, students)
}

// HandleAddStudent godoc
// @Summary      Add a student to a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Param        courseID  path      integer                   true  "Course ID"
// @Param        input     body      request.AddStudentRequest true  "Student details"
// @Success      201       {object}  domain.Student
// @Failure      400       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /courses/{courseID}/students [post]
// @Security BearerAuth
func (h *CourseHandler) HandleAddStudent(ctx *gin.Context) {
	courseID, respErr := parseIDParam(ctx, "courseID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.AddStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	student, err := h.svc.AddStudent(ctx.Request.Context(), courseID, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("course", "id", courseID))
			return
		}

		err = fmt.Errorf("v1.HandleAddStudent -> h.svc.AddStudent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, student)
}
