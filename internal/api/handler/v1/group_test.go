package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/classtrack/participation-api/internal/api/handler/v1"
	"github.com/classtrack/participation-api/internal/api/handler/v1/response"
	"github.com/classtrack/participation-api/internal/api/middleware"
	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/service"
)

type stubGroupService struct {
	createGeneralErr error
	subgroupErr      error
	deleteErr        error
	bulkResult       domain.BulkAssignResult
}

func (s *stubGroupService) CreateGeneralFromCourse(_ context.Context, courseID, creatorID uint) (domain.Group, error) {
	if s.createGeneralErr != nil {
		return domain.Group{}, s.createGeneralErr
	}

	return domain.Group{ID: 1, Name: "5A Histoire", Type: domain.GroupTypeGeneral, CourseID: &courseID, CreatedBy: creatorID}, nil
}

func (s *stubGroupService) CreateSubgroup(_ context.Context, parentGroupID uint, name string, _ []uint, creatorID uint) (domain.Group, error) {
	if s.subgroupErr != nil {
		return domain.Group{}, s.subgroupErr
	}

	return domain.Group{ID: 2, Name: name, Type: domain.GroupTypeSubgroup, ParentGroupID: &parentGroupID, CreatedBy: creatorID}, nil
}

func (s *stubGroupService) CreateIndependent(context.Context, domain.IndependentGroupInput, uint) (domain.Group, []domain.Student, error) {
	return domain.Group{}, nil, nil
}

func (s *stubGroupService) GetGroup(context.Context, uint) (domain.Group, error) {
	return domain.Group{}, nil
}

func (s *stubGroupService) ListByCourse(context.Context, uint) ([]domain.Group, error) {
	return nil, nil
}

func (s *stubGroupService) ListMemberIDs(context.Context, uint) ([]uint, error) {
	return nil, nil
}

func (s *stubGroupService) AddMember(context.Context, uint, uint) error { return nil }

func (s *stubGroupService) RemoveMember(context.Context, uint, uint) error { return nil }

func (s *stubGroupService) ReplaceMembership(context.Context, uint, []uint) error { return nil }

func (s *stubGroupService) Delete(context.Context, uint) error { return s.deleteErr }

func (s *stubGroupService) ListExcludedFromSubgroups(context.Context, uint, uint) ([]uint, error) {
	return nil, nil
}

func (s *stubGroupService) BulkAssignPoints(context.Context, uint, uint, int, string, uint) (domain.BulkAssignResult, error) {
	return s.bulkResult, nil
}

func newGroupRouter(svc v1.GroupService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.CtxKeyUserID, uint(42))
	})

	handler := v1.NewGroupHandler(svc)
	router.POST("/courses/:courseID/groups/general", handler.HandleCreateGeneralGroup)
	router.POST("/groups/:groupID/subgroups", handler.HandleCreateSubgroup)
	router.DELETE("/groups/:groupID", handler.HandleDeleteGroup)
	router.POST("/groups/:groupID/points", handler.HandleBulkAssignPoints)

	return router
}

func TestHandleCreateGeneralGroupConflict(t *testing.T) {
	router := newGroupRouter(&stubGroupService{
		createGeneralErr: service.ErrGeneralGroupExists,
	})

	req := httptest.NewRequest(http.MethodPost, "/courses/1/groups/general", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleCreateSubgroupNamesOffendingStudent(t *testing.T) {
	router := newGroupRouter(&stubGroupService{
		subgroupErr: &service.StudentNotInParentError{StudentID: 7},
	})

	rec := postJSON(t, router, "/groups/1/subgroups", gin.H{
		"name":        "row 1",
		"student_ids": []uint{3, 7},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body response.Err
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Message, "student 7")
}

func TestHandleDeleteGroupWithSubgroups(t *testing.T) {
	router := newGroupRouter(&stubGroupService{
		deleteErr: service.ErrGroupHasSubgroups,
	})

	req := httptest.NewRequest(http.MethodDelete, "/groups/1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleBulkAssignPoints(t *testing.T) {
	router := newGroupRouter(&stubGroupService{
		bulkResult: domain.BulkAssignResult{SuccessCount: 4, FailCount: 1},
	})

	rec := postJSON(t, router, "/groups/1/points", gin.H{
		"participation_type_id": 2,
		"value":                 5,
		"reason":                "group work",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var body response.BulkAssignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.SuccessCount)
	assert.Equal(t, 1, body.FailCount)
}
