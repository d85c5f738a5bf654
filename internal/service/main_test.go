package service_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/repository"
	"github.com/classtrack/participation-api/internal/repository/dao"
	"github.com/classtrack/participation-api/internal/service"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory sqlite database per test. The
// shared-cache name keeps the database alive across the pooled
// connections gorm opens.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, dao.InitTables(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

type testEnv struct {
	db *gorm.DB

	pointRepo  *repository.PointRepository
	courseRepo *repository.CourseRepository
	typeRepo   *repository.ParticipationTypeRepository
	groupRepo  *repository.GroupRepository

	scoring *service.ScoringService
	groups  *service.GroupService
	courses *service.CourseService
	types   *service.ParticipationTypeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)

	pointRepo := repository.NewPointRepository(dao.NewPointDAO(db))
	courseRepo := repository.NewCourseRepository(dao.NewCourseDAO(db))
	typeRepo := repository.NewParticipationTypeRepository(dao.NewParticipationTypeDAO(db))
	groupRepo := repository.NewGroupRepository(dao.NewGroupDAO(db))

	scoring := service.NewScoringService(pointRepo, courseRepo, typeRepo)

	return &testEnv{
		db:         db,
		pointRepo:  pointRepo,
		courseRepo: courseRepo,
		typeRepo:   typeRepo,
		groupRepo:  groupRepo,
		scoring:    scoring,
		groups:     service.NewGroupService(groupRepo, courseRepo, scoring),
		courses:    service.NewCourseService(courseRepo),
		types:      service.NewParticipationTypeService(typeRepo, pointRepo),
	}
}

func (e *testEnv) seedCourse(t *testing.T, name string) domain.Course {
	t.Helper()

	course, err := e.courseRepo.Create(context.Background(), domain.Course{
		Name:           name,
		Level:          "5A",
		AcademicPeriod: "2025-2026",
		TeacherID:      1,
	})
	require.NoError(t, err)

	return course
}

func (e *testEnv) seedStudent(t *testing.T, name string, courseID *uint) domain.Student {
	t.Helper()

	student, err := e.courseRepo.CreateStudent(context.Background(), domain.Student{
		Name:     name,
		CourseID: courseID,
	})
	require.NoError(t, err)

	return student
}

func (e *testEnv) seedType(t *testing.T, name string, defaultPoints int) domain.ParticipationType {
	t.Helper()

	pt, err := e.typeRepo.Create(context.Background(), domain.ParticipationType{
		OwnerUserID:   1,
		Name:          name,
		DefaultPoints: defaultPoints,
	})
	require.NoError(t, err)

	return pt
}
