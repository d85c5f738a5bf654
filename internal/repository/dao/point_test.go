package dao_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/classtrack/participation-api/internal/repository/dao"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:dao%d?mode=memory&cache=shared", testDBSeq.Add(1))
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

func seedStudent(t *testing.T, db *gorm.DB) dao.Student {
	t.Helper()

	courseDAO := dao.NewCourseDAO(db)

	course, err := courseDAO.Insert(context.Background(), dao.Course{
		Name:      "5A Histoire",
		TeacherID: 1,
	})
	require.NoError(t, err)

	student, err := courseDAO.InsertStudent(context.Background(), dao.Student{
		Name:     "Aline",
		CourseID: &course.ID,
	})
	require.NoError(t, err)

	return student
}

func TestPointDAOFindByStudentOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pointDAO := dao.NewPointDAO(db)
	student := seedStudent(t, db)

	base := time.Now().Add(-time.Hour)
	for i, value := range []int{1, 2, 3} {
		_, err := pointDAO.Insert(ctx, dao.PointEvent{
			StudentID:           student.ID,
			IssuedByUserID:      1,
			ParticipationTypeID: 1,
			Value:               value,
			CreatedAt:           base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	desc, err := pointDAO.FindByStudent(ctx, student.ID, 0)
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, 3, desc[0].Value)
	assert.Equal(t, 1, desc[2].Value)

	limited, err := pointDAO.FindByStudent(ctx, student.ID, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, 3, limited[0].Value)
	assert.Equal(t, 2, limited[1].Value)

	asc, err := pointDAO.FindByStudentAsc(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, 1, asc[0].Value)
	assert.Equal(t, 3, asc[2].Value)
}

func TestPointDAOSumAndCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pointDAO := dao.NewPointDAO(db)
	student := seedStudent(t, db)

	total, count, err := pointDAO.SumAndCountByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, count)

	for _, value := range []int{5, -2, 10} {
		_, err := pointDAO.Insert(ctx, dao.PointEvent{
			StudentID:           student.ID,
			IssuedByUserID:      1,
			ParticipationTypeID: 1,
			Value:               value,
		})
		require.NoError(t, err)
	}

	total, count, err = pointDAO.SumAndCountByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, total)
	assert.Equal(t, 3, count)
}

func TestPointDAOUpsertSummary(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	pointDAO := dao.NewPointDAO(db)
	student := seedStudent(t, db)

	_, err := pointDAO.FindSummaryByStudent(ctx, student.ID)
	assert.ErrorIs(t, err, dao.ErrSummaryNotFound)

	first, err := pointDAO.UpsertSummary(ctx, dao.StudentSummary{
		StudentID:      student.ID,
		CourseID:       *student.CourseID,
		TotalPoints:    5,
		RoundedAverage: 20,
	})
	require.NoError(t, err)

	second, err := pointDAO.UpsertSummary(ctx, dao.StudentSummary{
		StudentID:      student.ID,
		CourseID:       *student.CourseID,
		TotalPoints:    8,
		RoundedAverage: 16,
	})
	require.NoError(t, err)

	// The second write replaces the first row instead of adding one.
	assert.Equal(t, first.ID, second.ID)

	found, err := pointDAO.FindSummaryByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, found.TotalPoints)

	max, err := pointDAO.MaxSummaryTotalByCourse(ctx, *student.CourseID)
	require.NoError(t, err)
	assert.Equal(t, 8, max)

	max, err = pointDAO.MaxSummaryTotalByCourse(ctx, 424242)
	require.NoError(t, err)
	assert.Equal(t, 0, max)
}
