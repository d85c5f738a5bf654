package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/participation-api/internal/service"
)

func TestAssignPointsFirstEventGradesAtCeiling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	student := env.seedStudent(t, "Aline", &course.ID)
	pt := env.seedType(t, "oral answer", 5)

	event, err := env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, 7, "good answer")
	require.NoError(t, err)
	assert.Equal(t, student.ID, event.StudentID)
	assert.Equal(t, 7, event.Value)

	summary, err := env.scoring.GetSummary(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.TotalPoints)
	assert.Equal(t, 1, summary.ParticipationCount)
	assert.Equal(t, 20, summary.RoundedAverage)
}

func TestAssignPointsRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	student := env.seedStudent(t, "Aline", &course.ID)
	pt := env.seedType(t, "oral answer", 5)

	_, err := env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, 0, "")
	assert.ErrorIs(t, err, service.ErrInvalidPointValue)

	_, err = env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, 101, "")
	assert.ErrorIs(t, err, service.ErrInvalidPointValue)

	_, err = env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, -101, "")
	assert.ErrorIs(t, err, service.ErrInvalidPointValue)

	_, err = env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, 5, strings.Repeat("x", 501))
	assert.ErrorIs(t, err, service.ErrReasonTooLong)

	_, err = env.scoring.AssignPoints(ctx, student.ID, 1, 9999, 5, "")
	assert.ErrorIs(t, err, service.ErrTypeNotFound)

	_, err = env.scoring.AssignPoints(ctx, 9999, 1, pt.ID, 5, "")
	assert.ErrorIs(t, err, service.ErrStudentNotFound)
}

func TestGradesAreRelativeToCourseMax(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	weaker := env.seedStudent(t, "Aline", &course.ID)
	stronger := env.seedStudent(t, "Badr", &course.ID)
	pt := env.seedType(t, "oral answer", 5)

	event, err := env.scoring.AssignPoints(ctx, weaker.ID, 1, pt.ID, 5, "")
	require.NoError(t, err)

	summary, err := env.scoring.GetSummary(ctx, weaker.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, summary.RoundedAverage)

	_, err = env.scoring.AssignPoints(ctx, stronger.ID, 1, pt.ID, 20, "")
	require.NoError(t, err)

	// The weaker student's stored grade only moves on their next
	// recompute; touching their event triggers it.
	_, err = env.scoring.UpdatePoint(ctx, event.ID, pt.ID, 5, "")
	require.NoError(t, err)

	summary, err = env.scoring.GetSummary(ctx, weaker.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalPoints)
	assert.Equal(t, 5, summary.RoundedAverage)

	summary, err = env.scoring.GetSummary(ctx, stronger.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, summary.RoundedAverage)
}

func TestUpdatePointRecomputesSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	student := env.seedStudent(t, "Aline", &course.ID)
	pt := env.seedType(t, "oral answer", 5)
	other := env.seedType(t, "homework", 3)

	event, err := env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, 5, "")
	require.NoError(t, err)

	updated, err := env.scoring.UpdatePoint(ctx, event.ID, other.ID, -3, "late")
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.ParticipationTypeID)
	assert.Equal(t, -3, updated.Value)
	assert.Equal(t, "late", updated.Reason)

	summary, err := env.scoring.GetSummary(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, -3, summary.TotalPoints)
	assert.Equal(t, 1, summary.ParticipationCount)
}

func TestDeletePointLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	student := env.seedStudent(t, "Aline", &course.ID)
	pt := env.seedType(t, "oral answer", 5)

	event, err := env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, 10, "")
	require.NoError(t, err)

	require.NoError(t, env.scoring.DeletePoint(ctx, event.ID))

	summary, err := env.scoring.GetSummary(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalPoints)
	assert.Equal(t, 0, summary.ParticipationCount)
	assert.Equal(t, 0, summary.RoundedAverage)

	events, err := env.scoring.ListPoints(ctx, student.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, events)

	err = env.scoring.DeletePoint(ctx, event.ID)
	assert.ErrorIs(t, err, service.ErrPointNotFound)
}

func TestDeletePointRegradesAgainstRemainingTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	student := env.seedStudent(t, "Aline", &course.ID)
	pt := env.seedType(t, "oral answer", 5)

	_, err := env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, 10, "")
	require.NoError(t, err)
	extra, err := env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, 5, "")
	require.NoError(t, err)

	require.NoError(t, env.scoring.DeletePoint(ctx, extra.ID))

	// Same summary as if the deleted event had never existed: the
	// remaining total of 10 is now the course max, not the stale 15.
	summary, err := env.scoring.GetSummary(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.TotalPoints)
	assert.Equal(t, 1, summary.ParticipationCount)
	assert.Equal(t, 20, summary.RoundedAverage)

	// Recomputing without any mutation changes nothing.
	require.NoError(t, env.scoring.RecomputeSummary(ctx, student.ID))

	again, err := env.scoring.GetSummary(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.TotalPoints, again.TotalPoints)
	assert.Equal(t, summary.AveragePoints, again.AveragePoints)
	assert.Equal(t, summary.RoundedAverage, again.RoundedAverage)
}

func TestAssignPointsStudentWithoutCourseSkipsSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedStudent(t, "Drifter", nil)
	pt := env.seedType(t, "oral answer", 5)

	_, err := env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, 5, "")
	require.NoError(t, err)

	// The ledger write went through, only the summary is absent.
	events, err := env.scoring.ListPoints(ctx, student.ID, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = env.scoring.GetSummary(ctx, student.ID)
	assert.ErrorIs(t, err, service.ErrSummaryNotFound)
}

func TestListPointsNewestFirstWithLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	student := env.seedStudent(t, "Aline", &course.ID)
	pt := env.seedType(t, "oral answer", 5)

	values := []int{1, 2, 3, 4}
	for _, v := range values {
		_, err := env.scoring.AssignPoints(ctx, student.ID, 1, pt.ID, v, "")
		require.NoError(t, err)
	}

	events, err := env.scoring.ListPoints(ctx, student.ID, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 4, events[0].Value)
	assert.Equal(t, 3, events[1].Value)

	events, err = env.scoring.ListPoints(ctx, student.ID, 0)
	require.NoError(t, err)
	assert.Len(t, events, 4)
}

func TestListCoursePoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	aline := env.seedStudent(t, "Aline", &course.ID)
	badr := env.seedStudent(t, "Badr", &course.ID)
	pt := env.seedType(t, "oral answer", 5)

	_, err := env.scoring.AssignPoints(ctx, aline.ID, 1, pt.ID, 5, "")
	require.NoError(t, err)
	_, err = env.scoring.AssignPoints(ctx, badr.ID, 1, pt.ID, 3, "")
	require.NoError(t, err)

	events, err := env.scoring.ListCoursePoints(ctx, course.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, badr.ID, events[0].StudentID)
	assert.Equal(t, aline.ID, events[1].StudentID)

	_, err = env.scoring.ListCoursePoints(ctx, 424242, 0)
	assert.ErrorIs(t, err, service.ErrCourseNotFound)
}

func TestGetHistoryReplaysLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	student := env.seedStudent(t, "Aline", &course.ID)
	oral := env.seedType(t, "oral answer", 5)
	conduct := env.seedType(t, "conduct", -2)

	for _, step := range []struct {
		typeID uint
		value  int
	}{
		{oral.ID, 5},
		{conduct.ID, -2},
		{oral.ID, 10},
	} {
		_, err := env.scoring.AssignPoints(ctx, student.ID, 1, step.typeID, step.value, "")
		require.NoError(t, err)
	}

	history, err := env.scoring.GetHistory(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, []int{5, -2, 10}, []int{history[0].DayPoints, history[1].DayPoints, history[2].DayPoints})
	assert.Equal(t, []int{5, 3, 13}, []int{history[0].CumulativePoints, history[1].CumulativePoints, history[2].CumulativePoints})
	assert.Equal(t, "oral answer", history[0].ParticipationType)
	assert.Equal(t, "conduct", history[1].ParticipationType)

	// Every step is graded against the course max as it stands now
	// (13), earlier rows included.
	assert.Equal(t, 8, history[0].FinalGrade)
	assert.Equal(t, 5, history[1].FinalGrade)
	assert.Equal(t, 20, history[2].FinalGrade)
}

func TestGetHistoryUnknownStudent(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.scoring.GetHistory(context.Background(), 424242)
	assert.True(t, errors.Is(err, service.ErrStudentNotFound))
}
