package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/service"
)

func TestCreateGeneralFromCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	aline := env.seedStudent(t, "Aline", &course.ID)
	badr := env.seedStudent(t, "Badr", &course.ID)

	group, err := env.groups.CreateGeneralFromCourse(ctx, course.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, course.Name, group.Name)
	assert.Equal(t, domain.GroupTypeGeneral, group.Type)
	require.NotNil(t, group.CourseID)
	assert.Equal(t, course.ID, *group.CourseID)

	members, err := env.groups.ListMemberIDs(ctx, group.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{aline.ID, badr.ID}, members)

	_, err = env.groups.CreateGeneralFromCourse(ctx, course.ID, 1)
	assert.ErrorIs(t, err, service.ErrGeneralGroupExists)
}

func TestCreateGeneralFromEmptyCourse(t *testing.T) {
	env := newTestEnv(t)

	course := env.seedCourse(t, "Empty")

	_, err := env.groups.CreateGeneralFromCourse(context.Background(), course.ID, 1)
	assert.ErrorIs(t, err, service.ErrCourseHasNoStudents)
}

func TestCreateSubgroupEnforcesParentMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	aline := env.seedStudent(t, "Aline", &course.ID)
	env.seedStudent(t, "Badr", &course.ID)
	outsider := env.seedStudent(t, "Chloe", nil)

	general, err := env.groups.CreateGeneralFromCourse(ctx, course.ID, 1)
	require.NoError(t, err)

	_, err = env.groups.CreateSubgroup(ctx, general.ID, "row 1", []uint{aline.ID, outsider.ID}, 1)
	var notInParent *service.StudentNotInParentError
	require.ErrorAs(t, err, &notInParent)
	assert.Equal(t, outsider.ID, notInParent.StudentID)

	subgroup, err := env.groups.CreateSubgroup(ctx, general.ID, "row 1", []uint{aline.ID}, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupTypeSubgroup, subgroup.Type)
	require.NotNil(t, subgroup.ParentGroupID)
	assert.Equal(t, general.ID, *subgroup.ParentGroupID)

	members, err := env.groups.ListMemberIDs(ctx, subgroup.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{aline.ID}, members)
}

func TestCreateSubgroupOfSubgroupRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	aline := env.seedStudent(t, "Aline", &course.ID)

	general, err := env.groups.CreateGeneralFromCourse(ctx, course.ID, 1)
	require.NoError(t, err)

	subgroup, err := env.groups.CreateSubgroup(ctx, general.ID, "row 1", []uint{aline.ID}, 1)
	require.NoError(t, err)

	_, err = env.groups.CreateSubgroup(ctx, subgroup.ID, "nested", []uint{aline.ID}, 1)
	assert.ErrorIs(t, err, service.ErrNotGeneralGroup)
}

func TestCreateIndependentBootstrapsCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group, students, err := env.groups.CreateIndependent(ctx, domain.IndependentGroupInput{
		GroupName:      "Chess club",
		CourseName:     "Chess",
		Level:          "open",
		AcademicPeriod: "2025-2026",
		StudentNames:   []string{"Aline", "Badr", "Chloe"},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.GroupTypeIndependent, group.Type)
	require.Len(t, students, 3)

	members, err := env.groups.ListMemberIDs(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	// Each bootstrapped student belongs to the new course, so scoring
	// works on them immediately.
	for _, student := range students {
		require.NotNil(t, student.CourseID)
	}

	_, _, err = env.groups.CreateIndependent(ctx, domain.IndependentGroupInput{
		GroupName:  "Empty club",
		CourseName: "Nothing",
	}, 1)
	assert.ErrorIs(t, err, service.ErrCourseHasNoStudents)
}

func TestReplaceMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	aline := env.seedStudent(t, "Aline", &course.ID)
	badr := env.seedStudent(t, "Badr", &course.ID)
	chloe := env.seedStudent(t, "Chloe", &course.ID)
	outsider := env.seedStudent(t, "Dana", nil)

	general, err := env.groups.CreateGeneralFromCourse(ctx, course.ID, 1)
	require.NoError(t, err)

	subgroup, err := env.groups.CreateSubgroup(ctx, general.ID, "row 1", []uint{aline.ID, badr.ID}, 1)
	require.NoError(t, err)

	err = env.groups.ReplaceMembership(ctx, subgroup.ID, []uint{chloe.ID, outsider.ID})
	var notInParent *service.StudentNotInParentError
	require.ErrorAs(t, err, &notInParent)
	assert.Equal(t, outsider.ID, notInParent.StudentID)

	// The failed replacement must not have touched the membership.
	members, err := env.groups.ListMemberIDs(ctx, subgroup.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{aline.ID, badr.ID}, members)

	require.NoError(t, env.groups.ReplaceMembership(ctx, subgroup.ID, []uint{chloe.ID}))

	members, err = env.groups.ListMemberIDs(ctx, subgroup.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{chloe.ID}, members)
}

func TestAddAndRemoveMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	aline := env.seedStudent(t, "Aline", &course.ID)
	badr := env.seedStudent(t, "Badr", &course.ID)
	outsider := env.seedStudent(t, "Chloe", nil)

	general, err := env.groups.CreateGeneralFromCourse(ctx, course.ID, 1)
	require.NoError(t, err)

	subgroup, err := env.groups.CreateSubgroup(ctx, general.ID, "row 1", []uint{aline.ID}, 1)
	require.NoError(t, err)

	err = env.groups.AddMember(ctx, subgroup.ID, aline.ID)
	assert.ErrorIs(t, err, service.ErrMembershipExists)

	var notInParent *service.StudentNotInParentError
	err = env.groups.AddMember(ctx, subgroup.ID, outsider.ID)
	require.ErrorAs(t, err, &notInParent)
	assert.Equal(t, outsider.ID, notInParent.StudentID)

	require.NoError(t, env.groups.AddMember(ctx, subgroup.ID, badr.ID))

	members, err := env.groups.ListMemberIDs(ctx, subgroup.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{aline.ID, badr.ID}, members)

	require.NoError(t, env.groups.RemoveMember(ctx, subgroup.ID, aline.ID))

	err = env.groups.RemoveMember(ctx, subgroup.ID, aline.ID)
	assert.ErrorIs(t, err, service.ErrMembershipNotFound)
}

func TestDeleteGroupRefusesWhileSubgroupsExist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	aline := env.seedStudent(t, "Aline", &course.ID)

	general, err := env.groups.CreateGeneralFromCourse(ctx, course.ID, 1)
	require.NoError(t, err)

	subgroup, err := env.groups.CreateSubgroup(ctx, general.ID, "row 1", []uint{aline.ID}, 1)
	require.NoError(t, err)

	err = env.groups.Delete(ctx, general.ID)
	assert.ErrorIs(t, err, service.ErrGroupHasSubgroups)

	require.NoError(t, env.groups.Delete(ctx, subgroup.ID))
	require.NoError(t, env.groups.Delete(ctx, general.ID))

	_, err = env.groups.GetGroup(ctx, general.ID)
	assert.ErrorIs(t, err, service.ErrGroupNotFound)
}

func TestListExcludedFromSubgroups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	aline := env.seedStudent(t, "Aline", &course.ID)
	badr := env.seedStudent(t, "Badr", &course.ID)
	chloe := env.seedStudent(t, "Chloe", &course.ID)

	general, err := env.groups.CreateGeneralFromCourse(ctx, course.ID, 1)
	require.NoError(t, err)

	rowOne, err := env.groups.CreateSubgroup(ctx, general.ID, "row 1", []uint{aline.ID}, 1)
	require.NoError(t, err)
	_, err = env.groups.CreateSubgroup(ctx, general.ID, "row 2", []uint{badr.ID}, 1)
	require.NoError(t, err)

	// Editing row 1: only row 2's members are taken.
	excluded, err := env.groups.ListExcludedFromSubgroups(ctx, general.ID, rowOne.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{badr.ID}, excluded)

	// Creating a new subgroup: both rows' members are taken.
	excluded, err = env.groups.ListExcludedFromSubgroups(ctx, general.ID, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{aline.ID, badr.ID}, excluded)
	assert.NotContains(t, excluded, chloe.ID)
}

// stubAssigner fails for a chosen set of students and reports a stale
// summary for another set.
type stubAssigner struct {
	failFor  map[uint]bool
	staleFor map[uint]bool
	calls    []uint
}

func (s *stubAssigner) AssignPoints(_ context.Context, studentID, _, _ uint, value int, _ string) (domain.PointEvent, error) {
	s.calls = append(s.calls, studentID)

	if s.failFor[studentID] {
		return domain.PointEvent{}, fmt.Errorf("s.repo.Append -> %w", errors.New("connection reset"))
	}
	if s.staleFor[studentID] {
		return domain.PointEvent{StudentID: studentID, Value: value},
			fmt.Errorf("%w: recompute timed out", service.ErrSummaryStale)
	}

	return domain.PointEvent{StudentID: studentID, Value: value}, nil
}

func TestBulkAssignPointsBestEffort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	var students []domain.Student
	for _, name := range []string{"Aline", "Badr", "Chloe", "Dana", "Emil"} {
		students = append(students, env.seedStudent(t, name, &course.ID))
	}

	general, err := env.groups.CreateGeneralFromCourse(ctx, course.ID, 1)
	require.NoError(t, err)

	stub := &stubAssigner{
		failFor:  map[uint]bool{students[2].ID: true},
		staleFor: map[uint]bool{students[4].ID: true},
	}
	groups := service.NewGroupService(env.groupRepo, env.courseRepo, stub)

	result, err := groups.BulkAssignPoints(ctx, general.ID, 1, 5, "group work", 1)
	require.NoError(t, err)

	// One member failed outright; the stale summary still counts as a
	// success because its ledger write went through.
	assert.Equal(t, 4, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
	assert.Len(t, stub.calls, 5)
}

func TestBulkAssignPointsEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := env.seedCourse(t, "5A Histoire")
	aline := env.seedStudent(t, "Aline", &course.ID)
	badr := env.seedStudent(t, "Badr", &course.ID)
	pt := env.seedType(t, "group work", 5)

	general, err := env.groups.CreateGeneralFromCourse(ctx, course.ID, 1)
	require.NoError(t, err)

	result, err := env.groups.BulkAssignPoints(ctx, general.ID, pt.ID, 5, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 0, result.FailCount)

	for _, id := range []uint{aline.ID, badr.ID} {
		summary, err := env.scoring.GetSummary(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 5, summary.TotalPoints)
		assert.Equal(t, 20, summary.RoundedAverage)
	}
}

func TestBulkAssignPointsUnknownGroup(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.groups.BulkAssignPoints(context.Background(), 424242, 1, 5, "", 1)
	assert.ErrorIs(t, err, service.ErrGroupNotFound)
}
