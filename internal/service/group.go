package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/repository"
)

var (
	ErrGroupNotFound      = repository.ErrGroupNotFound
	ErrMembershipExists   = repository.ErrMembershipExists
	ErrMembershipNotFound = repository.ErrMembershipNotFound

	ErrGeneralGroupExists  = errors.New("course already has a general group")
	ErrCourseHasNoStudents = errors.New("course has no students")
	ErrNotGeneralGroup     = errors.New("parent group is not a general group")
	ErrGroupHasSubgroups   = errors.New("group still has subgroups")
)

// StudentNotInParentError names the first requested student that is
// not a member of the parent general group.
type StudentNotInParentError struct {
	StudentID uint
}

func (e *StudentNotInParentError) Error() string {
	return fmt.Sprintf("student %v is not a member of the parent group", e.StudentID)
}

type GroupRepository interface {
	CreateWithMembers(ctx context.Context, group domain.Group, studentIDs []uint) (domain.Group, error)
	CreateIndependent(ctx context.Context, course domain.Course, studentNames []string, group domain.Group) (domain.Group, []domain.Student, error)
	FindByID(ctx context.Context, id uint) (domain.Group, error)
	FindGeneralByCourse(ctx context.Context, courseID uint) (domain.Group, error)
	ListByCourse(ctx context.Context, courseID uint) ([]domain.Group, error)
	ListSubgroups(ctx context.Context, parentGroupID uint) ([]domain.Group, error)
	Delete(ctx context.Context, id uint) error
	AddMember(ctx context.Context, groupID, studentID uint) error
	RemoveMember(ctx context.Context, groupID, studentID uint) error
	ReplaceMembers(ctx context.Context, groupID uint, studentIDs []uint) error
	ListMemberIDs(ctx context.Context, groupID uint) ([]uint, error)
	IsMember(ctx context.Context, groupID, studentID uint) (bool, error)
	ListSiblingMemberIDs(ctx context.Context, parentGroupID, excludeGroupID uint) ([]uint, error)
}

// PointAssigner is the slice of the scoring service the bulk fan-out
// needs.
type PointAssigner interface {
	AssignPoints(ctx context.Context, studentID, issuerID, typeID uint, value int, reason string) (domain.PointEvent, error)
}

type GroupService struct {
	repo       GroupRepository
	courseRepo CourseRepository
	scoring    PointAssigner
}

func NewGroupService(repo GroupRepository, courseRepo CourseRepository, scoring PointAssigner) *GroupService {
	return &GroupService{
		repo:       repo,
		courseRepo: courseRepo,
		scoring:    scoring,
	}
}

// CreateGeneralFromCourse creates the course's single general group
// and enrolls every current student of the course.
func (s *GroupService) CreateGeneralFromCourse(ctx context.Context, courseID, creatorID uint) (domain.Group, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.courseRepo.FindByID -> %w", err)
	}

	_, err = s.repo.FindGeneralByCourse(ctx, courseID)
	if err == nil {
		return domain.Group{}, ErrGeneralGroupExists
	}
	if !errors.Is(err, ErrGroupNotFound) {
		return domain.Group{}, fmt.Errorf("s.repo.FindGeneralByCourse -> %w", err)
	}

	students, err := s.courseRepo.ListStudents(ctx, courseID)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.courseRepo.ListStudents -> %w", err)
	}
	if len(students) == 0 {
		return domain.Group{}, ErrCourseHasNoStudents
	}

	ids := make([]uint, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}

	group, err := s.repo.CreateWithMembers(ctx, domain.Group{
		Name:      course.Name,
		Type:      domain.GroupTypeGeneral,
		CourseID:  &course.ID,
		CreatedBy: creatorID,
	}, ids)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.CreateWithMembers -> %w", err)
	}

	return group, nil
}

// CreateSubgroup carves a named subset out of a general group. Every
// requested student must already be a member of the parent; the first
// one that is not aborts the operation by id.
func (s *GroupService) CreateSubgroup(ctx context.Context, parentGroupID uint, name string, studentIDs []uint, creatorID uint) (domain.Group, error) {
	parent, err := s.repo.FindByID(ctx, parentGroupID)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if parent.Type != domain.GroupTypeGeneral {
		return domain.Group{}, ErrNotGeneralGroup
	}

	for _, studentID := range studentIDs {
		isMember, err := s.repo.IsMember(ctx, parent.ID, studentID)
		if err != nil {
			return domain.Group{}, fmt.Errorf("s.repo.IsMember -> %w", err)
		}
		if !isMember {
			return domain.Group{}, &StudentNotInParentError{StudentID: studentID}
		}
	}

	group, err := s.repo.CreateWithMembers(ctx, domain.Group{
		Name:          name,
		Type:          domain.GroupTypeSubgroup,
		CourseID:      parent.CourseID,
		ParentGroupID: &parent.ID,
		CreatedBy:     creatorID,
	}, studentIDs)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.CreateWithMembers -> %w", err)
	}

	return group, nil
}

// CreateIndependent bootstraps a new course, its students and the
// group holding them in one transaction. This is the only path that
// creates a course as a side effect of group creation.
func (s *GroupService) CreateIndependent(ctx context.Context, input domain.IndependentGroupInput, creatorID uint) (domain.Group, []domain.Student, error) {
	if len(input.StudentNames) == 0 {
		return domain.Group{}, nil, ErrCourseHasNoStudents
	}

	course := domain.Course{
		Name:           input.CourseName,
		Level:          input.Level,
		AcademicPeriod: input.AcademicPeriod,
		TeacherID:      creatorID,
	}

	group, students, err := s.repo.CreateIndependent(ctx, course, input.StudentNames, domain.Group{
		Name:      input.GroupName,
		Type:      domain.GroupTypeIndependent,
		CreatedBy: creatorID,
	})
	if err != nil {
		return domain.Group{}, nil, fmt.Errorf("s.repo.CreateIndependent -> %w", err)
	}

	return group, students, nil
}

func (s *GroupService) GetGroup(ctx context.Context, id uint) (domain.Group, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Group{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return group, nil
}

func (s *GroupService) ListByCourse(ctx context.Context, courseID uint) ([]domain.Group, error) {
	groups, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByCourse -> %w", err)
	}

	return groups, nil
}

func (s *GroupService) ListMemberIDs(ctx context.Context, groupID uint) ([]uint, error) {
	if _, err := s.repo.FindByID(ctx, groupID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	ids, err := s.repo.ListMemberIDs(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListMemberIDs -> %w", err)
	}

	return ids, nil
}

// AddMember enrolls one student; subgroups re-check the
// subset-of-parent invariant for the newcomer.
func (s *GroupService) AddMember(ctx context.Context, groupID, studentID uint) error {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if _, err := s.courseRepo.FindStudentByID(ctx, studentID); err != nil {
		return fmt.Errorf("s.courseRepo.FindStudentByID -> %w", err)
	}

	if group.Type == domain.GroupTypeSubgroup && group.ParentGroupID != nil {
		isMember, err := s.repo.IsMember(ctx, *group.ParentGroupID, studentID)
		if err != nil {
			return fmt.Errorf("s.repo.IsMember -> %w", err)
		}
		if !isMember {
			return &StudentNotInParentError{StudentID: studentID}
		}
	}

	if err := s.repo.AddMember(ctx, groupID, studentID); err != nil {
		return fmt.Errorf("s.repo.AddMember -> %w", err)
	}

	return nil
}

func (s *GroupService) RemoveMember(ctx context.Context, groupID, studentID uint) error {
	if _, err := s.repo.FindByID(ctx, groupID); err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := s.repo.RemoveMember(ctx, groupID, studentID); err != nil {
		return fmt.Errorf("s.repo.RemoveMember -> %w", err)
	}

	return nil
}

// ReplaceMembership drops the group's membership and recreates it from
// studentIDs. Subgroups re-validate the subset-of-parent invariant
// first. Rows are recreated, not diffed, so timestamps are fresh.
func (s *GroupService) ReplaceMembership(ctx context.Context, groupID uint, studentIDs []uint) error {
	group, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if group.Type == domain.GroupTypeSubgroup && group.ParentGroupID != nil {
		for _, studentID := range studentIDs {
			isMember, err := s.repo.IsMember(ctx, *group.ParentGroupID, studentID)
			if err != nil {
				return fmt.Errorf("s.repo.IsMember -> %w", err)
			}
			if !isMember {
				return &StudentNotInParentError{StudentID: studentID}
			}
		}
	}

	if err := s.repo.ReplaceMembers(ctx, groupID, studentIDs); err != nil {
		return fmt.Errorf("s.repo.ReplaceMembers -> %w", err)
	}

	return nil
}

// Delete refuses while subgroups still point at the group; no cascade.
func (s *GroupService) Delete(ctx context.Context, groupID uint) error {
	if _, err := s.repo.FindByID(ctx, groupID); err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	subgroups, err := s.repo.ListSubgroups(ctx, groupID)
	if err != nil {
		return fmt.Errorf("s.repo.ListSubgroups -> %w", err)
	}
	if len(subgroups) > 0 {
		return ErrGroupHasSubgroups
	}

	if err := s.repo.Delete(ctx, groupID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// ListExcludedFromSubgroups returns parent members already taken by a
// sibling subgroup. Advisory only: nothing in the store stops a
// student from sitting in two sibling subgroups, the editor consults
// this list to avoid it.
func (s *GroupService) ListExcludedFromSubgroups(ctx context.Context, parentGroupID, excludeSubgroupID uint) ([]uint, error) {
	parent, err := s.repo.FindByID(ctx, parentGroupID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if parent.Type != domain.GroupTypeGeneral {
		return nil, ErrNotGeneralGroup
	}

	ids, err := s.repo.ListSiblingMemberIDs(ctx, parentGroupID, excludeSubgroupID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListSiblingMemberIDs -> %w", err)
	}

	return ids, nil
}

// BulkAssignPoints fans out one assignment per member, sequentially
// and best-effort: a failing member is counted and skipped, never
// aborting the batch. A stale-summary report still counts as success
// because the ledger write went through.
func (s *GroupService) BulkAssignPoints(ctx context.Context, groupID, typeID uint, value int, reason string, issuerID uint) (domain.BulkAssignResult, error) {
	if _, err := s.repo.FindByID(ctx, groupID); err != nil {
		return domain.BulkAssignResult{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	memberIDs, err := s.repo.ListMemberIDs(ctx, groupID)
	if err != nil {
		return domain.BulkAssignResult{}, fmt.Errorf("s.repo.ListMemberIDs -> %w", err)
	}

	var result domain.BulkAssignResult
	for _, studentID := range memberIDs {
		_, err := s.scoring.AssignPoints(ctx, studentID, issuerID, typeID, value, reason)
		if err != nil && !errors.Is(err, ErrSummaryStale) {
			zap.L().Warn("bulk point assignment failed for member",
				zap.Uint("group_id", groupID),
				zap.Uint("student_id", studentID),
				zap.Error(err))
			result.FailCount++
			continue
		}

		result.SuccessCount++
	}

	return result, nil
}
