package repository

import (
	"context"
	"fmt"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/repository/dao"
)

var (
	ErrGroupNotFound      = dao.ErrGroupNotFound
	ErrMembershipExists   = dao.ErrMembershipExists
	ErrMembershipNotFound = dao.ErrMembershipNotFound
)

type GroupDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Group, error)
	FindGeneralByCourse(ctx context.Context, courseID uint) (dao.Group, error)
	FindByCourse(ctx context.Context, courseID uint) ([]dao.Group, error)
	FindSubgroups(ctx context.Context, parentGroupID uint) ([]dao.Group, error)
	Delete(ctx context.Context, id uint) error
	InsertWithMembers(ctx context.Context, group dao.Group, studentIDs []uint) (dao.Group, error)
	InsertMembership(ctx context.Context, groupID, studentID uint) error
	DeleteMembership(ctx context.Context, groupID, studentID uint) error
	ReplaceMemberships(ctx context.Context, groupID uint, studentIDs []uint) error
	FindMemberIDs(ctx context.Context, groupID uint) ([]uint, error)
	MembershipExists(ctx context.Context, groupID, studentID uint) (bool, error)
	FindSiblingMemberIDs(ctx context.Context, parentGroupID, excludeGroupID uint) ([]uint, error)
	InsertIndependent(ctx context.Context, course dao.Course, studentNames []string, group dao.Group) (dao.Group, []dao.Student, error)
}

type GroupRepository struct {
	dao GroupDAO
}

func NewGroupRepository(dao GroupDAO) *GroupRepository {
	return &GroupRepository{
		dao: dao,
	}
}

func (r *GroupRepository) CreateWithMembers(ctx context.Context, group domain.Group, studentIDs []uint) (domain.Group, error) {
	created, err := r.dao.InsertWithMembers(ctx, r.domainToDao(group), studentIDs)
	if err != nil {
		return domain.Group{}, fmt.Errorf("r.dao.InsertWithMembers -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *GroupRepository) CreateIndependent(ctx context.Context, course domain.Course, studentNames []string, group domain.Group) (domain.Group, []domain.Student, error) {
	daoCourse := dao.Course{
		Name:           course.Name,
		Level:          course.Level,
		AcademicPeriod: course.AcademicPeriod,
		TeacherID:      course.TeacherID,
	}

	createdGroup, createdStudents, err := r.dao.InsertIndependent(ctx, daoCourse, studentNames, r.domainToDao(group))
	if err != nil {
		return domain.Group{}, nil, fmt.Errorf("r.dao.InsertIndependent -> %w", err)
	}

	students := make([]domain.Student, 0, len(createdStudents))
	for _, s := range createdStudents {
		students = append(students, domain.Student{
			ID:        s.ID,
			Name:      s.Name,
			CourseID:  s.CourseID,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return r.daoToDomain(createdGroup), students, nil
}

func (r *GroupRepository) FindByID(ctx context.Context, id uint) (domain.Group, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Group{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *GroupRepository) FindGeneralByCourse(ctx context.Context, courseID uint) (domain.Group, error) {
	found, err := r.dao.FindGeneralByCourse(ctx, courseID)
	if err != nil {
		return domain.Group{}, fmt.Errorf("r.dao.FindGeneralByCourse -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *GroupRepository) ListByCourse(ctx context.Context, courseID uint) ([]domain.Group, error) {
	found, err := r.dao.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCourse -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *GroupRepository) ListSubgroups(ctx context.Context, parentGroupID uint) ([]domain.Group, error) {
	found, err := r.dao.FindSubgroups(ctx, parentGroupID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindSubgroups -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *GroupRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

// AddMember pre-checks the unique pair so sqlite-backed tests surface
// the same sentinel the postgres unique index does.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, studentID uint) error {
	exists, err := r.dao.MembershipExists(ctx, groupID, studentID)
	if err != nil {
		return fmt.Errorf("r.dao.MembershipExists -> %w", err)
	}
	if exists {
		return ErrMembershipExists
	}

	if err := r.dao.InsertMembership(ctx, groupID, studentID); err != nil {
		return fmt.Errorf("r.dao.InsertMembership -> %w", err)
	}

	return nil
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, studentID uint) error {
	if err := r.dao.DeleteMembership(ctx, groupID, studentID); err != nil {
		return fmt.Errorf("r.dao.DeleteMembership -> %w", err)
	}

	return nil
}

func (r *GroupRepository) ReplaceMembers(ctx context.Context, groupID uint, studentIDs []uint) error {
	if err := r.dao.ReplaceMemberships(ctx, groupID, studentIDs); err != nil {
		return fmt.Errorf("r.dao.ReplaceMemberships -> %w", err)
	}

	return nil
}

func (r *GroupRepository) ListMemberIDs(ctx context.Context, groupID uint) ([]uint, error) {
	ids, err := r.dao.FindMemberIDs(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindMemberIDs -> %w", err)
	}

	return ids, nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, studentID uint) (bool, error) {
	exists, err := r.dao.MembershipExists(ctx, groupID, studentID)
	if err != nil {
		return false, fmt.Errorf("r.dao.MembershipExists -> %w", err)
	}

	return exists, nil
}

func (r *GroupRepository) ListSiblingMemberIDs(ctx context.Context, parentGroupID, excludeGroupID uint) ([]uint, error) {
	ids, err := r.dao.FindSiblingMemberIDs(ctx, parentGroupID, excludeGroupID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindSiblingMemberIDs -> %w", err)
	}

	return ids, nil
}

func (r *GroupRepository) domainToDao(g domain.Group) dao.Group {
	return dao.Group{
		ID:            g.ID,
		Name:          g.Name,
		Type:          string(g.Type),
		CourseID:      g.CourseID,
		ParentGroupID: g.ParentGroupID,
		CreatedBy:     g.CreatedBy,
	}
}

func (r *GroupRepository) daoToDomain(g dao.Group) domain.Group {
	return domain.Group{
		ID:            g.ID,
		Name:          g.Name,
		Type:          domain.GroupType(g.Type),
		CourseID:      g.CourseID,
		ParentGroupID: g.ParentGroupID,
		CreatedBy:     g.CreatedBy,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func (r *GroupRepository) daosToDomain(daoGroups []dao.Group) []domain.Group {
	groups := make([]domain.Group, 0, len(daoGroups))
	for _, g := range daoGroups {
		groups = append(groups, r.daoToDomain(g))
	}

	return groups
}
