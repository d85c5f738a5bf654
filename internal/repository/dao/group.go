package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrMembershipExists   = errors.New("student is already a member of the group")
	ErrMembershipNotFound = errors.New("group membership not found")
)

type Group struct {
	ID uint `gorm:"primaryKey"`

	Name          string `gorm:"not null"`
	Type          string `gorm:"not null"` // "general", "subgroup", or "independent"
	CourseID      *uint  `gorm:"index"`
	ParentGroupID *uint  `gorm:"index"`
	CreatedBy     uint   `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type GroupMembership struct {
	ID uint `gorm:"primaryKey"`

	GroupID   uint    `gorm:"uniqueIndex:idx_group_student;not null"`
	Group     Group   `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	StudentID uint    `gorm:"uniqueIndex:idx_group_student;not null"`
	Student   Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
}

type GroupDAO struct {
	db *gorm.DB
}

func NewGroupDAO(db *gorm.DB) *GroupDAO {
	return &GroupDAO{
		db: db,
	}
}

func (d *GroupDAO) FindByID(ctx context.Context, id uint) (Group, error) {
	var group Group

	result := d.db.WithContext(ctx).First(&group, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Group{}, ErrGroupNotFound
		}

		return Group{}, result.Error
	}

	return group, nil
}

func (d *GroupDAO) FindGeneralByCourse(ctx context.Context, courseID uint) (Group, error) {
	var group Group

	result := d.db.WithContext(ctx).
		First(&group, "course_id = ? AND type = ?", courseID, "general")
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Group{}, ErrGroupNotFound
		}

		return Group{}, result.Error
	}

	return group, nil
}

func (d *GroupDAO) FindByCourse(ctx context.Context, courseID uint) ([]Group, error) {
	var groups []Group

	result := d.db.WithContext(ctx).Where("course_id = ?", courseID).Order("id").Find(&groups)
	if result.Error != nil {
		return nil, result.Error
	}

	return groups, nil
}

func (d *GroupDAO) FindSubgroups(ctx context.Context, parentGroupID uint) ([]Group, error) {
	var groups []Group

	result := d.db.WithContext(ctx).Where("parent_group_id = ?", parentGroupID).Order("id").Find(&groups)
	if result.Error != nil {
		return nil, result.Error
	}

	return groups, nil
}

func (d *GroupDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&GroupMembership{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Group{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrGroupNotFound
		}

		return nil
	})
}

// InsertWithMembers creates the group and its membership rows in one
// transaction.
func (d *GroupDAO) InsertWithMembers(ctx context.Context, group Group, studentIDs []uint) (Group, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		return insertMemberships(tx, group.ID, studentIDs)
	})
	if err != nil {
		return Group{}, err
	}

	return group, nil
}

func (d *GroupDAO) InsertMembership(ctx context.Context, groupID, studentID uint) error {
	return insertMemberships(d.db.WithContext(ctx), groupID, []uint{studentID})
}

func (d *GroupDAO) DeleteMembership(ctx context.Context, groupID, studentID uint) error {
	result := d.db.WithContext(ctx).
		Where("group_id = ? AND student_id = ?", groupID, studentID).
		Delete(&GroupMembership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}

	return nil
}

// ReplaceMemberships drops every membership row of the group and
// recreates the new set with fresh timestamps. It is deliberately not
// a diff.
func (d *GroupDAO) ReplaceMemberships(ctx context.Context, groupID uint, studentIDs []uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&GroupMembership{}).Error; err != nil {
			return err
		}

		return insertMemberships(tx, groupID, studentIDs)
	})
}

func (d *GroupDAO) FindMemberIDs(ctx context.Context, groupID uint) ([]uint, error) {
	var ids []uint

	result := d.db.WithContext(ctx).Model(&GroupMembership{}).
		Where("group_id = ?", groupID).
		Order("student_id").
		Pluck("student_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}

func (d *GroupDAO) MembershipExists(ctx context.Context, groupID, studentID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&GroupMembership{}).
		Where("group_id = ? AND student_id = ?", groupID, studentID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// FindSiblingMemberIDs returns ids of students that belong to some
// subgroup of parentGroupID other than excludeGroupID (0 excludes
// nothing).
func (d *GroupDAO) FindSiblingMemberIDs(ctx context.Context, parentGroupID, excludeGroupID uint) ([]uint, error) {
	var ids []uint

	query := d.db.WithContext(ctx).Model(&GroupMembership{}).
		Joins("JOIN groups ON groups.id = group_memberships.group_id").
		Where("groups.parent_group_id = ?", parentGroupID)
	if excludeGroupID > 0 {
		query = query.Where("groups.id <> ?", excludeGroupID)
	}

	result := query.Distinct().Order("student_id").Pluck("group_memberships.student_id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}

	return ids, nil
}

// InsertIndependent bootstraps a course, its students and the group
// holding them as a single transaction. The course is created as a
// side effect on purpose; no other path does this.
func (d *GroupDAO) InsertIndependent(ctx context.Context, course Course, studentNames []string, group Group) (Group, []Student, error) {
	var students []Student

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&course).Error; err != nil {
			return err
		}

		students = make([]Student, 0, len(studentNames))
		for _, name := range studentNames {
			student := Student{Name: name, CourseID: &course.ID}
			if err := tx.Create(&student).Error; err != nil {
				return err
			}
			students = append(students, student)
		}

		group.CourseID = &course.ID
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		ids := make([]uint, 0, len(students))
		for _, student := range students {
			ids = append(ids, student.ID)
		}

		return insertMemberships(tx, group.ID, ids)
	})
	if err != nil {
		return Group{}, nil, err
	}

	return group, students, nil
}

func insertMemberships(tx *gorm.DB, groupID uint, studentIDs []uint) error {
	for _, studentID := range studentIDs {
		membership := GroupMembership{GroupID: groupID, StudentID: studentID}
		if err := tx.Create(&membership).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return ErrMembershipExists
			}

			return err
		}
	}

	return nil
}
