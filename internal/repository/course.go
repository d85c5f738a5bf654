package repository

import (
	"context"
	"fmt"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/repository/dao"
)

var (
	ErrCourseNotFound  = dao.ErrCourseNotFound
	ErrStudentNotFound = dao.ErrStudentNotFound
)

type CourseDAO interface {
	Insert(ctx context.Context, course dao.Course) (dao.Course, error)
	FindByID(ctx context.Context, id uint) (dao.Course, error)
	FindByTeacher(ctx context.Context, teacherID uint) ([]dao.Course, error)
	InsertStudent(ctx context.Context, student dao.Student) (dao.Student, error)
	FindStudentByID(ctx context.Context, id uint) (dao.Student, error)
	FindStudentsByCourse(ctx context.Context, courseID uint) ([]dao.Student, error)
}

type CourseRepository struct {
	dao CourseDAO
}

func NewCourseRepository(dao CourseDAO) *CourseRepository {
	return &CourseRepository{
		dao: dao,
	}
}

func (r *CourseRepository) Create(ctx context.Context, course domain.Course) (domain.Course, error) {
	created, err := r.dao.Insert(ctx, dao.Course{
		Name:           course.Name,
		Level:          course.Level,
		AcademicPeriod: course.AcademicPeriod,
		TeacherID:      course.TeacherID,
	})
	if err != nil {
		return domain.Course{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id uint) (domain.Course, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Course{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]domain.Course, error) {
	found, err := r.dao.FindByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByTeacher -> %w", err)
	}

	courses := make([]domain.Course, 0, len(found))
	for _, c := range found {
		courses = append(courses, r.daoToDomain(c))
	}

	return courses, nil
}

func (r *CourseRepository) CreateStudent(ctx context.Context, student domain.Student) (domain.Student, error) {
	created, err := r.dao.InsertStudent(ctx, dao.Student{
		Name:     student.Name,
		CourseID: student.CourseID,
	})
	if err != nil {
		return domain.Student{}, fmt.Errorf("r.dao.InsertStudent -> %w", err)
	}

	return r.studentDaoToDomain(created), nil
}

func (r *CourseRepository) FindStudentByID(ctx context.Context, id uint) (domain.Student, error) {
	found, err := r.dao.FindStudentByID(ctx, id)
	if err != nil {
		return domain.Student{}, fmt.Errorf("r.dao.FindStudentByID -> %w", err)
	}

	return r.studentDaoToDomain(found), nil
}

func (r *CourseRepository) ListStudents(ctx context.Context, courseID uint) ([]domain.Student, error) {
	found, err := r.dao.FindStudentsByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindStudentsByCourse -> %w", err)
	}

	students := make([]domain.Student, 0, len(found))
	for _, s := range found {
		students = append(students, r.studentDaoToDomain(s))
	}

	return students, nil
}

func (r *CourseRepository) daoToDomain(c dao.Course) domain.Course {
	return domain.Course{
		ID:             c.ID,
		Name:           c.Name,
		Level:          c.Level,
		AcademicPeriod: c.AcademicPeriod,
		TeacherID:      c.TeacherID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (r *CourseRepository) studentDaoToDomain(s dao.Student) domain.Student {
	return domain.Student{
		ID:        s.ID,
		Name:      s.Name,
		CourseID:  s.CourseID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
