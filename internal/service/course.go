package service

import (
	"context"
	"fmt"

	"github.com/classtrack/participation-api/internal/domain"
	"github.com/classtrack/participation-api/internal/repository"
)

var ErrCourseNotFound = repository.ErrCourseNotFound

type CourseRepository interface {
	Create(ctx context.Context, course domain.Course) (domain.Course, error)
	FindByID(ctx context.Context, id uint) (domain.Course, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]domain.Course, error)
	CreateStudent(ctx context.Context, student domain.Student) (domain.Student, error)
	FindStudentByID(ctx context.Context, id uint) (domain.Student, error)
	ListStudents(ctx context.Context, courseID uint) ([]domain.Student, error)
}

type CourseService struct {
	repo CourseRepository
}

func NewCourseService(repo CourseRepository) *CourseService {
	return &CourseService{
		repo: repo,
	}
}

func (s *CourseService) CreateCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	created, err := s.repo.Create(ctx, course)
	if err != nil {
		return domain.Course{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id uint) (domain.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Course{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return course, nil
}

func (s *CourseService) ListCourses(ctx context.Context, teacherID uint) ([]domain.Course, error) {
	courses, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByTeacher -> %w", err)
	}

	return courses, nil
}

func (s *CourseService) AddStudent(ctx context.Context, courseID uint, name string) (domain.Student, error) {
	if _, err := s.repo.FindByID(ctx, courseID); err != nil {
		return domain.Student{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	student, err := s.repo.CreateStudent(ctx, domain.Student{
		Name:     name,
		CourseID: &courseID,
	})
	if err != nil {
		return domain.Student{}, fmt.Errorf("s.repo.CreateStudent -> %w", err)
	}

	return student, nil
}

func (s *CourseService) ListStudents(ctx context.Context, courseID uint) ([]domain.Student, error) {
	if _, err := s.repo.FindByID(ctx, courseID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	students, err := s.repo.ListStudents(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListStudents -> %w", err)
	}

	return students, nil
}
