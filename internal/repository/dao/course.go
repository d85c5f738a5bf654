package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrStudentNotFound = errors.New("student not found")
)

type Course struct {
	ID uint `gorm:"primaryKey"`

	Name           string `gorm:"not null"`
	Level          string
	AcademicPeriod string
	TeacherID      uint `gorm:"index;not null"`

	Students []Student `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Student struct {
	ID uint `gorm:"primaryKey"`

	Name     string `gorm:"not null"`
	CourseID *uint  `gorm:"index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type CourseDAO struct {
	db *gorm.DB
}

func NewCourseDAO(db *gorm.DB) *CourseDAO {
	return &CourseDAO{
		db: db,
	}
}

func (d *CourseDAO) Insert(ctx context.Context, course Course) (Course, error) {
	result := d.db.WithContext(ctx).Create(&course)
	if result.Error != nil {
		return Course{}, result.Error
	}

	return course, nil
}

func (d *CourseDAO) FindByID(ctx context.Context, id uint) (Course, error) {
	var course Course

	result := d.db.WithContext(ctx).First(&course, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Course{}, ErrCourseNotFound
		}

		return Course{}, result.Error
	}

	return course, nil
}

func (d *CourseDAO) FindByTeacher(ctx context.Context, teacherID uint) ([]Course, error) {
	var courses []Course

	result := d.db.WithContext(ctx).Where("teacher_id = ?", teacherID).Order("id").Find(&courses)
	if result.Error != nil {
		return nil, result.Error
	}

	return courses, nil
}

func (d *CourseDAO) InsertStudent(ctx context.Context, student Student) (Student, error) {
	result := d.db.WithContext(ctx).Create(&student)
	if result.Error != nil {
		return Student{}, result.Error
	}

	return student, nil
}

func (d *CourseDAO) FindStudentByID(ctx context.Context, id uint) (Student, error) {
	var student Student

	result := d.db.WithContext(ctx).First(&student, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Student{}, ErrStudentNotFound
		}

		return Student{}, result.Error
	}

	return student, nil
}

func (d *CourseDAO) FindStudentsByCourse(ctx context.Context, courseID uint) ([]Student, error) {
	var students []Student

	result := d.db.WithContext(ctx).Where("course_id = ?", courseID).Order("id").Find(&students)
	if result.Error != nil {
		return nil, result.Error
	}

	return students, nil
}
