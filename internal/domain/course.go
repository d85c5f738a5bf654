package domain

import "time"

type Course struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Level          string    `json:"level"`
	AcademicPeriod string    `json:"academic_period"`
	TeacherID      uint      `json:"teacher_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Student struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CourseID  *uint     `json:"course_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
