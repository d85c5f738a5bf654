package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateCourseRequest struct {
	Name           string `json:"name"`
	Level          string `json:"level"`
	AcademicPeriod string `json:"academic_period"`
}

func (req *CreateCourseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Level, validation.Length(0, 50)),
		validation.Field(&req.AcademicPeriod, validation.Length(0, 50)),
	)
}

type AddStudentRequest struct {
	Name string `json:"name"`
}

func (req *AddStudentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
	)
}
