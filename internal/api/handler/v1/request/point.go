package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type AssignPointsRequest struct {
	StudentID           uint   `json:"student_id"`
	ParticipationTypeID uint   `json:"participation_type_id"`
	Value               int    `json:"value"`
	Reason              string `json:"reason"`
}

func (req *AssignPointsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.StudentID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.ParticipationTypeID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Value, validation.Required, validation.Min(-100), validation.Max(100)),
		validation.Field(&req.Reason, validation.Length(0, 500)),
	)
}

type UpdatePointRequest struct {
	ParticipationTypeID uint   `json:"participation_type_id"`
	Value               int    `json:"value"`
	Reason              string `json:"reason"`
}

func (req *UpdatePointRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ParticipationTypeID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Value, validation.Required, validation.Min(-100), validation.Max(100)),
		validation.Field(&req.Reason, validation.Length(0, 500)),
	)
}

type CreateParticipationTypeRequest struct {
	Name          string `json:"name"`
	DefaultPoints int    `json:"default_points"`
}

func (req *CreateParticipationTypeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.DefaultPoints, validation.Required, validation.Min(-100), validation.Max(100)),
	)
}

type UpdateParticipationTypeRequest struct {
	Name          string `json:"name"`
	DefaultPoints int    `json:"default_points"`
}

func (req *UpdateParticipationTypeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.DefaultPoints, validation.Required, validation.Min(-100), validation.Max(100)),
	)
}
