package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateSubgroupRequest struct {
	Name       string `json:"name"`
	StudentIDs []uint `json:"student_ids"`
}

func (req *CreateSubgroupRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.StudentIDs, validation.Required, validation.Length(1, 0)),
	)
}

type CreateIndependentGroupRequest struct {
	GroupName      string   `json:"group_name"`
	CourseName     string   `json:"course_name"`
	Level          string   `json:"level"`
	AcademicPeriod string   `json:"academic_period"`
	StudentNames   []string `json:"student_names"`
}

func (req *CreateIndependentGroupRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.GroupName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.CourseName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.StudentNames, validation.Required, validation.Length(1, 0)),
	)
}

type ReplaceMembershipRequest struct {
	StudentIDs []uint `json:"student_ids"`
}

func (req *ReplaceMembershipRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.StudentIDs, validation.Required, validation.Length(1, 0)),
	)
}

type BulkAssignPointsRequest struct {
	ParticipationTypeID uint   `json:"participation_type_id"`
	Value               int    `json:"value"`
	Reason              string `json:"reason"`
}

func (req *BulkAssignPointsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ParticipationTypeID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Value, validation.Required, validation.Min(-100), validation.Max(100)),
		validation.Field(&req.Reason, validation.Length(0, 500)),
	)
}
