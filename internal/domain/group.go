package domain

import "time"

type GroupType string

const (
	GroupTypeGeneral     GroupType = "general"
	GroupTypeSubgroup    GroupType = "subgroup"
	GroupTypeIndependent GroupType = "independent"
)

type Group struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Type          GroupType `json:"type"`
	CourseID      *uint     `json:"course_id,omitempty"`
	ParentGroupID *uint     `json:"parent_group_id,omitempty"`
	CreatedBy     uint      `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IndependentGroupInput bootstraps a course, its students and the
// group that holds them in one operation.
type IndependentGroupInput struct {
	GroupName      string
	CourseName     string
	Level          string
	AcademicPeriod string
	StudentNames   []string
}

// BulkAssignResult reports a best-effort fan-out over group members.
type BulkAssignResult struct {
	SuccessCount int `json:"success_count"`
	FailCount    int `json:"fail_count"`
}
