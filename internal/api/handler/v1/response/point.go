package response

type BulkAssignResponse struct {
	Message      string `json:"message"`
	SuccessCount int    `json:"success_count"`
	FailCount    int    `json:"fail_count"`
}

type ExcludedStudentsResponse struct {
	StudentIDs []uint `json:"student_ids"`
}

type GroupMembersResponse struct {
	GroupID    uint   `json:"group_id"`
	StudentIDs []uint `json:"student_ids"`
}
