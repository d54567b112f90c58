package domain

// Progress is the derived completion view returned with every mutating call.
type Progress struct {
	CurrentStage             Stage          `json:"current_stage"`
	Status                   Status         `json:"status"`
	StagePercentage          int            `json:"stage_percentage"`
	DepartmentsCleared       int            `json:"departments_cleared"`
	DepartmentsTotal         int            `json:"departments_total"`
	TasksTotal               int            `json:"tasks_total"`
	TasksCompleted           int            `json:"tasks_completed"`
	TasksVerified            int            `json:"tasks_verified"`
	AssetClearancePercentage *int           `json:"asset_clearance_percentage,omitempty"`
	AssetClearanceStatus     string         `json:"asset_clearance_status,omitempty"`
	HandoverPercentage       *int           `json:"handover_percentage,omitempty"`
	HandoverStatus           string         `json:"handover_status,omitempty"`
	FeedbackStatus           string         `json:"feedback_status,omitempty"`
	SettlementStatus         string         `json:"settlement_status,omitempty"`
	SettlementApproval       ApprovalStatus `json:"settlement_approval,omitempty"`
	OverallPercentage        int            `json:"overall_percentage"`
}

// Records groups the satellites of one request. Any of them may be nil.
type Records struct {
	Tasks      []*OffboardingTask
	Assets     *AssetClearance
	Handover   *HandoverDetail
	Settlement *FinalSettlement
	Feedback   *ExitFeedback
}

// ComputeProgress rolls the request and its satellites into one progress view.
// The overall percentage averages the stage position with each tracked component.
func ComputeProgress(req *OffboardingRequest, rec Records) Progress {
	p := Progress{
		CurrentStage:       req.CurrentStage,
		Status:             req.Status,
		StagePercentage:    req.StageProgress(),
		DepartmentsCleared: req.ClearedDepartments(),
		DepartmentsTotal:   len(req.Clearances),
		TasksTotal:         len(rec.Tasks),
	}
	parts := []int{p.StagePercentage}

	if p.DepartmentsTotal > 0 {
		parts = append(parts, p.DepartmentsCleared*100/p.DepartmentsTotal)
	}
	for _, t := range rec.Tasks {
		if t.IsCompleted {
			p.TasksCompleted++
		}
		if t.IsVerified {
			p.TasksVerified++
		}
	}
	if p.TasksTotal > 0 {
		parts = append(parts, p.TasksCompleted*100/p.TasksTotal)
	}
	if rec.Assets != nil {
		pct := rec.Assets.CompletionPercentage
		p.AssetClearancePercentage = &pct
		p.AssetClearanceStatus = rec.Assets.OverallStatus
		parts = append(parts, pct)
	}
	if rec.Handover != nil {
		pct := rec.Handover.CompletionPercentage
		p.HandoverPercentage = &pct
		p.HandoverStatus = rec.Handover.Status
		parts = append(parts, pct)
	}
	if rec.Feedback != nil {
		p.FeedbackStatus = rec.Feedback.CompletionStatus
		switch rec.Feedback.CompletionStatus {
		case FeedbackCompleted:
			parts = append(parts, 100)
		case FeedbackPartial:
			parts = append(parts, 50)
		default:
			parts = append(parts, 0)
		}
	}
	if rec.Settlement != nil {
		p.SettlementStatus = string(rec.Settlement.CalculationStatus)
		p.SettlementApproval = rec.Settlement.ApprovalStatus
		if rec.Settlement.Locked() {
			parts = append(parts, 100)
		} else {
			parts = append(parts, 0)
		}
	}

	if req.IsCompleted {
		p.OverallPercentage = 100
		return p
	}
	sum := 0
	for _, v := range parts {
		sum += v
	}
	p.OverallPercentage = sum / len(parts)
	return p
}
