// Package domain defines the offboarding aggregate, its satellite records and the
// pure functions that derive their computed fields.
package domain

import (
	"fmt"
	"slices"

	"github.com/allisson/exitflow/internal/errors"
)

// Stage is a node in the offboarding transition graph.
type Stage string

const (
	StageInitiation            Stage = "initiation"
	StageManagerApproval       Stage = "manager_approval"
	StageHRApproval            Stage = "hr_approval"
	StageFinanceApproval       Stage = "finance_approval"
	StageChecklistGeneration   Stage = "checklist_generation"
	StageDepartmentalClearance Stage = "departmental_clearance"
	StageAssetReturn           Stage = "asset_return"
	StageKnowledgeTransfer     Stage = "knowledge_transfer"
	StageFinalSettlement       Stage = "final_settlement"
	StageExitInterview         Stage = "exit_interview"
	StageClosure               Stage = "closure"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageInitiation,
	StageManagerApproval,
	StageHRApproval,
	StageFinanceApproval,
	StageChecklistGeneration,
	StageDepartmentalClearance,
	StageAssetReturn,
	StageKnowledgeTransfer,
	StageFinalSettlement,
	StageExitInterview,
	StageClosure,
}

// transitions is the fixed adjacency map. The first entry of each list is the forward edge;
// any other entry is a back-edge used for rejection or return-for-correction.
var transitions = map[Stage][]Stage{
	StageInitiation:            {StageManagerApproval},
	StageManagerApproval:       {StageHRApproval, StageInitiation},
	StageHRApproval:            {StageFinanceApproval, StageManagerApproval},
	StageFinanceApproval:       {StageChecklistGeneration, StageHRApproval},
	StageChecklistGeneration:   {StageDepartmentalClearance},
	StageDepartmentalClearance: {StageAssetReturn},
	StageAssetReturn:           {StageKnowledgeTransfer},
	StageKnowledgeTransfer:     {StageFinalSettlement},
	StageFinalSettlement:       {StageExitInterview},
	StageExitInterview:         {StageClosure},
	StageClosure:               {},
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Index returns the position of s in pipeline order, or -1.
func (s Stage) Index() int {
	return slices.Index(Stages, s)
}

// IsApproval reports whether s waits on an approver decision.
func (s Stage) IsApproval() bool {
	return s == StageManagerApproval || s == StageHRApproval || s == StageFinanceApproval
}

// NextStages returns the valid targets from s.
func NextStages(s Stage) []Stage {
	return slices.Clone(transitions[s])
}

// Forward returns the forward edge from s.
func (s Stage) Forward() (Stage, bool) {
	next := transitions[s]
	if len(next) == 0 {
		return "", false
	}
	return next[0], true
}

// CanTransition reports whether to is an edge from from.
func CanTransition(from, to Stage) bool {
	return slices.Contains(transitions[from], to)
}

// IsBackEdge reports whether the edge from → to moves backwards in the pipeline.
func IsBackEdge(from, to Stage) bool {
	return CanTransition(from, to) && to.Index() < from.Index()
}

// Status is the coarse, stage-derived label used for dashboards.
type Status string

const (
	StatusInitiated            Status = "initiated"
	StatusApprovalsPending     Status = "approvals_pending"
	StatusInProgress           Status = "in_progress"
	StatusClearanceInProgress  Status = "clearance_in_progress"
	StatusSettlementPending    Status = "settlement_pending"
	StatusExitInterviewPending Status = "exit_interview_pending"
	StatusClosed               Status = "closed"
	StatusCancelled            Status = "cancelled"
)

var stageStatus = map[Stage]Status{
	StageInitiation:            StatusInitiated,
	StageManagerApproval:       StatusApprovalsPending,
	StageHRApproval:            StatusApprovalsPending,
	StageFinanceApproval:       StatusApprovalsPending,
	StageChecklistGeneration:   StatusInProgress,
	StageDepartmentalClearance: StatusClearanceInProgress,
	StageAssetReturn:           StatusClearanceInProgress,
	StageKnowledgeTransfer:     StatusClearanceInProgress,
	StageFinalSettlement:       StatusSettlementPending,
	StageExitInterview:         StatusExitInterviewPending,
	StageClosure:               StatusClosed,
}

// StatusFor derives the status of a request sitting at stage s.
func StatusFor(s Stage) Status {
	return stageStatus[s]
}

// InvalidTransitionError reports an attempted move that is not an edge of the stage graph.
type InvalidTransitionError struct {
	From   Stage
	To     Stage
	Reason string
}

// Error implements error.
func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("invalid transition from %q", e.From)
	if e.To != "" {
		msg += fmt.Sprintf(" to %q", e.To)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap maps the error onto the invalid transition sentinel.
func (e *InvalidTransitionError) Unwrap() error {
	return errors.ErrInvalidTransition
}

// Diagnostics exposes the attempted edge.
func (e *InvalidTransitionError) Diagnostics() map[string]string {
	d := map[string]string{"from": string(e.From)}
	if e.To != "" {
		d["to"] = string(e.To)
	}
	return d
}

// ResolveTarget picks the stage a request moves to. An empty target means the forward edge.
func ResolveTarget(from, target Stage) (Stage, error) {
	next := transitions[from]
	if len(next) == 0 {
		return "", &InvalidTransitionError{From: from, To: target, Reason: "stage has no outgoing transitions"}
	}
	if target == "" {
		return next[0], nil
	}
	if !slices.Contains(next, target) {
		return "", &InvalidTransitionError{From: from, To: target, Reason: "target is not a valid next stage"}
	}
	return target, nil
}
