package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// HandoverList names one of the handover record's lists.
type HandoverList string

const (
	HandoverProjects  HandoverList = "projects"
	HandoverClients   HandoverList = "clients"
	HandoverKnowledge HandoverList = "knowledge_items"
)

// HandoverLists lists the handover lists in display order.
var HandoverLists = []HandoverList{HandoverProjects, HandoverClients, HandoverKnowledge}

// Valid reports whether l is a known list.
func (l HandoverList) Valid() bool {
	return slices.Contains(HandoverLists, l)
}

// HandoverStatus is the state of one handover item.
type HandoverStatus string

const (
	HandoverNotStarted HandoverStatus = "not_started"
	HandoverInProgress HandoverStatus = "in_progress"
	HandoverCompleted  HandoverStatus = "completed"
)

// Valid reports whether s is a known status.
func (s HandoverStatus) Valid() bool {
	return s == HandoverNotStarted || s == HandoverInProgress || s == HandoverCompleted
}

// HandoverItem is one project, client relationship or knowledge item to hand over.
type HandoverItem struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	HandoverTo  *uuid.UUID     `json:"handover_to,omitempty"`
	Status      HandoverStatus `json:"status"`
	Notes       string         `json:"notes,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// HandoverDetail tracks the knowledge transfer of a leaving employee.
type HandoverDetail struct {
	ID                   uuid.UUID                        `json:"id"`
	RequestID            uuid.UUID                        `json:"request_id"`
	SuccessorID          *uuid.UUID                       `json:"successor_id,omitempty"`
	Lists                map[HandoverList][]*HandoverItem `json:"lists"`
	ListCompletion       map[HandoverList]float64         `json:"list_completion"`
	CompletionPercentage int                              `json:"completion_percentage"`
	Status               string                           `json:"status"`
	CreatedAt            time.Time                        `json:"created_at"`
	UpdatedAt            time.Time                        `json:"updated_at"`
}

// NewHandoverDetail creates an empty handover shell for a request.
func NewHandoverDetail(id, requestID uuid.UUID, at time.Time) *HandoverDetail {
	h := &HandoverDetail{
		ID:        id,
		RequestID: requestID,
		Lists:     map[HandoverList][]*HandoverItem{},
		CreatedAt: at,
		UpdatedAt: at,
	}
	h.Recompute()
	return h
}

// Recompute derives per-list completion, overall completion and status from the items.
func (h *HandoverDetail) Recompute() {
	h.ListCompletion = make(map[HandoverList]float64, len(HandoverLists))
	values := make([]float64, 0, len(HandoverLists))
	for _, list := range HandoverLists {
		c := ListCompletion(h.Lists[list], func(item *HandoverItem) bool {
			return item.Status == HandoverCompleted
		})
		h.ListCompletion[list] = c
		values = append(values, c)
	}
	h.CompletionPercentage, h.Status = RollUp(CompletionNotStarted, values...)
}

// Item returns the item with id in list, or nil.
func (h *HandoverDetail) Item(list HandoverList, id uuid.UUID) *HandoverItem {
	for _, item := range h.Lists[list] {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Upsert adds item to list or replaces the item with the same id.
func (h *HandoverDetail) Upsert(list HandoverList, item *HandoverItem) {
	if h.Lists == nil {
		h.Lists = map[HandoverList][]*HandoverItem{}
	}
	for i, existing := range h.Lists[list] {
		if existing.ID == item.ID {
			h.Lists[list][i] = item
			return
		}
	}
	h.Lists[list] = append(h.Lists[list], item)
}
