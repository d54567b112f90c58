package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// TaskStatus is the derived progress label of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskVerified   TaskStatus = "verified"
)

// ChecklistItem is one boolean step of a task.
type ChecklistItem struct {
	ID     uuid.UUID  `json:"id"`
	Label  string     `json:"label"`
	Done   bool       `json:"done"`
	DoneBy *uuid.UUID `json:"done_by,omitempty"`
	DoneAt *time.Time `json:"done_at,omitempty"`
}

// OffboardingTask is one department action generated for a request.
type OffboardingTask struct {
	ID          uuid.UUID       `json:"id"`
	RequestID   uuid.UUID       `json:"request_id"`
	Department  Department      `json:"department"`
	TemplateKey string          `json:"template_key"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    Priority        `json:"priority"`
	DueDate     time.Time       `json:"due_date"`
	Checklist   []ChecklistItem `json:"checklist"`
	Status      TaskStatus      `json:"status"`
	IsCompleted bool            `json:"is_completed"`
	CompletedBy *uuid.UUID      `json:"completed_by,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	IsVerified  bool            `json:"is_verified"`
	VerifiedBy  *uuid.UUID      `json:"verified_by,omitempty"`
	VerifiedAt  *time.Time      `json:"verified_at,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TaskID derives a stable task id so regeneration for the same request yields the same ids.
func TaskID(requestID uuid.UUID, dept Department, key string) uuid.UUID {
	return uuid.NewSHA1(requestID, []byte(string(dept)+":"+key))
}

// ChecklistItemID derives a stable checklist item id from its task and position.
func ChecklistItemID(taskID uuid.UUID, index int) uuid.UUID {
	return uuid.NewSHA1(taskID, fmt.Appendf(nil, "item:%d", index))
}

// Recompute derives the task status from its flags and checklist.
func (t *OffboardingTask) Recompute() {
	switch {
	case t.IsVerified:
		t.Status = TaskVerified
	case t.IsCompleted:
		t.Status = TaskCompleted
	case t.checklistDone() > 0:
		t.Status = TaskInProgress
	default:
		t.Status = TaskPending
	}
}

func (t *OffboardingTask) checklistDone() int {
	n := 0
	for _, item := range t.Checklist {
		if item.Done {
			n++
		}
	}
	return n
}

// SetChecklistItem ticks or unticks one checklist step.
func (t *OffboardingTask) SetChecklistItem(itemID uuid.UUID, done bool, by uuid.UUID, at time.Time) error {
	for i := range t.Checklist {
		item := &t.Checklist[i]
		if item.ID != itemID {
			continue
		}
		item.Done = done
		if done {
			item.DoneBy = &by
			item.DoneAt = &at
		} else {
			item.DoneBy = nil
			item.DoneAt = nil
		}
		t.UpdatedAt = at
		t.Recompute()
		return nil
	}
	return ErrItemNotFound
}

// Complete marks the task and all its checklist steps done.
func (t *OffboardingTask) Complete(by uuid.UUID, at time.Time) {
	for i := range t.Checklist {
		if !t.Checklist[i].Done {
			t.Checklist[i].Done = true
			t.Checklist[i].DoneBy = &by
			t.Checklist[i].DoneAt = &at
		}
	}
	if !t.IsCompleted {
		t.IsCompleted = true
		t.CompletedBy = &by
		t.CompletedAt = &at
	}
	t.UpdatedAt = at
	t.Recompute()
}

// Reopen clears completion and verification.
func (t *OffboardingTask) Reopen(at time.Time) {
	t.IsCompleted = false
	t.CompletedBy = nil
	t.CompletedAt = nil
	t.IsVerified = false
	t.VerifiedBy = nil
	t.VerifiedAt = nil
	t.UpdatedAt = at
	t.Recompute()
}

// Verify records the department owner's verification, completing the task first if needed.
func (t *OffboardingTask) Verify(by uuid.UUID, at time.Time) {
	if !t.IsCompleted {
		t.Complete(by, at)
	}
	if !t.IsVerified {
		t.IsVerified = true
		t.VerifiedBy = &by
		t.VerifiedAt = &at
	}
	t.UpdatedAt = at
	t.Recompute()
}
