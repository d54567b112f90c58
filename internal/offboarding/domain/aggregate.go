package domain

// Completion states shared by the clearance and handover records.
const (
	CompletionPending    = "pending"
	CompletionNotStarted = "not_started"
	CompletionInProgress = "in_progress"
	CompletionCompleted  = "completed"
)

// ListCompletion returns the share of items in a terminal status, as a percentage.
// An empty list is complete.
func ListCompletion[T any](items []T, terminal func(T) bool) float64 {
	if len(items) == 0 {
		return 100
	}
	done := 0
	for _, item := range items {
		if terminal(item) {
			done++
		}
	}
	return float64(done) * 100 / float64(len(items))
}

// RollUp averages per-list completions into an overall percentage and a status label.
// idle is the label used when nothing has progressed yet.
func RollUp(idle string, lists ...float64) (int, string) {
	if len(lists) == 0 {
		return 100, CompletionCompleted
	}
	var sum float64
	for _, l := range lists {
		sum += l
	}
	mean := sum / float64(len(lists))
	// Only report 100 when every list is fully terminal, never through rounding.
	pct := int(mean)
	switch {
	case pct >= 100:
		return 100, CompletionCompleted
	case mean > 0:
		return pct, CompletionInProgress
	default:
		return 0, idle
	}
}
