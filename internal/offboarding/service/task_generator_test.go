package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/exitflow/internal/offboarding/domain"
)

func TestNewTaskGenerator_Default(t *testing.T) {
	gen, err := NewTaskGenerator("")
	require.NoError(t, err)

	var names []domain.Department
	for _, dept := range gen.Templates() {
		names = append(names, dept.Name)
		assert.NotEmpty(t, dept.Tasks)
	}
	assert.Equal(t, []domain.Department{
		domain.DepartmentHR,
		domain.DepartmentIT,
		domain.DepartmentFinance,
		domain.DepartmentAdmin,
	}, names)
}

func TestTemplateTaskGenerator_Generate(t *testing.T) {
	gen, err := NewTaskGenerator("")
	require.NoError(t, err)

	requestID := uuid.New()
	lwd := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := gen.Generate(requestID, "Ada Lovelace", lwd, createdAt)
	second := gen.Generate(requestID, "Ada Lovelace", lwd, createdAt)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)

	ids := make(map[uuid.UUID]struct{})
	for _, task := range first {
		ids[task.ID] = struct{}{}
		assert.Equal(t, requestID, task.RequestID)
		assert.Equal(t, domain.TaskPending, task.Status)
		assert.NotContains(t, task.Description, "{employee}")
		assert.False(t, task.DueDate.After(lwd))
		for i, item := range task.Checklist {
			assert.Equal(t, domain.ChecklistItemID(task.ID, i), item.ID)
		}
	}
	assert.Len(t, ids, len(first))

	var revocation *domain.OffboardingTask
	for _, task := range first {
		if task.TemplateKey == "access_revocation" {
			revocation = task
		}
	}
	require.NotNil(t, revocation)
	assert.Equal(t, domain.DepartmentIT, revocation.Department)
	assert.Equal(t, domain.PriorityCritical, revocation.Priority)
	assert.Equal(t, lwd, revocation.DueDate)
	assert.Contains(t, revocation.Description, "Ada Lovelace")

	other := gen.Generate(uuid.New(), "Ada Lovelace", lwd, createdAt)
	assert.NotEqual(t, first[0].ID, other[0].ID)
}

func TestParseTaskTemplates(t *testing.T) {
	t.Run("due date offset", func(t *testing.T) {
		gen, err := ParseTaskTemplates([]byte(`
departments:
  - name: finance
    tasks:
      - key: dues
        title: Clear dues
        priority: high
        days_before_lwd: 3
        checklist: [Reconcile advances]
`))
		require.NoError(t, err)

		lwd := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		tasks := gen.Generate(uuid.New(), "x", lwd, lwd)
		require.Len(t, tasks, 1)
		assert.Equal(t, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), tasks[0].DueDate)
		assert.Len(t, tasks[0].Checklist, 1)
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "departments: ["},
		{"unknown department", "departments:\n  - name: legal\n    tasks: []\n"},
		{"missing title", "departments:\n  - name: hr\n    tasks:\n      - key: a\n        priority: low\n"},
		{"invalid priority", "departments:\n  - name: hr\n    tasks:\n      - key: a\n        title: A\n        priority: urgent\n"},
		{
			"negative offset",
			"departments:\n  - name: hr\n    tasks:\n      - key: a\n        title: A\n        priority: low\n        days_before_lwd: -1\n",
		},
		{
			"duplicate key",
			"departments:\n  - name: hr\n    tasks:\n      - {key: a, title: A, priority: low}\n      - {key: a, title: B, priority: low}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTaskTemplates([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestNewTaskGenerator_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
departments:
  - name: it
    tasks:
      - {key: badge, title: Return badge, priority: low, days_before_lwd: 0}
`), 0o600))

	gen, err := NewTaskGenerator(path)
	require.NoError(t, err)
	require.Len(t, gen.Templates(), 1)

	_, err = NewTaskGenerator(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
