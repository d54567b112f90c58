package service

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/allisson/exitflow/internal/offboarding/domain"
)

//go:embed task_templates.yaml
var defaultTaskTemplates []byte

// TaskTemplate is one row of the department template table.
type TaskTemplate struct {
	Key           string          `yaml:"key"`
	Title         string          `yaml:"title"`
	Description   string          `yaml:"description"`
	Priority      domain.Priority `yaml:"priority"`
	DaysBeforeLWD int             `yaml:"days_before_lwd"`
	Checklist     []string        `yaml:"checklist"`
}

// DepartmentTemplates groups the templates of one department.
type DepartmentTemplates struct {
	Name  domain.Department `yaml:"name"`
	Tasks []TaskTemplate    `yaml:"tasks"`
}

type templateFile struct {
	Departments []DepartmentTemplates `yaml:"departments"`
}

// TemplateTaskGenerator implements TaskGenerator from a static template table.
type TemplateTaskGenerator struct {
	departments []DepartmentTemplates
}

// NewTaskGenerator loads the template table from path, or the built-in table when path is empty.
func NewTaskGenerator(path string) (*TemplateTaskGenerator, error) {
	data := defaultTaskTemplates
	if path != "" {
		b, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("failed to read task templates: %w", err)
		}
		data = b
	}
	return ParseTaskTemplates(data)
}

// ParseTaskTemplates builds a generator from a YAML template table.
func ParseTaskTemplates(data []byte) (*TemplateTaskGenerator, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse task templates: %w", err)
	}

	seen := make(map[string]struct{})
	for _, dept := range file.Departments {
		if !dept.Name.Valid() {
			return nil, fmt.Errorf("task templates: unknown department %q", dept.Name)
		}
		for _, tpl := range dept.Tasks {
			id := string(dept.Name) + ":" + tpl.Key
			if tpl.Key == "" || tpl.Title == "" {
				return nil, fmt.Errorf("task templates: %s requires key and title", id)
			}
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("task templates: duplicate template %s", id)
			}
			if !tpl.Priority.Valid() {
				return nil, fmt.Errorf("task templates: %s has invalid priority %q", id, tpl.Priority)
			}
			if tpl.DaysBeforeLWD < 0 {
				return nil, fmt.Errorf("task templates: %s has negative days_before_lwd", id)
			}
			seen[id] = struct{}{}
		}
	}

	return &TemplateTaskGenerator{departments: file.Departments}, nil
}

// Templates returns the loaded template table.
func (g *TemplateTaskGenerator) Templates() []DepartmentTemplates {
	return g.departments
}

// Generate implements TaskGenerator.
func (g *TemplateTaskGenerator) Generate(
	requestID uuid.UUID,
	employeeName string,
	lastWorkingDay time.Time,
	createdAt time.Time,
) []*domain.OffboardingTask {
	var tasks []*domain.OffboardingTask
	for _, dept := range g.departments {
		for _, tpl := range dept.Tasks {
			id := domain.TaskID(requestID, dept.Name, tpl.Key)
			task := &domain.OffboardingTask{
				ID:          id,
				RequestID:   requestID,
				Department:  dept.Name,
				TemplateKey: tpl.Key,
				Title:       tpl.Title,
				Description: strings.ReplaceAll(tpl.Description, "{employee}", employeeName),
				Priority:    tpl.Priority,
				DueDate:     lastWorkingDay.AddDate(0, 0, -tpl.DaysBeforeLWD),
				Checklist:   make([]domain.ChecklistItem, 0, len(tpl.Checklist)),
				CreatedAt:   createdAt,
				UpdatedAt:   createdAt,
			}
			for i, label := range tpl.Checklist {
				task.Checklist = append(task.Checklist, domain.ChecklistItem{
					ID:    domain.ChecklistItemID(id, i),
					Label: label,
				})
			}
			task.Recompute()
			tasks = append(tasks, task)
		}
	}
	return tasks
}
