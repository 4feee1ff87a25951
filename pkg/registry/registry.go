// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nexus-talent/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry writes reg as indented JSON, creating the directory if needed.
func SaveRegistry(reg *ActivityRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Validate checks required fields, ID naming, uniqueness of IDs and task
// types, and that every declared schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	nodes := make(map[string]string)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if err := validation.ValidateActivityNaming(activity.ID); err != nil {
			return fmt.Errorf("activity %s: %w", activity.ID, err)
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if taskTypes[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		taskTypes[activity.TaskType] = true

		if activity.Node != "" {
			if !isGraphNode(activity.Node) {
				return fmt.Errorf("activity %s bound to unknown node %q", activity.ID, activity.Node)
			}
			if other, ok := nodes[activity.Node]; ok {
				return fmt.Errorf("node %s bound to both %s and %s", activity.Node, other, activity.ID)
			}
			nodes[activity.Node] = activity.ID
		}

		if c := activity.Cache; c != nil {
			if c.Namespace == "" {
				return fmt.Errorf("activity %s cache missing namespace", activity.ID)
			}
			if _, err := time.ParseDuration(c.TTL); err != nil {
				return fmt.Errorf("activity %s has invalid cache ttl %q", activity.ID, c.TTL)
			}
		}

		if activity.Timeout != "" {
			if _, err := time.ParseDuration(activity.Timeout); err != nil {
				return fmt.Errorf("activity %s has invalid timeout %q", activity.ID, activity.Timeout)
			}
		}
		for name, schema := range map[string]map[string]interface{}{
			"inputSchema":  activity.InputSchema,
			"outputSchema": activity.OutputSchema,
		} {
			if len(schema) == 0 {
				continue
			}
			raw, err := json.Marshal(schema)
			if err != nil {
				return fmt.Errorf("activity %s %s: %w", activity.ID, name, err)
			}
			if _, err := validation.NewSchema(string(raw)); err != nil {
				return fmt.Errorf("activity %s %s: %w", activity.ID, name, err)
			}
		}
	}
	return nil
}

func isGraphNode(node string) bool {
	for _, n := range GraphNodes {
		if n == node {
			return true
		}
	}
	return false
}

// FindByTaskType returns the activity bound to a Zeebe task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// FindByID returns the activity with the given ID.
func (r *ActivityRegistry) FindByID(id string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// InputValidator compiles the activity's input schema. It returns nil when
// the activity declares none.
func (a *Activity) InputValidator() (*validation.Schema, error) {
	if len(a.InputSchema) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(a.InputSchema)
	if err != nil {
		return nil, err
	}
	return validation.NewSchema(string(raw))
}
