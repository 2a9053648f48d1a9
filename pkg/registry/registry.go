// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// ByTaskType returns the activity registered for the task type, nil if none.
func (r *ActivityRegistry) ByTaskType(taskType string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i]
		}
	}
	return nil
}

// MissingTaskTypes returns registry task types that have no entry in the
// given list of registered workers.
func (r *ActivityRegistry) MissingTaskTypes(registered []string) []string {
	known := make(map[string]bool, len(registered))
	for _, taskType := range registered {
		known[taskType] = true
	}
	var missing []string
	for _, activity := range r.Activities {
		if !known[activity.TaskType] {
			missing = append(missing, activity.TaskType)
		}
	}
	return missing
}
