package reportsvc

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// overviewDocument is the YAML export of both overviews.
type overviewDocument struct {
	Tasks TaskOverview `yaml:"task_overview"`
	Users UserOverview `yaml:"user_overview"`
}

// RenderYAML encodes both overviews as one YAML document.
func RenderYAML(tasks TaskOverview, users UserOverview) ([]byte, error) {
	data, err := yaml.Marshal(overviewDocument{Tasks: tasks, Users: users})
	if err != nil {
		return nil, fmt.Errorf("marshal overview: %w", err)
	}

	return data, nil
}
