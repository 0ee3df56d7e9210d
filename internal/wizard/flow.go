package wizard

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed flows.yaml
var flowsYAML []byte

// FieldKind controls how a field is rendered and parsed
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumber   FieldKind = "number"
	KindTextarea FieldKind = "textarea"
)

// Field is one input of a wizard step
type Field struct {
	Name     string    `yaml:"name"`
	Label    string    `yaml:"label"`
	Required bool      `yaml:"required"`
	Kind     FieldKind `yaml:"kind"`
}

// Step is one page of a wizard
type Step struct {
	Title  string  `yaml:"title"`
	Fields []Field `yaml:"fields"`
}

// Flow declares a creation wizard
type Flow struct {
	Name string `yaml:"name"`
	// Scope is the body key the parent id is sent under
	Scope    string         `yaml:"scope"`
	Defaults map[string]any `yaml:"defaults"`
	Steps    []Step         `yaml:"steps"`
}

// Total is the number of steps
func (f *Flow) Total() int {
	return len(f.Steps)
}

// defaults returns a fresh copy of the flow's default values
func (f *Flow) defaults() map[string]any {
	values := make(map[string]any, len(f.Defaults))
	for k, v := range f.Defaults {
		values[k] = v
	}
	return values
}

// ParseFlows decodes flow declarations
func ParseFlows(data []byte) (map[string]*Flow, error) {
	var flows []*Flow
	if err := yaml.Unmarshal(data, &flows); err != nil {
		return nil, fmt.Errorf("failed to parse wizard flows: %w", err)
	}

	byName := make(map[string]*Flow, len(flows))
	for _, flow := range flows {
		if flow.Name == "" || len(flow.Steps) == 0 {
			return nil, fmt.Errorf("wizard flow %q has no steps", flow.Name)
		}
		for _, step := range flow.Steps {
			for i, field := range step.Fields {
				switch field.Kind {
				case "":
					step.Fields[i].Kind = KindText
				case KindText, KindNumber, KindTextarea:
				default:
					return nil, fmt.Errorf("wizard flow %q: field %q has unknown kind %q", flow.Name, field.Name, field.Kind)
				}
			}
		}
		if flow.Defaults == nil {
			flow.Defaults = map[string]any{}
		}
		byName[flow.Name] = flow
	}
	return byName, nil
}

// Flows returns the shipped wizard flows
func Flows() (map[string]*Flow, error) {
	return ParseFlows(flowsYAML)
}
