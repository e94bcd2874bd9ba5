package config

import (
	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFileProperty names the file property of inputs or outputs given as a plain list.
const DefaultFileProperty = "files"

// Incrfile represents the structure of the incr.yaml configuration file.
type Incrfile struct {
	Version           string              `yaml:"version"`
	Root              string              `yaml:"root"`
	MaxChangeMessages *int                `yaml:"maxChangeMessages"`
	Tools             map[string]string   `yaml:"tools"`
	Tasks             map[string]*TaskDTO `yaml:"tasks"`
}

// TaskDTO represents a task definition in the configuration.
type TaskDTO struct {
	Cmd                     []string          `yaml:"cmd"`
	Inputs                  FileProperties    `yaml:"inputs"`
	Outputs                 FileProperties    `yaml:"outputs"`
	Properties              map[string]string `yaml:"properties"`
	Environment             map[string]string `yaml:"environment"`
	EnvFile                 string            `yaml:"envFile"`
	Tools                   []string          `yaml:"tools"`
	DependsOn               []string          `yaml:"dependsOn"`
	WorkingDir              string            `yaml:"workingDir"`
	Incremental             bool              `yaml:"incremental"`
	AllowOverlappingOutputs bool              `yaml:"allowOverlappingOutputs"`
	Rebuild                 string            `yaml:"rebuild"`
}

// FileProperties maps property names to path patterns. A plain list is
// accepted as shorthand for a single property named DefaultFileProperty.
type FileProperties map[string][]string

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *FileProperties) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var paths []string
		if err := node.Decode(&paths); err != nil {
			return err
		}
		*p = FileProperties{DefaultFileProperty: paths}
		return nil
	case yaml.MappingNode:
		var props map[string][]string
		if err := node.Decode(&props); err != nil {
			return err
		}
		*p = props
		return nil
	default:
		return zerr.With(domain.ErrInvalidFileProperties, "line", node.Line)
	}
}
