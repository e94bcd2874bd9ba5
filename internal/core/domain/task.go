package domain

import "fmt"

// RebuildStrategy controls whether a task may be skipped when nothing changed.
type RebuildStrategy string

const (
	// RebuildOnChange skips the task when its recorded state matches the current one.
	RebuildOnChange RebuildStrategy = "on-change"
	// RebuildAlways executes the task on every run.
	RebuildAlways RebuildStrategy = "always"
)

// Task represents a unit of work in the build system.
type Task struct {
	Name    string
	Command []string

	// Inputs maps an input file property name to the patterns it resolves.
	Inputs map[string][]string
	// Outputs maps an output property name to the paths the task produces.
	Outputs map[string][]string
	// Properties are non-file inputs compared by value between runs.
	Properties map[string]string

	Environment  map[string]string
	EnvFile      string
	Tools        map[string]string
	Dependencies []string
	WorkingDir   string

	// Incremental marks tasks whose command understands the INCR_* delta variables.
	Incremental             bool
	AllowOverlappingOutputs bool
	Rebuild                 RebuildStrategy
}

// DisplayName returns the human readable name used in change messages.
func (t *Task) DisplayName() string {
	return fmt.Sprintf("task '%s'", t.Name)
}
