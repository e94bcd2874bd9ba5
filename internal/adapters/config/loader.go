// Package config provides the configuration loader for incr.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds incr.yaml in cwd or one of its parents and returns the task graph.
func (l *Loader) Load(cwd string) (*domain.Graph, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	var incrfile Incrfile
	if err := readAndUnmarshalYAML(configPath, &incrfile); err != nil {
		return nil, zerr.With(err, "file", configPath)
	}
	if incrfile.Version == "" {
		l.Logger.Warn(fmt.Sprintf("%s does not declare a version", domain.ConfigFileName))
	}

	g := domain.NewGraph()
	g.SetRoot(resolveRoot(configPath, incrfile.Root))

	if incrfile.MaxChangeMessages != nil {
		if *incrfile.MaxChangeMessages < 1 {
			return nil, zerr.With(domain.ErrInvalidMaxMessages, "maxChangeMessages", *incrfile.MaxChangeMessages)
		}
		g.SetMaxChangeMessages(*incrfile.MaxChangeMessages)
	}

	// Sorted so that the first reported error does not depend on map order.
	names := make([]string, 0, len(incrfile.Tasks))
	for name := range incrfile.Tasks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		dto := incrfile.Tasks[name]
		if dto == nil {
			dto = &TaskDTO{}
		}
		if err := validateTaskName(name); err != nil {
			return nil, err
		}
		for _, dep := range dto.DependsOn {
			if _, ok := incrfile.Tasks[dep]; !ok {
				return nil, zerr.With(zerr.With(domain.ErrMissingDependency, "missing_dependency", dep), "task", name)
			}
		}

		task, err := l.buildTask(g.Root(), name, dto, incrfile.Tools)
		if err != nil {
			return nil, zerr.With(err, "task", name)
		}
		if err := g.AddTask(task); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// DiscoverRoot returns the project root of the configuration found from cwd.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return "", err
	}

	var incrfile Incrfile
	if err := readAndUnmarshalYAML(configPath, &incrfile); err != nil {
		return "", zerr.With(err, "file", configPath)
	}
	return resolveRoot(configPath, incrfile.Root), nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func (l *Loader) buildTask(root, name string, dto *TaskDTO, tools map[string]string) (*domain.Task, error) {
	rebuild, err := parseRebuildStrategy(dto.Rebuild)
	if err != nil {
		return nil, err
	}

	taskTools, err := resolveTaskTools(dto.Tools, tools)
	if err != nil {
		return nil, err
	}

	workingDir, err := resolveTaskWorkingDir(root, dto.WorkingDir)
	if err != nil {
		return nil, err
	}

	if dto.Incremental && len(dto.Inputs) == 0 {
		l.Logger.Warn(fmt.Sprintf("task '%s' is incremental but declares no inputs", name))
	}

	return &domain.Task{
		Name:                    name,
		Command:                 dto.Cmd,
		Inputs:                  canonicalizeProperties(dto.Inputs),
		Outputs:                 canonicalizeProperties(dto.Outputs),
		Properties:              dto.Properties,
		Environment:             dto.Environment,
		EnvFile:                 dto.EnvFile,
		Tools:                   taskTools,
		Dependencies:            canonicalizeStrings(dto.DependsOn),
		WorkingDir:              workingDir,
		Incremental:             dto.Incremental,
		AllowOverlappingOutputs: dto.AllowOverlappingOutputs,
		Rebuild:                 rebuild,
	}, nil
}

func canonicalizeProperties(props FileProperties) map[string][]string {
	if len(props) == 0 {
		return nil
	}
	res := make(map[string][]string, len(props))
	for name, paths := range props {
		res[name] = canonicalizeStrings(paths)
	}
	return res
}

func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

func parseRebuildStrategy(s string) (domain.RebuildStrategy, error) {
	switch domain.RebuildStrategy(s) {
	case "", domain.RebuildOnChange:
		return domain.RebuildOnChange, nil
	case domain.RebuildAlways:
		return domain.RebuildAlways, nil
	default:
		return "", zerr.With(domain.ErrInvalidRebuildStrategy, "rebuild", s)
	}
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by walking up from cwd
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}

// validateTaskName checks if the task name is reserved or contains invalid characters.
func validateTaskName(name string) error {
	if name == "all" {
		return zerr.With(domain.ErrReservedTaskName, "task_name", name)
	}
	if name == "" || strings.ContainsAny(name, " \t/\\") {
		return zerr.With(domain.ErrInvalidTaskName, "task_name", name)
	}
	return nil
}

// resolveTaskTools maps tool aliases to their specifications.
func resolveTaskTools(aliases []string, tools map[string]string) (map[string]string, error) {
	if len(aliases) == 0 {
		return nil, nil
	}

	result := make(map[string]string, len(aliases))
	for _, alias := range aliases {
		spec, ok := tools[alias]
		if !ok {
			return nil, zerr.With(domain.ErrMissingTool, "tool_alias", alias)
		}
		result[alias] = spec
	}
	return result, nil
}

// resolveTaskWorkingDir returns the working directory relative to root,
// in slash form. It must not leave the project root.
func resolveTaskWorkingDir(root, configured string) (string, error) {
	if configured == "" {
		return ".", nil
	}

	abs := configured
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, configured)
	}
	rel, err := filepath.Rel(root, filepath.Clean(abs))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", zerr.With(domain.ErrInvalidWorkingDir, "workingDir", configured)
	}
	return filepath.ToSlash(rel), nil
}
