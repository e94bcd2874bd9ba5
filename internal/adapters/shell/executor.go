// Package shell provides a shell-based executor for running tasks.
package shell

import (
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// IncrementalEnvVar tells the command whether the INCR_<PROPERTY>_* variables
// describe a delta or the full set of input files.
const IncrementalEnvVar = "INCR_INCREMENTAL"

// Executor implements ports.Executor using os/exec.
type Executor struct{}

// NewExecutor creates a new shell Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs the task's command in its working directory.
//
// The environment is merged with the following priority (low to high):
//  1. allow-listed system variables
//  2. the task's env file
//  3. task.Environment
//  4. the INCR_* input change variables
func (e *Executor) Execute(
	ctx context.Context,
	root string,
	task *domain.Task,
	inputs domain.InputChanges,
	stdout, stderr io.Writer,
) error {
	if len(task.Command) == 0 {
		return nil
	}

	var fileEnv map[string]string
	if task.EnvFile != "" {
		path := filepath.Join(root, filepath.FromSlash(task.EnvFile))
		values, err := godotenv.Read(path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrEnvFileReadFailed.Error()), "path", path)
		}
		fileEnv = values
	}

	cmdEnv := resolveEnvironment(os.Environ(), fileEnv, task.Environment)
	cmdEnv = append(cmdEnv, inputChangesEnv(inputs)...)

	name := task.Command[0]
	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, task.Command[1:]...) //nolint:gosec // user provided command
	cmd.Args[0] = name
	cmd.Dir = filepath.Join(root, filepath.FromSlash(task.WorkingDir))
	cmd.Env = cmdEnv
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
	}
	return nil
}

// allowListedEnvVars are the system environment variables inherited by every
// task. Anything else has to be declared on the task.
var allowListedEnvVars = map[string]struct{}{
	"HOME": {},
	"TERM": {},
	"USER": {},
	"PATH": {},
}

// resolveEnvironment merges environment variables with the defined priority.
func resolveEnvironment(sysEnv []string, fileEnv, taskEnv map[string]string) []string {
	envMap := filterSystemEnv(sysEnv)
	maps.Copy(envMap, fileEnv)
	maps.Copy(envMap, taskEnv)

	result := make([]string, 0, len(envMap))
	for _, k := range slices.Sorted(maps.Keys(envMap)) {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	return envMap
}

// inputChangesEnv exports the input view as INCR_INCREMENTAL and, per input
// file property, INCR_<PROPERTY>_ADDED, _MODIFIED and _REMOVED.
func inputChangesEnv(inputs domain.InputChanges) []string {
	env := []string{IncrementalEnvVar + "=" + strconv.FormatBool(inputs.IsIncremental())}

	for _, property := range inputs.Properties() {
		byType := map[domain.ChangeType][]string{}
		for _, change := range inputs.FileChanges(property) {
			byType[change.Type] = append(byType[change.Type], change.Path)
		}

		prefix := "INCR_" + envName(property) + "_"
		for _, kind := range []domain.ChangeType{domain.Added, domain.Modified, domain.Removed} {
			value := strings.Join(byType[kind], string(os.PathListSeparator))
			env = append(env, prefix+strings.ToUpper(kind.String())+"="+value)
		}
	}
	return env
}

// envName upper-cases property and replaces everything that is not a letter
// or digit with an underscore.
func envName(property string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, property)
}

// lookPath searches for an executable in the directories named by the PATH environment variable.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
