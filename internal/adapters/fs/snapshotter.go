package fs

import (
	"context"
	"encoding/hex"
	"errors"
	iofs "io/fs"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"github.com/joho/godotenv"
	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/blake3"
)

var _ ports.Snapshotter = (*Snapshotter)(nil)

const (
	// ShellImplementation is the implementation type name of command tasks.
	ShellImplementation = "shell"
	// EnvPropertyPrefix prefixes input properties derived from task environment variables.
	EnvPropertyPrefix = "env."
	// EnvFileProperty is the input property fingerprinting the task's env file.
	EnvFileProperty = "envFile"
)

// Snapshotter captures task execution state from the file system.
type Snapshotter struct {
	resolver ports.InputResolver
	hasher   ports.Hasher
	walker   *Walker
}

// NewSnapshotter creates a new Snapshotter.
func NewSnapshotter(resolver ports.InputResolver, hasher ports.Hasher, walker *Walker) *Snapshotter {
	return &Snapshotter{resolver: resolver, hasher: hasher, walker: walker}
}

// BeforeExecution captures the implementation, inputs and current outputs of task.
func (s *Snapshotter) BeforeExecution(
	ctx context.Context,
	root string,
	task *domain.Task,
) (*domain.BeforeExecutionState, error) {
	inputFiles, err := s.fingerprintAll(ctx, task.Inputs, func(patterns []string) domain.FileCollectionFingerprint {
		return s.fingerprintInputs(root, patterns)
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSnapshotFailed.Error()), "task", task.Name)
	}

	outputs, err := s.AfterExecution(ctx, root, task)
	if err != nil {
		return nil, err
	}

	return &domain.BeforeExecutionState{
		Implementation:            implementation(task),
		AdditionalImplementations: additionalImplementations(task),
		InputProperties:           inputProperties(root, task),
		InputFileProperties:       inputFiles,
		OutputFileProperties:      outputs,
	}, nil
}

// AfterExecution fingerprints the outputs of task. Output paths that do not
// exist contribute no files.
func (s *Snapshotter) AfterExecution(
	ctx context.Context,
	root string,
	task *domain.Task,
) (map[string]domain.FileCollectionFingerprint, error) {
	outputs, err := s.fingerprintAll(ctx, task.Outputs, func(paths []string) domain.FileCollectionFingerprint {
		return s.fingerprintOutputs(root, paths)
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSnapshotFailed.Error()), "task", task.Name)
	}
	return outputs, nil
}

// fingerprintAll fingerprints every property concurrently. Only cancellation
// is returned as an error; everything else is recorded on the fingerprint.
func (s *Snapshotter) fingerprintAll(
	ctx context.Context,
	properties map[string][]string,
	fingerprint func([]string) domain.FileCollectionFingerprint,
) (map[string]domain.FileCollectionFingerprint, error) {
	result := make(map[string]domain.FileCollectionFingerprint, len(properties))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for name, paths := range properties {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fp := fingerprint(paths)

			mu.Lock()
			result[name] = fp
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Snapshotter) fingerprintInputs(root string, patterns []string) domain.FileCollectionFingerprint {
	files, err := s.resolver.ResolveInputs(patterns, root)
	if err != nil {
		return domain.FileCollectionFingerprint{Err: err}
	}
	return s.fingerprintFiles(root, files)
}

func (s *Snapshotter) fingerprintOutputs(root string, paths []string) domain.FileCollectionFingerprint {
	var files []string
	for _, p := range paths {
		abs := filepath.Join(root, filepath.FromSlash(p))
		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return domain.FileCollectionFingerprint{
				Err: zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", p),
			}
		}

		if !info.IsDir() {
			files = append(files, filepath.ToSlash(filepath.Clean(p)))
			continue
		}
		for file, err := range s.walker.WalkFiles(abs) {
			if err != nil {
				return domain.FileCollectionFingerprint{
					Err: zerr.With(zerr.Wrap(err, domain.ErrSnapshotFailed.Error()), "path", p),
				}
			}
			rel, err := filepath.Rel(root, file)
			if err != nil {
				return domain.FileCollectionFingerprint{Err: err}
			}
			files = append(files, filepath.ToSlash(rel))
		}
	}
	slices.Sort(files)
	return s.fingerprintFiles(root, slices.Compact(files))
}

// fingerprintFiles hashes the root-relative files and summarizes them.
func (s *Snapshotter) fingerprintFiles(root string, files []string) domain.FileCollectionFingerprint {
	summary := blake3.New(32, nil)
	fingerprints := make([]domain.FileFingerprint, 0, len(files))

	for _, file := range files {
		hash, err := s.hasher.HashFile(filepath.Join(root, filepath.FromSlash(file)))
		if err != nil {
			return domain.FileCollectionFingerprint{Err: err}
		}
		fingerprints = append(fingerprints, domain.FileFingerprint{Path: file, Hash: hash})

		_, _ = summary.Write([]byte(file))
		_, _ = summary.Write([]byte{0})
		_, _ = summary.Write([]byte(hash))
		_, _ = summary.Write([]byte{0})
	}

	return domain.FileCollectionFingerprint{
		Hash:  hex.EncodeToString(summary.Sum(nil)),
		Files: fingerprints,
	}
}

func implementation(task *domain.Task) domain.ImplementationSnapshot {
	parts := append([]string{task.WorkingDir}, task.Command...)
	return domain.ImplementationSnapshot{TypeName: ShellImplementation, Hash: fingerprint(parts...)}
}

func additionalImplementations(task *domain.Task) []domain.ImplementationSnapshot {
	if len(task.Tools) == 0 {
		return nil
	}
	result := make([]domain.ImplementationSnapshot, 0, len(task.Tools))
	for _, alias := range slices.Sorted(maps.Keys(task.Tools)) {
		result = append(result, domain.ImplementationSnapshot{TypeName: alias, Hash: fingerprint(task.Tools[alias])})
	}
	return result
}

// inputProperties fingerprints declared properties, environment variables
// and the env file. Values are never stored in the clear.
func inputProperties(root string, task *domain.Task) map[string]domain.ValueSnapshot {
	result := make(map[string]domain.ValueSnapshot, len(task.Properties)+len(task.Environment)+1)
	for name, value := range task.Properties {
		result[name] = domain.ValueSnapshot{Fingerprint: fingerprint(value)}
	}
	for name, value := range task.Environment {
		result[EnvPropertyPrefix+name] = domain.ValueSnapshot{Fingerprint: fingerprint(value)}
	}

	if task.EnvFile != "" {
		result[EnvFileProperty] = envFileSnapshot(filepath.Join(root, filepath.FromSlash(task.EnvFile)))
	}
	return result
}

func envFileSnapshot(path string) domain.ValueSnapshot {
	values, err := godotenv.Read(path)
	if err != nil {
		return domain.ValueSnapshot{
			Err: zerr.With(zerr.Wrap(err, domain.ErrEnvFileReadFailed.Error()), "path", path),
		}
	}

	parts := make([]string, 0, 2*len(values))
	for _, key := range slices.Sorted(maps.Keys(values)) {
		parts = append(parts, key, values[key])
	}
	return domain.ValueSnapshot{Fingerprint: fingerprint(parts...)}
}

// fingerprint returns the hex encoded BLAKE3 hash of the NUL separated parts.
func fingerprint(parts ...string) string {
	h := blake3.New(32, nil)
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
