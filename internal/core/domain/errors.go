package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrNoTargetsSpecified is returned when no targets are specified for the run command.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrReservedTaskName is returned when a task uses a reserved name (e.g., "all").
	ErrReservedTaskName = zerr.New("task name 'all' is reserved")

	// ErrInvalidRebuildStrategy is returned when a rebuild strategy is invalid.
	ErrInvalidRebuildStrategy = zerr.New("invalid rebuild strategy, expected 'always' or 'on-change'")

	// ErrInvalidTaskName is returned when a task name contains invalid characters.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrMissingTool is returned when a task references a tool alias that is not declared.
	ErrMissingTool = zerr.New("missing tool definition")

	// ErrInvalidFileProperties is returned when inputs or outputs are neither a list nor a mapping.
	ErrInvalidFileProperties = zerr.New("file properties must be a list of paths or a mapping of property names to paths")

	// ErrInvalidWorkingDir is returned when a task's working directory lies outside the project root.
	ErrInvalidWorkingDir = zerr.New("working directory is outside project root")

	// ErrInvalidMaxMessages is returned when the configured change message budget is not positive.
	ErrInvalidMaxMessages = zerr.New("maxChangeMessages must be greater than zero")

	// ErrHistoryCreateFailed is returned when the execution history directory cannot be created.
	ErrHistoryCreateFailed = zerr.New("failed to create execution history directory")

	// ErrHistoryReadFailed is returned when an execution record cannot be read.
	ErrHistoryReadFailed = zerr.New("failed to read execution history")

	// ErrHistoryUnmarshalFailed is returned when an execution record cannot be decoded.
	ErrHistoryUnmarshalFailed = zerr.New("failed to unmarshal execution history")

	// ErrHistoryMarshalFailed is returned when an execution record cannot be encoded.
	ErrHistoryMarshalFailed = zerr.New("failed to marshal execution history")

	// ErrHistoryWriteFailed is returned when an execution record cannot be written.
	ErrHistoryWriteFailed = zerr.New("failed to write execution history")

	// ErrHistoryClearFailed is returned when the execution history cannot be removed.
	ErrHistoryClearFailed = zerr.New("failed to clear execution history")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no config file exists in cwd or any parent.
	ErrConfigNotFound = zerr.New("could not find incr.yaml")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrSnapshotFailed is returned when the state of a task cannot be captured.
	ErrSnapshotFailed = zerr.New("failed to capture execution state")

	// ErrInputResolutionFailed is returned when input resolution fails.
	ErrInputResolutionFailed = zerr.New("failed to resolve inputs")

	// ErrInputNotFound is returned when a declared input pattern matches nothing.
	ErrInputNotFound = zerr.New("input not found")

	// ErrEnvFileReadFailed is returned when a task's env file cannot be read.
	ErrEnvFileReadFailed = zerr.New("failed to read env file")

	// ErrValueUnavailable is returned when an input property value cannot be compared.
	ErrValueUnavailable = zerr.New("input property value is unavailable")

	// ErrFingerprintUnavailable is returned when a file collection could not be fingerprinted.
	ErrFingerprintUnavailable = zerr.New("file fingerprint is unavailable")

	// ErrHistoryUpdateFailed is returned when persisting the execution record fails.
	ErrHistoryUpdateFailed = zerr.New("failed to update execution history")

	// ErrOutputPathOutsideRoot is returned when an output path is outside the project root.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside project root")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrFailedToCleanOutput is returned when cleaning an output file fails.
	ErrFailedToCleanOutput = zerr.New("failed to clean output file")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")
)
