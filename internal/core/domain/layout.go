package domain

import "path/filepath"

const (
	// IncrDirName is the name of the internal workspace directory.
	IncrDirName = ".incr"

	// HistoryDirName is the name of the execution history directory.
	HistoryDirName = "history"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "incr.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultHistoryPath returns the default path for the execution history store.
// It joins .incr and history.
func DefaultHistoryPath() string {
	return filepath.Join(IncrDirName, HistoryDirName)
}
