package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// ImplementationSnapshot identifies the code that performs a unit of work.
type ImplementationSnapshot struct {
	TypeName string `json:"type_name"`
	Hash     string `json:"hash,omitzero"`
}

// String renders the snapshot as TypeName@Hash.
func (s ImplementationSnapshot) String() string {
	if s.Hash == "" {
		return s.TypeName
	}
	return s.TypeName + "@" + s.Hash
}

// ValueSnapshot is the fingerprint of a single non-file input property.
// Err is set when the value could not be captured; it is never persisted.
type ValueSnapshot struct {
	Fingerprint string `json:"fingerprint"`
	Err         error  `json:"-"`
}

// Equal reports whether both snapshots describe the same value.
// It fails if either side could not be captured.
func (v ValueSnapshot) Equal(other ValueSnapshot) (bool, error) {
	if v.Err != nil {
		return false, zerr.Wrap(v.Err, ErrValueUnavailable.Error())
	}
	if other.Err != nil {
		return false, zerr.Wrap(other.Err, ErrValueUnavailable.Error())
	}
	return v.Fingerprint == other.Fingerprint, nil
}

// FileFingerprint is the content identity of one file, keyed by its
// slash-separated path relative to the project root.
type FileFingerprint struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// FileCollectionFingerprint is the ordered set of file fingerprints of one
// file property. Hash summarizes all entries and is empty when unknown.
// Err is set when the collection could not be captured; it is never persisted.
type FileCollectionFingerprint struct {
	Hash  string            `json:"hash,omitzero"`
	Files []FileFingerprint `json:"files,omitempty"`
	Err   error             `json:"-"`
}

// Entries returns the fingerprints in their recorded order.
func (f FileCollectionFingerprint) Entries() ([]FileFingerprint, error) {
	if f.Err != nil {
		return nil, zerr.Wrap(f.Err, ErrFingerprintUnavailable.Error())
	}
	return f.Files, nil
}

// BeforeExecutionState is the state of a task captured right before it would run.
type BeforeExecutionState struct {
	Implementation            ImplementationSnapshot
	AdditionalImplementations []ImplementationSnapshot
	InputProperties           map[string]ValueSnapshot
	InputFileProperties       map[string]FileCollectionFingerprint
	// OutputFileProperties are the outputs as found on disk before execution.
	OutputFileProperties map[string]FileCollectionFingerprint
}

// AfterPreviousExecutionState is the recorded state of the last execution of a task.
type AfterPreviousExecutionState struct {
	TaskName                  string                               `json:"task_name"`
	Implementation            ImplementationSnapshot               `json:"implementation"`
	AdditionalImplementations []ImplementationSnapshot             `json:"additional_implementations,omitempty"`
	InputProperties           map[string]ValueSnapshot             `json:"input_properties,omitempty"`
	InputFileProperties       map[string]FileCollectionFingerprint `json:"input_file_properties,omitempty"`
	// OutputFileProperties are the outputs as produced by the execution.
	OutputFileProperties map[string]FileCollectionFingerprint `json:"output_file_properties,omitempty"`
	Successful           bool                                 `json:"successful"`
	Timestamp            time.Time                            `json:"timestamp,omitzero"`
}

// NewAfterExecutionState records the outcome of executing a task whose
// inputs were captured in before and whose outputs were captured afterwards.
func NewAfterExecutionState(
	taskName string,
	before *BeforeExecutionState,
	outputs map[string]FileCollectionFingerprint,
	successful bool,
	timestamp time.Time,
) *AfterPreviousExecutionState {
	return &AfterPreviousExecutionState{
		TaskName:                  taskName,
		Implementation:            before.Implementation,
		AdditionalImplementations: before.AdditionalImplementations,
		InputProperties:           before.InputProperties,
		InputFileProperties:       before.InputFileProperties,
		OutputFileProperties:      outputs,
		Successful:                successful,
		Timestamp:                 timestamp,
	}
}
