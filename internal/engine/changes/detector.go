package changes

import (
	"slices"

	"go.trai.ch/incr/internal/core/domain"
)

// Detector compares the previous and current execution state of a task.
type Detector struct {
	maxMessages int
}

// NewDetector creates a Detector collecting at most maxMessages messages per
// detection. Non-positive values select DefaultMaxMessages.
func NewDetector(maxMessages int) *Detector {
	if maxMessages < 1 {
		maxMessages = DefaultMaxMessages
	}
	return &Detector{maxMessages: maxMessages}
}

// MaxMessages returns the message budget of a single detection.
func (d *Detector) MaxMessages() int {
	return d.maxMessages
}

// DetectChanges decides how the task described by executable has to be
// executed. Rebuild-triggering changes are looked for first; only when there
// are none is the input file delta enumerated into the same message budget.
func (d *Detector) DetectChanges(
	previous *domain.AfterPreviousExecutionState,
	current *domain.BeforeExecutionState,
	executable Describable,
	allowOverlappingOutputs bool,
) ExecutionStateChanges {
	rebuildTriggering := ErrorHandling(executable, Summarize(
		previousSuccessChanges{successful: previous.Successful},
		implementationChanges{
			previous:           previous.Implementation,
			current:            current.Implementation,
			previousAdditional: previous.AdditionalImplementations,
			currentAdditional:  current.AdditionalImplementations,
			executable:         executable,
		},
		propertyChanges[domain.ValueSnapshot]{
			previous:   previous.InputProperties,
			current:    current.InputProperties,
			title:      "Input",
			executable: executable,
		},
		inputValueChanges{
			previous:   previous.InputProperties,
			current:    current.InputProperties,
			executable: executable,
		},
		propertyChanges[domain.FileCollectionFingerprint]{
			previous:   previous.OutputFileProperties,
			current:    current.OutputFileProperties,
			title:      "Output",
			executable: executable,
		},
		Cached(d.maxMessages, outputFileChanges{
			previous:                previous.OutputFileProperties,
			current:                 current.OutputFileProperties,
			allowOverlappingOutputs: allowOverlappingOutputs,
		}),
		propertyChanges[domain.FileCollectionFingerprint]{
			previous:   previous.InputFileProperties,
			current:    current.InputFileProperties,
			title:      "Input file",
			executable: executable,
		},
	))

	inputFileChanges := newInputFileChanges(previous.InputFileProperties, current.InputFileProperties)
	cachedInputFileChanges := ErrorHandling(executable, Cached(d.maxMessages, inputFileChanges))

	collector := NewMessageCollector(d.maxMessages)
	_, _ = rebuildTriggering.Accept(collector.Visit)
	if collector.Count() > 0 {
		return &NonIncremental{
			messages:            collector.Messages(),
			inputFileProperties: current.InputFileProperties,
		}
	}

	_, _ = cachedInputFileChanges.Accept(collector.Visit)
	if inputFileChanges.err != nil {
		// The delta is incomplete, so the files can only be treated as changed.
		// The failure is reported even when earlier changes used up the budget.
		messages := collector.Messages()
		if failure := failureMessage(executable, inputFileChanges.err); !slices.Contains(messages, failure) {
			messages = append(messages[:min(len(messages), d.maxMessages-1)], failure)
		}
		return &NonIncremental{
			messages:            messages,
			inputFileProperties: current.InputFileProperties,
		}
	}
	return &Incremental{
		messages:         collector.Messages(),
		inputFileChanges: inputFileChanges,
	}
}

// Rerun returns a non-incremental outcome carrying reasons, without comparing
// anything. It is used when a task is forced to execute or cannot consume a
// file delta.
func (d *Detector) Rerun(current *domain.BeforeExecutionState, reasons ...string) ExecutionStateChanges {
	return &NonIncremental{
		messages:            slices.Clone(reasons[:min(len(reasons), d.maxMessages)]),
		inputFileProperties: current.InputFileProperties,
	}
}
