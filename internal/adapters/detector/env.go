// Package detector provides environment detection for output mode selection.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode represents how task progress is rendered.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeColor renders colored status lines.
	ModeColor
	// ModePlain renders status lines without escape sequences.
	ModePlain
)

// DetectEnvironment returns the recommended output mode based on the environment.
// Plain output is chosen when stderr is not a terminal, in CI, or with NO_COLOR.
func DetectEnvironment() OutputMode {
	return detect(term.IsTerminal(int(os.Stderr.Fd())), os.Getenv)
}

func detect(isTTY bool, getenv func(string) string) OutputMode {
	ci := getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI || getenv("NO_COLOR") != "" {
		return ModePlain
	}
	return ModeColor
}

// ResolveMode applies user override flag to auto-detection.
// userFlag should be one of: "auto", "color", "plain", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) OutputMode {
	switch userFlag {
	case "color":
		return ModeColor
	case "plain":
		return ModePlain
	default:
		return autoDetected
	}
}
