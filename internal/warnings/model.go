// Package warnings models non-fatal findings reported to the user after a command.
package warnings

import "fmt"

// Warning codes.
const (
	CodeAutoExposedFromDependency = "AUTO_EXPOSED_FROM_DEPENDENCY"
	CodeExposedNameInvalid        = "EXPOSED_NAME_INVALID"
	CodeExposedNameTaken          = "EXPOSED_NAME_TAKEN"
	CodeWarningNoiseModeInvalid   = "WARNING_NOISE_MODE_INVALID"
)

// Source labels where a warning originates.
const (
	SourceInternal           = "internal"
	SourceExternalDependency = "external dependency"
)

// Severity labels whether a warning should be considered critical.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Warning represents a warning message.
type Warning struct {
	Code     string
	Subject  string
	Message  string
	Fix      string
	Details  []string
	Source   string
	Severity string
	// NoiseSuppressible marks warnings that can be hidden by conservative noise controls.
	// Critical warnings are never suppressed even if this flag is true.
	NoiseSuppressible bool
}

func (w Warning) String() string {
	s := "WARNING " + w.Code + ": " + w.Message + "\n"
	s += fmt.Sprintf("  source: %s\n", w.sourceOrDefault())
	s += fmt.Sprintf("  severity: %s\n", w.severityOrDefault())
	s += "  subject: " + w.Subject
	if w.Fix != "" {
		s += "\n  fix: " + w.Fix
	}
	for _, d := range w.Details {
		s += "\n  details: " + d
	}
	return s
}

func (w Warning) sourceOrDefault() string {
	if w.Source == "" {
		return SourceInternal
	}
	return w.Source
}

func (w Warning) severityOrDefault() string {
	if w.Severity == "" {
		return SeverityWarning
	}
	return w.Severity
}
