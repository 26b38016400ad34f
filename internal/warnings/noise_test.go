package warnings

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyNoiseControl_Default(t *testing.T) {
	items := []Warning{
		{Code: CodeAutoExposedFromDependency, NoiseSuppressible: true, Severity: SeverityWarning},
		{Code: "OTHER", Severity: SeverityCritical},
	}
	filtered := ApplyNoiseControl(items, "")
	require.Len(t, filtered, 2)
}

func TestApplyNoiseControl_Reduce(t *testing.T) {
	items := []Warning{
		{Code: CodeAutoExposedFromDependency, NoiseSuppressible: true, Severity: SeverityWarning},
		{Code: "CRITICAL", NoiseSuppressible: true, Severity: SeverityCritical},
		{Code: "KEPT", Severity: SeverityWarning},
	}
	filtered := ApplyNoiseControl(items, NoiseModeReduce)
	require.Len(t, filtered, 2)
	require.Equal(t, "CRITICAL", filtered[0].Code)
	require.Equal(t, "KEPT", filtered[1].Code)
}

func TestApplyNoiseControl_Quiet(t *testing.T) {
	items := []Warning{{Code: CodeAutoExposedFromDependency}}
	require.Nil(t, ApplyNoiseControl(items, NoiseModeQuiet))
}

func TestApplyNoiseControl_UnknownMode(t *testing.T) {
	items := []Warning{{Code: CodeAutoExposedFromDependency, NoiseSuppressible: true}}
	filtered := ApplyNoiseControl(items, "loud")
	require.Len(t, filtered, 2)
	require.Equal(t, CodeAutoExposedFromDependency, filtered[0].Code)
	require.Equal(t, CodeWarningNoiseModeInvalid, filtered[1].Code)
	require.Equal(t, SeverityCritical, filtered[1].Severity)
	require.Equal(t, "warnings.noise_mode", filtered[1].Subject)
}

func TestApplyNoiseControl_DefaultNoItemsReturnsNil(t *testing.T) {
	require.Nil(t, ApplyNoiseControl(nil, NoiseModeDefault))
}

func TestWarningString(t *testing.T) {
	w := Warning{
		Code:    CodeAutoExposedFromDependency,
		Subject: "jupyter",
		Message: "exposed jupyter from notebook",
		Details: []string{"environment: jupyter"},
	}
	s := w.String()
	require.True(t, strings.HasPrefix(s, "WARNING AUTO_EXPOSED_FROM_DEPENDENCY: exposed jupyter from notebook\n"))
	require.Contains(t, s, "  source: internal\n")
	require.Contains(t, s, "  severity: warning\n")
	require.Contains(t, s, "  subject: jupyter")
	require.NotContains(t, s, "fix:")
	require.Contains(t, s, "  details: environment: jupyter")
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	Print(&out, []Warning{{Code: "A", Message: "first"}, {Code: "B", Message: "second", Severity: SeverityCritical}})
	require.Contains(t, out.String(), "WARNING A: first")
	require.Contains(t, out.String(), "WARNING B: second")
	Print(nil, []Warning{{Code: "A"}})
}
