package presenter

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	presenter := New()
	assert.NotNil(t, presenter)
	assert.Equal(t, os.Stdout, presenter.output)
	assert.Equal(t, os.Stderr, presenter.errorOutput)
	assert.False(t, presenter.quiet)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name           string
		noColor        string
		rulesmithColor string
		expected       ColorMode
	}{
		{"NO_COLOR set", "1", "", ColorNever},
		{"RULESMITH_COLOR always", "", "always", ColorAlways},
		{"RULESMITH_COLOR force", "", "force", ColorAlways},
		{"RULESMITH_COLOR never", "", "never", ColorNever},
		{"RULESMITH_COLOR off", "", "off", ColorNever},
		{"RULESMITH_COLOR auto", "", "auto", ColorAuto},
		{"default", "", "", ColorAuto},
		{"invalid value", "", "sometimes", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("NO_COLOR")
			os.Unsetenv("RULESMITH_COLOR")

			if tt.noColor != "" {
				t.Setenv("NO_COLOR", tt.noColor)
			}
			if tt.rulesmithColor != "" {
				t.Setenv("RULESMITH_COLOR", tt.rulesmithColor)
			}

			assert.Equal(t, tt.expected, detectColorMode())

			os.Unsetenv("NO_COLOR")
			os.Unsetenv("RULESMITH_COLOR")
		})
	}
}

func TestError(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)

	presenter.Error(errors.New("section root does not exist"), "reading tanstack-query")

	assert.Contains(t, errorOutput.String(), "[ERROR] reading tanstack-query: section root does not exist")
	assert.Empty(t, output.String())

	errorOutput.Reset()
	presenter.Error(nil, "ignored")
	assert.Empty(t, errorOutput.String())
}

func TestSuccessAndWarning(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)

	presenter.Success("installed tanstack-query (4 files)")
	presenter.Warning("guide 02-mutations has no heading")

	assert.Contains(t, output.String(), "✓ installed tanstack-query (4 files)")
	assert.Contains(t, output.String(), "⚠ guide 02-mutations has no heading")
}

func TestSection(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)

	presenter.Section("Results")

	assert.Contains(t, output.String(), "Results\n-------\n")
}

func TestQuietMode(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)
	presenter.SetQuiet(true)

	presenter.Success("hidden")
	presenter.Warning("hidden")
	presenter.Info("hidden")
	presenter.Section("hidden")
	presenter.Separator()

	assert.Empty(t, output.String())
	assert.True(t, presenter.IsQuiet())

	// errors still show in quiet mode
	presenter.Error(errors.New("write failed"), "")
	assert.Contains(t, errorOutput.String(), "write failed")
}
