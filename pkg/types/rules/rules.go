// Package rules defines the shared value types of the rule distribution
// engine: sections, artifacts, attachment policies, emission plans and the
// error taxonomy used across the content reader, emitters and installer.
package rules

import "fmt"

// Role classifies an artifact within a section. It is assigned exactly once
// by the content reader and never re-derived downstream.
type Role int

const (
	// RoleIndex is the single routing/index document of a section
	RoleIndex Role = iota
	// RoleGuide is one independently attachable guide document
	RoleGuide
	// RoleAgent is one task playbook document
	RoleAgent
	// RoleDecision is one decision record, always aggregated on output
	RoleDecision
)

// String returns the lowercase role name used in logs and results
func (r Role) String() string {
	switch r {
	case RoleIndex:
		return "index"
	case RoleGuide:
		return "guide"
	case RoleAgent:
		return "agent"
	case RoleDecision:
		return "decision"
	default:
		return "unknown"
	}
}

// AttachmentConfig is the optional per-section attachment configuration
// declared by content authors in section.yaml
type AttachmentConfig struct {
	// DefaultGlob auto-attaches the section index (and format-level groups)
	// to files matching the pattern. Empty means no default glob.
	DefaultGlob string `yaml:"default_glob,omitempty"`
	// GuideGlobs maps guide identifiers to per-guide glob overrides
	GuideGlobs map[string]string `yaml:"guide_globs,omitempty"`
}

// Section is a named, independently installable bundle of documentation.
// Defined by content authors; read-only at install time.
type Section struct {
	ID          string            `yaml:"-"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description,omitempty"`
	Attachment  *AttachmentConfig `yaml:"attachment,omitempty"`
}

// DefaultGlob returns the section-wide glob, or "" when none is configured
func (s *Section) DefaultGlob() string {
	if s.Attachment == nil {
		return ""
	}
	return s.Attachment.DefaultGlob
}

// GuideGlob returns the per-guide override for the given guide identifier
func (s *Section) GuideGlob(id string) (string, bool) {
	if s.Attachment == nil {
		return "", false
	}
	glob, ok := s.Attachment.GuideGlobs[id]
	return glob, ok
}

// Artifact is one unit of content to be emitted. Body is opaque text; Title
// is the only structural element the engine extracts from it.
type Artifact struct {
	Role  Role
	ID    string
	Title string
	Body  string
}

// DisplayTitle returns the extracted title, falling back to the identifier
func (a *Artifact) DisplayTitle() string {
	if a.Title != "" {
		return a.Title
	}
	return a.ID
}

// AttachmentMode distinguishes auto-attached artifacts from on-demand ones
type AttachmentMode int

const (
	// ModeAuto binds the artifact to a file-path glob; an empty glob means
	// "always active", which is distinct from any filtering pattern
	ModeAuto AttachmentMode = iota
	// ModeOnDemand leaves loading to the host tool's relevance heuristic,
	// guided by a one-line description
	ModeOnDemand
)

// Attachment is the derived, never-persisted attachment policy of one artifact
type Attachment struct {
	Mode        AttachmentMode
	Glob        string
	Description string
}

// PlanEntry is one pending output file of an emission plan
type PlanEntry struct {
	Path    string
	Content string
}

// ConfigurationError indicates that the installation target, a section or an
// emitter could not be resolved. Fatal for the affected unit, never skipped.
type ConfigurationError struct {
	Subject string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Subject, e.Reason)
}

// NewConfigurationError creates a ConfigurationError for the given subject
func NewConfigurationError(subject, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// IOError indicates a read or write failure at the filesystem boundary for a
// specific file. Fatal for that file's section, isolated from other sections.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError wraps a filesystem failure for the given operation and path
func NewIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}
