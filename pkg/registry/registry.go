// Package registry maintains the set of installable documentation sections.
// Sections come from two sources with repo-local precedence: explicit content
// directories supplied by the caller, and the builtin sections embedded in
// the binary. Builtin sections are materialized to a temporary directory per
// run so the content reader only ever deals with real paths.
package registry

import (
	"context"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/rulesmith/pkg/content"
	"github.com/jingkaihe/rulesmith/pkg/logger"
	"github.com/jingkaihe/rulesmith/pkg/types/rules"
)

//go:embed all:sections
var builtinFS embed.FS

const builtinRoot = "sections"

// Entry describes one installable section
type Entry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Builtin     bool   `json:"builtin"`
	// Path is the section root on disk; empty for builtin sections until
	// Resolve materializes them
	Path string `json:"path,omitempty"`
}

// Registry resolves section identifiers to readable section roots
type Registry struct {
	contentDirs []string
	noBuiltins  bool

	materializedDir string
}

// Option configures a Registry
type Option func(*Registry) error

// WithContentDirs adds external content directories; each immediate child
// directory containing an index file or section config counts as a section
func WithContentDirs(dirs ...string) Option {
	return func(r *Registry) error {
		r.contentDirs = append(r.contentDirs, dirs...)
		return nil
	}
}

// WithoutBuiltins disables the embedded builtin sections
func WithoutBuiltins() Option {
	return func(r *Registry) error {
		r.noBuiltins = true
		return nil
	}
}

// New creates a registry with the given options
func New(opts ...Option) (*Registry, error) {
	r := &Registry{}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, errors.Wrap(err, "failed to apply registry option")
		}
	}
	return r, nil
}

// Close removes any materialized builtin content
func (r *Registry) Close() error {
	if r.materializedDir == "" {
		return nil
	}
	dir := r.materializedDir
	r.materializedDir = ""
	return os.RemoveAll(dir)
}

// List returns every known section, external content directories first
// (higher precedence), builtins after, each group sorted by identifier
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	seen := make(map[string]bool)
	var entries []Entry

	for _, dir := range r.contentDirs {
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			logger.G(ctx).WithField("dir", dir).WithError(err).Debug("Content directory not readable, skipping")
			continue
		}

		var local []Entry
		for _, de := range dirEntries {
			if !de.IsDir() || seen[de.Name()] {
				continue
			}
			root := filepath.Join(dir, de.Name())
			if !isSectionRoot(os.DirFS(root)) {
				continue
			}

			entry := Entry{ID: de.Name(), Path: root}
			fillMetadata(&entry, os.DirFS(root))
			local = append(local, entry)
			seen[de.Name()] = true
		}
		sortEntries(local)
		entries = append(entries, local...)
	}

	if !r.noBuiltins {
		builtins, err := r.builtinEntries()
		if err != nil {
			return nil, err
		}
		for _, entry := range builtins {
			if !seen[entry.ID] {
				entries = append(entries, entry)
				seen[entry.ID] = true
			}
		}
	}

	return entries, nil
}

// Resolve returns the on-disk section root for the given identifier,
// materializing builtin content on first use
func (r *Registry) Resolve(ctx context.Context, id string) (string, error) {
	for _, dir := range r.contentDirs {
		root := filepath.Join(dir, id)
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			return root, nil
		}
	}

	if !r.noBuiltins {
		if _, err := fs.Stat(builtinFS, filepath.ToSlash(filepath.Join(builtinRoot, id))); err == nil {
			dir, err := r.materialize(ctx)
			if err != nil {
				return "", err
			}
			return filepath.Join(dir, id), nil
		}
	}

	return "", rules.NewConfigurationError(id, "unknown section identifier")
}

// builtinEntries lists the embedded sections
func (r *Registry) builtinEntries() ([]Entry, error) {
	dirEntries, err := builtinFS.ReadDir(builtinRoot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read builtin sections")
	}

	var entries []Entry
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		sub, err := fs.Sub(builtinFS, builtinRoot+"/"+de.Name())
		if err != nil {
			continue
		}

		entry := Entry{ID: de.Name(), Builtin: true}
		fillMetadata(&entry, sub)
		entries = append(entries, entry)
	}
	sortEntries(entries)
	return entries, nil
}

// materialize extracts the embedded sections to a temporary directory once
// per registry instance
func (r *Registry) materialize(ctx context.Context) (string, error) {
	if r.materializedDir != "" {
		return r.materializedDir, nil
	}

	tempDir, err := os.MkdirTemp("", "rulesmith-content")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp content directory")
	}

	err = fs.WalkDir(builtinFS, builtinRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(builtinRoot, filepath.FromSlash(path))
		if err != nil {
			return err
		}
		dst := filepath.Join(tempDir, rel)

		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		data, err := builtinFS.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
	if err != nil {
		os.RemoveAll(tempDir)
		return "", errors.Wrap(err, "failed to materialize builtin sections")
	}

	logger.G(ctx).WithField("dir", tempDir).Debug("Materialized builtin sections")
	r.materializedDir = tempDir
	return tempDir, nil
}

// isSectionRoot reports whether the filesystem root looks like a section:
// it has an index file or a section config
func isSectionRoot(fsys fs.FS) bool {
	if _, err := fs.Stat(fsys, content.IndexFileName); err == nil {
		return true
	}
	if _, err := fs.Stat(fsys, content.SectionConfigFileName); err == nil {
		return true
	}
	return false
}

// fillMetadata populates title and description from section.yaml when present
func fillMetadata(entry *Entry, fsys fs.FS) {
	entry.Title = entry.ID

	data, err := fs.ReadFile(fsys, content.SectionConfigFileName)
	if err != nil {
		return
	}

	var section rules.Section
	if err := yaml.Unmarshal(data, &section); err != nil {
		return
	}
	if section.Title != "" {
		entry.Title = section.Title
	}
	entry.Description = section.Description
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
}
