package document

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/cdocparse/pkg/source"
)

// Layout holds page layout switches.
type Layout struct {
	HideSidebar bool `json:"hide_sidebar" yaml:"hide_sidebar"`
}

// Metadata is the decoded front matter of a document.
type Metadata struct {
	Title       string `json:"title"        yaml:"title"`
	Draft       bool   `json:"draft"        yaml:"draft"`
	Exercises   bool   `json:"exercises"    yaml:"exercises"`
	CellOutputs bool   `json:"cell_outputs" yaml:"cell_outputs"`
	Interactive bool   `json:"interactive"  yaml:"interactive"`
	Editable    bool   `json:"editable"     yaml:"editable"`
	Layout      Layout `json:"layout"       yaml:"layout"`

	// CodeSolutions is nil when the front matter does not set it, leaving the
	// choice to the renderer.
	CodeSolutions *bool `json:"code_solutions,omitempty" yaml:"code_solutions"`

	// ExcludeOutputs lists output kinds a renderer should drop.
	ExcludeOutputs []string `json:"exclude_outputs,omitempty" yaml:"exclude_outputs"`

	// Extra holds keys the fields above do not cover.
	Extra map[string]any `json:"extra,omitempty" yaml:",inline"`
}

// DefaultMetadata returns the metadata of a document without front matter.
func DefaultMetadata() Metadata {
	return Metadata{
		Exercises:   true,
		CellOutputs: true,
	}
}

// MetadataError reports front matter that is not valid YAML for Metadata.
type MetadataError struct {
	// Span covers the whole front matter block, fences included.
	Span source.Span

	Err error
}

// Error implements the error interface.
func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata %s: %v", e.Span, e.Err)
}

// Unwrap returns the YAML error.
func (e *MetadataError) Unwrap() error {
	return e.Err
}

// ParseMetadata decodes front matter text. Missing keys keep their defaults.
func ParseMetadata(text string) (Metadata, error) {
	meta := DefaultMetadata()
	if err := yaml.Unmarshal([]byte(text), &meta); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}
