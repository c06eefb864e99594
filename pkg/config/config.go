// Package config defines the parser and CLI configuration types for cdocparse.
// These types are pure data structures; loading from files and the
// environment lives in internal/configloader.
package config

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// OutputFormat specifies how the CLI prints a parsed document.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatTree OutputFormat = "tree"
)

// DefaultMaxDepth is the default nesting limit for command bodies,
// content parameters and script groups.
const DefaultMaxDepth = 64

// Config is the root configuration structure for cdocparse.
type Config struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `yaml:"flavor"`

	// MaxDepth bounds element nesting. Zero means DefaultMaxDepth.
	MaxDepth int `yaml:"max_depth"`

	// HeadingAttributes enables "{#id .class}" blocks after headings.
	HeadingAttributes bool `yaml:"heading_attributes"`

	// DetectLanguage guesses the language of code blocks that do not name one.
	DetectLanguage bool `yaml:"detect_language"`

	// Format is the default CLI output format.
	Format OutputFormat `yaml:"format"`

	// CLI-level options (not persisted to config files).

	// Solutions prints exercise solutions instead of placeholders.
	Solutions bool `yaml:"-"`

	// Debug enables debug logging.
	Debug bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Flavor:   FlavorCommonMark,
		MaxDepth: DefaultMaxDepth,
		Format:   FormatTree,
	}
}

// Depth returns MaxDepth, or DefaultMaxDepth when it is unset.
func (c *Config) Depth() int {
	if c == nil || c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

// IsValid returns true if the flavor is known.
func (f Flavor) IsValid() bool {
	switch f {
	case FlavorCommonMark, FlavorGFM:
		return true
	default:
		return false
	}
}

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatJSON, FormatTree:
		return true
	default:
		return false
	}
}
