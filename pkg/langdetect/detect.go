// Package langdetect guesses the language of code blocks that do not name
// one. It combines go-enry's shebang and classifier strategies with a few
// strong textual signals for the languages common in course material.
package langdetect

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/yaklabco/cdocparse/pkg/codeast"
)

// Fence tags returned by the detectors.
const (
	Go         = "go"
	Python     = "python"
	JavaScript = "javascript"
	JSON       = "json"
	YAML       = "yaml"
	HTML       = "html"
	SQL        = "sql"
	Rust       = "rust"
	Dockerfile = "dockerfile"
	Bash       = "bash"

	// Unknown is returned when no strategy is confident.
	Unknown = ""
)

// metaLanguageKeys are "#| key: value" directives that name the language.
//
//nolint:gochecknoglobals // Read-only lookup table.
var metaLanguageKeys = []string{"language", "lang"}

// classifierCandidates limits the go-enry classifier to plausible languages.
//
//nolint:gochecknoglobals // Read-only lookup table.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

//nolint:gochecknoglobals // Compiled once.
var sqlStatement = regexp.MustCompile(`(?i)^\s*(SELECT|INSERT|UPDATE|DELETE|CREATE)\s`)

// sample is the text under inspection in the forms the detectors need.
type sample struct {
	raw     []byte
	text    string
	trimmed []byte
}

// detectors run in order; the first non-empty answer wins.
//
//nolint:gochecknoglobals // Read-only lookup table.
var detectors = []func(sample) string{
	goSource,
	pythonSource,
	htmlSource,
	jsonSource,
	dockerfileSource,
	sqlSource,
	rustSource,
	javaScriptSource,
	yamlSource,
}

// DetectContent returns the language of a parsed code block. A "#| language:"
// directive wins; otherwise the full solution text is inspected.
func DetectContent(c *codeast.CodeContent) string {
	if c == nil {
		return Unknown
	}
	for _, key := range metaLanguageKeys {
		if lang, ok := c.Meta.Get(key); ok && lang != "" {
			return strings.ToLower(lang)
		}
	}
	return Detect([]byte(c.String(true)))
}

// Detect returns the language of content, or Unknown.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return Unknown
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return fenceTag(lang)
	}

	s := sample{raw: content, text: string(content), trimmed: bytes.TrimSpace(content)}
	for _, detect := range detectors {
		if lang := detect(s); lang != "" {
			return lang
		}
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return fenceTag(lang)
	}

	return Unknown
}

func goSource(s sample) string {
	if bytes.HasPrefix(s.trimmed, []byte("package ")) {
		return Go
	}
	return ""
}

func pythonSource(s sample) string {
	switch {
	case strings.Contains(s.text, "def ") && strings.Contains(s.text, "):"):
		return Python
	case strings.Contains(s.text, "__name__"), strings.Contains(s.text, "__main__"):
		return Python
	case strings.Contains(s.text, "import (") || !strings.Contains(s.text, "import "):
		return ""
	case strings.Contains(s.text, "from "), bytes.HasPrefix(s.trimmed, []byte("import ")):
		return Python
	}
	return ""
}

func htmlSource(s sample) string {
	lower := bytes.ToLower(s.trimmed)
	for _, marker := range []string{"<!doctype html", "<html", "<head>", "<body>"} {
		if bytes.Contains(lower, []byte(marker)) {
			return HTML
		}
	}
	return ""
}

func jsonSource(s sample) string {
	if len(s.trimmed) > 0 && (s.trimmed[0] == '{' || s.trimmed[0] == '[') && bytes.ContainsRune(s.trimmed, '"') {
		return JSON
	}
	return ""
}

func dockerfileSource(s sample) string {
	switch {
	case bytes.HasPrefix(s.trimmed, []byte("FROM ")):
		return Dockerfile
	case bytes.Contains(s.raw, []byte("\nFROM ")) && bytes.Contains(s.raw, []byte("\nRUN ")):
		return Dockerfile
	case bytes.Contains(s.raw, []byte("WORKDIR ")) && bytes.Contains(s.raw, []byte("COPY ")):
		return Dockerfile
	}
	return ""
}

func sqlSource(s sample) string {
	if sqlStatement.MatchString(s.text) {
		return SQL
	}
	return ""
}

func rustSource(s sample) string {
	for _, marker := range []string{"fn main()", "println!", "let mut "} {
		if strings.Contains(s.text, marker) {
			return Rust
		}
	}
	return ""
}

func javaScriptSource(s sample) string {
	for _, marker := range []string{"=>", "const ", "let ", "console.log"} {
		if strings.Contains(s.text, marker) {
			return JavaScript
		}
	}
	return ""
}

// yamlSource needs two lines that look like mapping keys or list items.
func yamlSource(s sample) string {
	count := 0
	for line := range bytes.SplitSeq(s.raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if bytes.Contains(line, []byte(": ")) && !bytes.ContainsAny(line, "({") && line[0] != '"' {
			count++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			count++
		}
	}
	if count >= 2 {
		return YAML
	}
	return ""
}

// fenceTag converts a go-enry language name to a fence tag.
func fenceTag(lang string) string {
	if lang == "Shell" {
		return Bash
	}
	return strings.ToLower(lang)
}
