package config

import "fmt"

const templateHeader = `# cdocparse configuration
#
# flavor:             commonmark or gfm
# max_depth:          nesting limit for command bodies and script groups
# heading_attributes: parse "{#id .class}" after headings
# detect_language:    guess the language of code blocks that do not name one
# format:             default output of "cdocparse parse" (tree or json)
#
# Every key can be overridden with a CDOCPARSE_* environment variable,
# for example CDOCPARSE_FLAVOR=gfm.`

// GenerateTemplate returns a commented configuration file holding the
// default values.
func GenerateTemplate() ([]byte, error) {
	data, err := NewConfig().ToYAMLWithHeader(templateHeader)
	if err != nil {
		return nil, fmt.Errorf("generate template: %w", err)
	}
	return data, nil
}
