package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/yaklabco/cdocparse/pkg/config"
)

// envVarPrefix is the prefix for all cdocparse environment variables.
const envVarPrefix = "CDOCPARSE_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FLAVOR":             {field: "flavor", typ: envTypeString, description: "Markdown flavor: commonmark or gfm"},
	"MAX_DEPTH":          {field: "max_depth", typ: envTypeInt, description: "Nesting limit for bodies and script groups"},
	"HEADING_ATTRIBUTES": {field: "heading_attributes", typ: envTypeBool, description: "Parse {#id .class} after headings: true or false"},
	"DETECT_LANGUAGE":    {field: "detect_language", typ: envTypeBool, description: "Guess code block languages: true or false"},
	"FORMAT":             {field: "format", typ: envTypeString, description: "Output format: tree or json"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with CDOCPARSE_ (e.g., CDOCPARSE_FLAVOR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "format":
		cfg.Format = config.OutputFormat(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "heading_attributes":
		cfg.HeadingAttributes = value
	case "detect_language":
		cfg.DetectLanguage = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "max_depth":
		cfg.MaxDepth = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns the supported environment variables, sorted by name,
// with their descriptions.
func ListEnvVars() [][2]string {
	out := make([][2]string, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		out = append(out, [2]string{envVarPrefix + suffix, mapping.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
