package configloader

import "github.com/yaklabco/cdocparse/pkg/config"

// merge combines two configurations, with override taking precedence over base.
//   - Scalar values: override overwrites base if override is non-zero
//   - Booleans: override can only turn an option on
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	if override.Format != "" {
		result.Format = override.Format
	}

	// false is the zero value, so a higher layer cannot switch these off.
	if override.HeadingAttributes {
		result.HeadingAttributes = true
	}
	if override.DetectLanguage {
		result.DetectLanguage = true
	}
	if override.Solutions {
		result.Solutions = true
	}
	if override.Debug {
		result.Debug = true
	}

	return &result
}
