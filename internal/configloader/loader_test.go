package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/cdocparse/pkg/config"
)

func isolatedOptions(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolatedOptions(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}
	if result.Config.Flavor != config.FlavorCommonMark {
		t.Errorf("expected flavor %q, got %q", config.FlavorCommonMark, result.Config.Flavor)
	}
	if result.Config.MaxDepth != config.DefaultMaxDepth {
		t.Errorf("expected max depth %d, got %d", config.DefaultMaxDepth, result.Config.MaxDepth)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".cdocparse.yml")
	writeFile(t, configPath, "flavor: gfm\nmax_depth: 16\ndetect_language: true\n")

	result, err := Load(context.Background(), isolatedOptions(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Flavor != config.FlavorGFM {
		t.Errorf("expected flavor %q, got %q", config.FlavorGFM, result.Config.Flavor)
	}
	if result.Config.MaxDepth != 16 {
		t.Errorf("expected max depth 16, got %d", result.Config.MaxDepth)
	}
	if !result.Config.DetectLanguage {
		t.Error("expected detect_language to be enabled")
	}
	if result.Config.Format != config.FormatTree {
		t.Errorf("expected default format to survive, got %q", result.Config.Format)
	}
	if len(result.LoadedFrom) != 1 || result.LoadedFrom[0] != configPath {
		t.Errorf("expected LoadedFrom [%s], got %v", configPath, result.LoadedFrom)
	}
}

func TestLoad_SearchesUpward(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(root, ".cdocparse.yaml"), "flavor: gfm\n")
	nested := filepath.Join(root, "docs", "chapter")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolatedOptions(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Flavor != config.FlavorGFM {
		t.Errorf("expected flavor from parent config, got %q", result.Config.Flavor)
	}
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, ".cdocparse.yml"), "flavor: gfm\n")
	repo := filepath.Join(outer, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, err := FindProjectConfig(context.Background(), repo)
	if err != nil {
		t.Fatalf("FindProjectConfig() error = %v", err)
	}
	if path != "" {
		t.Errorf("expected search to stop at the VCS root, found %s", path)
	}
}

func TestLoad_ExplicitOverridesProject(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".cdocparse.yml"), "flavor: gfm\nmax_depth: 8\n")
	explicit := filepath.Join(tmpDir, "other.yml")
	writeFile(t, explicit, "max_depth: 4\n")

	opts := isolatedOptions(tmpDir)
	opts.ExplicitPath = explicit

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Flavor != config.FlavorGFM {
		t.Errorf("expected project flavor to survive, got %q", result.Config.Flavor)
	}
	if result.Config.MaxDepth != 4 {
		t.Errorf("expected explicit max depth 4, got %d", result.Config.MaxDepth)
	}
	if len(result.LoadedFrom) != 2 {
		t.Errorf("expected two loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_CLIOverridesAll(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".cdocparse.yml"), "flavor: gfm\n")

	opts := isolatedOptions(tmpDir)
	opts.CLIConfig = &config.Config{Flavor: config.FlavorCommonMark, Format: config.FormatJSON, Solutions: true}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Flavor != config.FlavorCommonMark {
		t.Errorf("expected CLI flavor, got %q", result.Config.Flavor)
	}
	if result.Config.Format != config.FormatJSON {
		t.Errorf("expected CLI format, got %q", result.Config.Format)
	}
	if !result.Config.Solutions {
		t.Error("expected solutions to be enabled")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid flavor", "flavor: markdown\n", "invalid flavor"},
		{"negative depth", "max_depth: -1\n", "max_depth"},
		{"unknown key", "rules: {}\n", "parse yaml"},
		{"malformed yaml", "flavor: [\n", "parse yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, ".cdocparse.yml")
			writeFile(t, configPath, tt.content)

			_, err := Load(context.Background(), isolatedOptions(tmpDir))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_ValidationErrorNamesFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".cdocparse.yml")
	writeFile(t, configPath, "format: sarif\n")

	_, err := Load(context.Background(), isolatedOptions(tmpDir))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.FilePath != configPath || verr.Field != "format" {
		t.Errorf("unexpected validation error %+v", verr)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CDOCPARSE_FLAVOR", "gfm")
	t.Setenv("CDOCPARSE_MAX_DEPTH", "9")
	t.Setenv("CDOCPARSE_HEADING_ATTRIBUTES", "true")

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".cdocparse.yml"), "flavor: commonmark\n")

	opts := isolatedOptions(tmpDir)
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Flavor != config.FlavorGFM {
		t.Errorf("expected env flavor, got %q", result.Config.Flavor)
	}
	if result.Config.MaxDepth != 9 {
		t.Errorf("expected env max depth 9, got %d", result.Config.MaxDepth)
	}
	if !result.Config.HeadingAttributes {
		t.Error("expected heading attributes from env")
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad bool", "CDOCPARSE_DETECT_LANGUAGE", "maybe"},
		{"bad int", "CDOCPARSE_MAX_DEPTH", "deep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			err := LoadFromEnv(config.NewConfig())
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error naming %s, got %v", tt.key, err)
			}
		})
	}
}

func TestLoad_DepthWarning(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t.TempDir())
	opts.CLIConfig = &config.Config{MaxDepth: 5000}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "unusually large") {
		t.Errorf("expected a depth warning, got %v", result.Warnings)
	}
}

func TestEnvVarNames(t *testing.T) {
	t.Parallel()

	if got := GetEnvVarName("max_depth"); got != "CDOCPARSE_MAX_DEPTH" {
		t.Errorf("GetEnvVarName(max_depth) = %q", got)
	}
	if got := GetEnvVarName("nope"); got != "" {
		t.Errorf("GetEnvVarName(nope) = %q", got)
	}

	vars := ListEnvVars()
	if len(vars) != len(envMappings) {
		t.Fatalf("expected %d env vars, got %d", len(envMappings), len(vars))
	}
	if vars[0][0] != "CDOCPARSE_DETECT_LANGUAGE" {
		t.Errorf("expected sorted output, first is %q", vars[0][0])
	}
}

func TestWriteTemplate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".cdocparse.yml")
	if err := WriteTemplate(context.Background(), path, false); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}
	if err := WriteTemplate(context.Background(), path, false); err == nil {
		t.Error("expected an error when the file exists")
	}
	if err := WriteTemplate(context.Background(), path, true); err != nil {
		t.Errorf("WriteTemplate(force) error = %v", err)
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if cfg.Flavor != config.FlavorCommonMark {
		t.Errorf("unexpected template flavor %q", cfg.Flavor)
	}
}
