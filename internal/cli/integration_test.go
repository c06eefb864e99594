package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/cdocparse/internal/cli"
	"github.com/yaklabco/cdocparse/pkg/codeast"
	"github.com/yaklabco/cdocparse/pkg/document"
)

const testLesson = "---\ntitle: Loops\n---\n# Loops $n$|eq1\n\nSee #ref(eq1).\n\n" +
	"```python\nfor i in range(3):\n    print(i)\n```\n\n" +
	"``\nx = 1\n#| begin_solution\ny = 2\n#| begin_placeholder\n# fill in y\n#| end_solution\n``\n"

const testPythonSource = "for i in range(3):\n    print(i)\n"

// testFiles writes the lesson and a minimal config into a temp directory.
func testFiles(t *testing.T, config string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	mdFile := filepath.Join(dir, "lesson.md")
	require.NoError(t, os.WriteFile(mdFile, []byte(testLesson), 0o644))

	cfgFile := filepath.Join(dir, ".cdocparse.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(config), 0o644))

	return mdFile, cfgFile
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestIntegration_ParseTree(t *testing.T) {
	t.Parallel()

	mdFile, cfgFile := testFiles(t, "flavor: commonmark\n")

	stdout, _, err := execute(t, "parse", "--config", cfgFile, "--color", "never", "--spans", "--summary", mdFile)
	require.NoError(t, err)

	for _, want := range []string{
		mdFile,
		"heading h1",
		`math "n" |eq1`,
		"command #ref",
		"code_block python",
		"code_block cell",
		"exercises 1",
		`"x = 1\nfill in y\n"`,
		"Summary",
	} {
		assert.Contains(t, stdout, want)
	}
	assert.NotContains(t, stdout, "y = 2")
}

func TestIntegration_ParseSolutions(t *testing.T) {
	t.Parallel()

	mdFile, cfgFile := testFiles(t, "flavor: commonmark\n")

	stdout, _, err := execute(t, "parse", "--config", cfgFile, "--color", "never", "--solutions", mdFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"x = 1\ny = 2\n"`)
	assert.Contains(t, stdout, "Parsed ")
	assert.Contains(t, stdout, "(1 exercise)")
}

func TestIntegration_ParseJSON(t *testing.T) {
	t.Parallel()

	mdFile, cfgFile := testFiles(t, "format: json\n")

	stdout, _, err := execute(t, "parse", "--config", cfgFile, mdFile)
	require.NoError(t, err)

	var got struct {
		Meta       document.Metadata          `json:"meta"`
		Content    []map[string]any           `json:"content"`
		References map[string]json.RawMessage `json:"references"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))

	assert.Equal(t, "Loops", got.Meta.Title)
	require.NotEmpty(t, got.Content)
	assert.Equal(t, "heading", got.Content[0]["type"])
	assert.Contains(t, got.References, "eq1")
}

func TestIntegration_ParseStdin(t *testing.T) {
	t.Parallel()

	_, cfgFile := testFiles(t, "flavor: commonmark\n")

	cmd := cli.NewRootCommand(testInfo())
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetIn(strings.NewReader("# Hi\n"))
	cmd.SetArgs([]string{"parse", "--config", cfgFile, "--color", "never", "-"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "<stdin>")
	assert.Contains(t, stdout.String(), `text "Hi"`)
}

func TestIntegration_ParseError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mdFile := filepath.Join(dir, "bad.md")
	require.NoError(t, os.WriteFile(mdFile, []byte("text #cmd(unclosed"), 0o644))
	cfgFile := filepath.Join(dir, ".cdocparse.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("flavor: commonmark\n"), 0o644))

	_, stderr, err := execute(t, "parse", "--config", cfgFile, "--color", "never", mdFile)
	require.ErrorIs(t, err, cli.ErrParseFailed)
	assert.Equal(t, cli.ExitParseError, cli.ExitCodeFromError(err))

	assert.Contains(t, stderr, "bad.md:1:10")
	assert.Contains(t, stderr, "unterminated parameter list")
	assert.Contains(t, stderr, "text #cmd(unclosed")
}

func TestIntegration_MissingFile(t *testing.T) {
	t.Parallel()

	_, cfgFile := testFiles(t, "flavor: commonmark\n")

	_, _, err := execute(t, "parse", "--config", cfgFile, filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitIOError, cli.ExitCodeFromError(err))
}

func TestIntegration_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config string
		args   []string
	}{
		{name: "unknown flavor", config: "flavor: markdown2\n"},
		{name: "negative depth", config: "max_depth: -1\n"},
		{name: "bad format flag", config: "flavor: gfm\n", args: []string{"--format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mdFile, cfgFile := testFiles(t, tt.config)

			args := append([]string{"parse", "--config", cfgFile, mdFile}, tt.args...)
			_, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, cli.ExitConfigError, cli.ExitCodeFromError(err))
		})
	}
}

func TestIntegration_Outputs(t *testing.T) {
	t.Parallel()

	mdFile, cfgFile := testFiles(t, "format: json\n")

	content, err := codeast.Parse(testPythonSource)
	require.NoError(t, err)

	outputs := map[uint64]document.CodeOutput{
		content.Hash: {Values: []document.OutputValue{{Kind: document.OutputText, Data: "0\n1\n2\n"}}},
		42:           {Values: []document.OutputValue{{Kind: document.OutputText, Data: "stale"}}},
	}
	data, err := json.Marshal(outputs)
	require.NoError(t, err)
	outFile := filepath.Join(filepath.Dir(mdFile), "outputs.json")
	require.NoError(t, os.WriteFile(outFile, data, 0o644))

	stdout, _, err := execute(t, "parse", "--config", cfgFile, "--outputs", outFile, mdFile)
	require.NoError(t, err)

	var got struct {
		CodeOutputs map[string]document.CodeOutput `json:"code_outputs"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))

	require.Contains(t, got.CodeOutputs, strconv.FormatUint(content.Hash, 10))
	assert.Equal(t, "0\n1\n2\n", got.CodeOutputs[strconv.FormatUint(content.Hash, 10)].Values[0].Data)
	assert.NotContains(t, got.CodeOutputs, "42")
	assert.Len(t, got.CodeOutputs, 2)
}

func TestIntegration_Refs(t *testing.T) {
	t.Parallel()

	mdFile, cfgFile := testFiles(t, "flavor: commonmark\n")

	stdout, _, err := execute(t, "refs", "--config", cfgFile, "--color", "never", mdFile)
	require.NoError(t, err)

	assert.Contains(t, stdout, "(1 labels)")
	assert.Contains(t, stdout, "LABEL")
	assert.Contains(t, stdout, "eq1")
	assert.Contains(t, stdout, "math")
	assert.Contains(t, stdout, "4:9")

	stdout, _, err = execute(t, "refs", "--config", cfgFile, "--format", "json", mdFile)
	require.NoError(t, err)

	var refs map[string]struct {
		Kind    string `json:"kind"`
		Summary string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &refs))
	assert.Equal(t, "math", refs["eq1"].Kind)
	assert.Equal(t, "n", refs["eq1"].Summary)
}

func TestIntegration_Code(t *testing.T) {
	t.Parallel()

	mdFile, cfgFile := testFiles(t, "flavor: commonmark\n")

	stdout, _, err := execute(t, "code", "--config", cfgFile, "--color", "never", mdFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "python")
	assert.Contains(t, stdout, testPythonSource)
	assert.Contains(t, stdout, "(1 exercises)")
	assert.Contains(t, stdout, "x = 1\nfill in y\n")

	stdout, _, err = execute(t, "code", "--config", cfgFile, "--format", "json", mdFile)
	require.NoError(t, err)

	var blocks []struct {
		Index     int    `json:"index"`
		Language  string `json:"language"`
		Cell      bool   `json:"cell"`
		Exercises int    `json:"exercises"`
		Source    string `json:"source"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &blocks))
	require.Len(t, blocks, 2)
	assert.Equal(t, "python", blocks[0].Language)
	assert.True(t, blocks[1].Cell)
	assert.Equal(t, 1, blocks[1].Exercises)

	stdout, _, err = execute(t, "code", "--config", cfgFile, "--solutions", "--index", strconv.Itoa(blocks[1].Index), mdFile)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\ny = 2\n", stdout)

	_, _, err = execute(t, "code", "--config", cfgFile, "--index", "99", mdFile)
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
}

func TestIntegration_ConfigCommand(t *testing.T) {
	t.Parallel()

	_, cfgFile := testFiles(t, "flavor: gfm\nmax_depth: 8\n")

	stdout, _, err := execute(t, "config", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "max_depth: 8")

	stdout, _, err = execute(t, "config", "--env", "--color", "never")
	require.NoError(t, err)
	assert.Contains(t, stdout, "CDOCPARSE_FLAVOR")
	assert.Contains(t, stdout, "CDOCPARSE_MAX_DEPTH")
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "custom.yml")

	_, _, err := execute(t, "init", "--output", target)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "flavor: commonmark")

	_, _, err = execute(t, "init", "--output", target)
	require.Error(t, err)

	_, _, err = execute(t, "init", "--output", target, "--force")
	require.NoError(t, err)
}

func TestIntegration_Help(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "--color=never", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "Commands:")
	assert.Contains(t, stdout, "parse")
	assert.Contains(t, stdout, "--config")

	stdout, _, err = execute(t, "parse", "--color=never", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Flags:")
	assert.Contains(t, stdout, "--outputs")
	assert.Contains(t, stdout, "Global Flags:")
}
