package goldmark

import (
	"bytes"
	"html"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"

	"github.com/yaklabco/cdocparse/pkg/ast"
	"github.com/yaklabco/cdocparse/pkg/compose"
	"github.com/yaklabco/cdocparse/pkg/raw"
	"github.com/yaklabco/cdocparse/pkg/source"
)

func TestParser_New(t *testing.T) {
	tests := []struct {
		name       string
		flavor     string
		wantFlavor string
	}{
		{"commonmark", FlavorCommonMark, FlavorCommonMark},
		{"gfm", FlavorGFM, FlavorGFM},
		{"invalid defaults to commonmark", "invalid", FlavorCommonMark},
		{"empty defaults to commonmark", "", FlavorCommonMark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.flavor)

			if p.Flavor() != tt.wantFlavor {
				t.Errorf("Flavor() = %q, want %q", p.Flavor(), tt.wantFlavor)
			}
		})
	}
}

func parse(t *testing.T, p *Parser, input string) []ast.Block {
	t.Helper()
	doc, err := raw.Parse(input)
	require.NoError(t, err)
	return p.Parse(doc.Elements)
}

func txt(s string) *ast.Text {
	return &ast.Text{Value: s}
}

func TestParse_PlainMarkdown(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "# Title *em*\n\nHello **world**\nnext line.\n")

	assert.Equal(t, []ast.Block{
		&ast.Heading{Level: 1, Inner: []ast.Inline{
			txt("Title "),
			&ast.Styled{Style: ast.StyleEmphasis, Inner: []ast.Inline{txt("em")}},
		}},
		&ast.Paragraph{Inner: []ast.Inline{
			txt("Hello "),
			&ast.Styled{Style: ast.StyleStrong, Inner: []ast.Inline{txt("world")}},
			&ast.SoftBreak{},
			txt("next line."),
		}},
	}, blocks)
}

func TestParse_CommandScenario(t *testing.T) {
	t.Parallel()

	input := `#f(x, key="v"){body}`
	blocks := parse(t, New(FlavorCommonMark), input)

	require.Len(t, blocks, 1)
	plain, ok := blocks[0].(*ast.Plain)
	require.True(t, ok, "got %T", blocks[0])
	require.Len(t, plain.Inner, 1)

	cmd, ok := plain.Inner[0].(*ast.Command)
	require.True(t, ok)
	assert.Equal(t, &ast.Command{
		Function: "f",
		Parameters: []ast.Parameter{
			{Value: ast.StringValue("x"), Span: source.NewSpan(3, 4)},
			{Key: "key", Value: ast.StringValue("v"), Span: source.NewSpan(6, 13)},
		},
		Body: []ast.Block{&ast.Paragraph{Inner: []ast.Inline{txt("body")}}},
		Span: source.NewSpan(0, len(input)),
	}, cmd)
}

func TestParse_InlineElements(t *testing.T) {
	t.Parallel()

	input := "See #ref|a and $x^2$ or `c`."
	blocks := parse(t, New(FlavorCommonMark), input)

	assert.Equal(t, []ast.Block{&ast.Paragraph{Inner: []ast.Inline{
		txt("See "),
		&ast.Command{Function: "ref", Label: "a", Span: source.NewSpan(4, 10)},
		txt(" and "),
		&ast.Math{Source: "x^2", Span: source.NewSpan(15, 20)},
		txt(" or "),
		&ast.Code{Source: "c"},
		txt("."),
	}}}, blocks)
}

func TestParse_NestedCountersRestart(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "#a #outer{#inner #inner2}")

	para := blocks[0].(*ast.Paragraph)
	require.Len(t, para.Inner, 3)
	a := para.Inner[0].(*ast.Command)
	outer := para.Inner[2].(*ast.Command)
	assert.Equal(t, 0, a.Index)
	assert.Equal(t, 1, outer.Index)

	body := outer.Body[0].(*ast.Paragraph)
	require.Len(t, body.Inner, 3)
	assert.Equal(t, "inner", body.Inner[0].(*ast.Command).Function)
	assert.Equal(t, 0, body.Inner[0].(*ast.Command).Index)
	assert.Equal(t, 1, body.Inner[2].(*ast.Command).Index)
	assert.Equal(t, source.NewSpan(10, 16), body.Inner[0].(*ast.Command).Span)
}

func TestParse_EmptyBody(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "#a{} #b")

	para := blocks[0].(*ast.Paragraph)
	withBody := para.Inner[0].(*ast.Command)
	withoutBody := para.Inner[2].(*ast.Command)
	assert.NotNil(t, withBody.Body)
	assert.Empty(t, withBody.Body)
	assert.Nil(t, withoutBody.Body)
}

func TestParse_ContentParameter(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "#fig(caption={A *b* $c$}, width=3, :wide)")

	cmd := blocks[0].(*ast.Plain).Inner[0].(*ast.Command)
	require.Len(t, cmd.Parameters, 3)

	content, ok := cmd.Parameters[0].Value.(ast.ContentValue)
	require.True(t, ok)
	assert.Equal(t, ast.ContentValue{&ast.Paragraph{Inner: []ast.Inline{
		txt("A "),
		&ast.Styled{Style: ast.StyleEmphasis, Inner: []ast.Inline{txt("b")}},
		txt(" "),
		&ast.Math{Source: "c", Span: source.NewSpan(20, 23)},
	}}}, content)
	assert.Equal(t, ast.IntValue(3), cmd.Parameters[1].Value)
	assert.Equal(t, ast.FlagValue("wide"), cmd.Parameters[2].Value)
}

func TestParse_CodeBlocks(t *testing.T) {
	t.Parallel()

	input := "Text\n\n```python, id=c1\nx = 1\n```\n\n``\ny = 2\n``|cell\n\nAfter"
	blocks := parse(t, New(FlavorCommonMark), input)

	require.Len(t, blocks, 4)
	assert.Equal(t, &ast.Paragraph{Inner: []ast.Inline{txt("Text")}}, blocks[0])
	assert.Equal(t, &ast.Paragraph{Inner: []ast.Inline{txt("After")}}, blocks[3])

	listing := blocks[1].(*ast.Plain).Inner[0].(*ast.CodeBlock)
	assert.Equal(t, "python", listing.Language)
	assert.False(t, listing.DisplayCell)
	assert.Equal(t, []ast.CodeAttr{{Value: "python"}, {Key: "id", Value: "c1"}}, listing.Tags)
	assert.Equal(t, "x = 1\n", listing.Source.String(true))
	assert.Equal(t, 0, listing.Index)
	assert.True(t, strings.HasPrefix(listing.Span.Text(input), "```python"))

	cell := blocks[2].(*ast.Plain).Inner[0].(*ast.CodeBlock)
	assert.True(t, cell.DisplayCell)
	assert.Equal(t, "cell", cell.Label)
	assert.Empty(t, cell.Language)
	assert.Equal(t, 1, cell.Index)
}

func TestParse_CodeBlockFollowedByText(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "```py\nx\n```\nAfter *it*\n")

	require.Len(t, blocks, 2)
	assert.IsType(t, &ast.CodeBlock{}, blocks[0].(*ast.Plain).Inner[0])
	assert.Equal(t, &ast.Paragraph{Inner: []ast.Inline{
		txt("After "),
		&ast.Styled{Style: ast.StyleEmphasis, Inner: []ast.Inline{txt("it")}},
	}}, blocks[1])
}

func TestParse_CodeBlockInsideParagraph(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "Before\n```py\nx\n```\nAfter")

	require.Len(t, blocks, 1)
	para := blocks[0].(*ast.Paragraph)
	require.Len(t, para.Inner, 5)
	assert.Equal(t, txt("Before"), para.Inner[0])
	assert.IsType(t, &ast.SoftBreak{}, para.Inner[1])
	assert.IsType(t, &ast.CodeBlock{}, para.Inner[2])
	assert.Equal(t, txt("After"), para.Inner[4])
}

func TestParse_LanguageDetection(t *testing.T) {
	t.Parallel()

	input := "```\npackage main\n```"

	plain := parse(t, New(FlavorCommonMark), input)
	assert.Empty(t, plain[0].(*ast.Plain).Inner[0].(*ast.CodeBlock).Language)

	detected := parse(t, New(FlavorCommonMark, WithLanguageDetection()), input)
	assert.Equal(t, "go", detected[0].(*ast.Plain).Inner[0].(*ast.CodeBlock).Language)
}

func TestParse_BlockQuoteFlattensParagraphs(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "> one $x$\n>\n> two\n")

	assert.Equal(t, []ast.Block{&ast.BlockQuote{Inner: []ast.Inline{
		txt("one "),
		&ast.Math{Source: "x", Span: source.NewSpan(6, 9)},
		&ast.HardBreak{},
		txt("two"),
	}}}, blocks)
}

func TestParse_Lists(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "- a $x$\n- b\n\n3. c\n")

	require.Len(t, blocks, 2)
	assert.Equal(t, &ast.List{Items: []ast.Block{
		&ast.ListItem{Inner: []ast.Block{&ast.Plain{Inner: []ast.Inline{
			txt("a "),
			&ast.Math{Source: "x", Span: source.NewSpan(4, 7)},
		}}}},
		&ast.ListItem{Inner: []ast.Block{&ast.Plain{Inner: []ast.Inline{txt("b")}}}},
	}}, blocks[0])

	ordered := blocks[1].(*ast.List)
	require.NotNil(t, ordered.Start)
	assert.Equal(t, uint64(3), *ordered.Start)
}

func TestParse_HeadingAttributes(t *testing.T) {
	t.Parallel()

	input := "## Title {#tid .c1 .c2}\n"

	without := parse(t, New(FlavorCommonMark), input)
	assert.Empty(t, without[0].(*ast.Heading).ID)

	with := parse(t, New(FlavorCommonMark, WithHeadingAttributes()), input)
	assert.Equal(t, &ast.Heading{
		Level:   2,
		ID:      "tid",
		Classes: []string{"c1", "c2"},
		Inner:   []ast.Inline{txt("Title")},
	}, with[0])
}

func TestParse_EscapesAndVerbatim(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), `\#notcmd costs \$5, a \{<b>*x*\} c &amp; <elem-3>`)

	assert.Equal(t, []ast.Block{&ast.Paragraph{Inner: []ast.Inline{
		txt("#notcmd costs $5, a <b>*x* c & <elem-3>"),
	}}}, blocks)
}

func TestParse_LinksAndImages(t *testing.T) {
	t.Parallel()

	input := "[a $x$](http://u \"t\") ![alt](img.png) <https://x.io>"
	blocks := parse(t, New(FlavorCommonMark), input)

	para := blocks[0].(*ast.Paragraph)
	require.Len(t, para.Inner, 5)
	assert.Equal(t, &ast.Link{
		LinkType: ast.LinkInline,
		URL:      "http://u",
		Title:    "t",
		Inner:    []ast.Inline{txt("a "), &ast.Math{Source: "x", Span: source.NewSpan(3, 6)}},
	}, para.Inner[0])
	assert.Equal(t, &ast.Image{LinkType: ast.LinkInline, URL: "img.png", Inner: []ast.Inline{txt("alt")}}, para.Inner[2])
	assert.Equal(t, &ast.Link{LinkType: ast.LinkAutolink, URL: "https://x.io", Inner: []ast.Inline{txt("https://x.io")}}, para.Inner[4])
}

func TestParse_RulesAndCode(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "a\n\n***\n\n    indented\n\n~~~\ntilde\n~~~\n")

	assert.Equal(t, []ast.Block{
		&ast.Paragraph{Inner: []ast.Inline{txt("a")}},
		&ast.Plain{Inner: []ast.Inline{&ast.Rule{}}},
		&ast.Plain{Inner: []ast.Inline{&ast.Code{Source: "indented\n"}}},
		&ast.Plain{Inner: []ast.Inline{&ast.Code{Source: "tilde\n"}}},
	}, blocks)
}

func TestParse_RawHTML(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "a <span>b</span>\n\n<div>\nblock\n</div>\n")

	assert.Equal(t, []ast.Block{
		&ast.Paragraph{Inner: []ast.Inline{
			txt("a "), &ast.HTML{Value: "<span>"}, txt("b"), &ast.HTML{Value: "</span>"},
		}},
		&ast.Plain{Inner: []ast.Inline{&ast.HTML{Value: "<div>\nblock\n</div>\n"}}},
	}, blocks)
}

func TestParse_GFM(t *testing.T) {
	t.Parallel()

	input := "~~gone~~ $x$\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"

	blocks := parse(t, New(FlavorGFM), input)
	require.Len(t, blocks, 1, "tables are dropped")
	para := blocks[0].(*ast.Paragraph)
	assert.Equal(t, &ast.Styled{Style: ast.StyleStrikethrough, Inner: []ast.Inline{txt("gone")}}, para.Inner[0])
	assert.IsType(t, &ast.Math{}, para.Inner[2])
}

func TestParse_Script(t *testing.T) {
	t.Parallel()

	blocks := parse(t, New(FlavorCommonMark), "#!py{print(#{*hi*})}")

	script := blocks[0].(*ast.Plain).Inner[0].(*ast.Script)
	assert.Equal(t, "py", script.ID)
	assert.Equal(t, "print(#{0})", script.Source)
	assert.Equal(t, [][]ast.Block{{&ast.Paragraph{Inner: []ast.Inline{
		&ast.Styled{Style: ast.StyleEmphasis, Inner: []ast.Inline{txt("hi")}},
	}}}}, script.Groups)
}

func TestParse_SpansIndexOriginalSource(t *testing.T) {
	t.Parallel()

	input := "---\ntitle: x\n---\n# H $a$\n\n- #cmd(p={$b$}){body $c$}\n\n```py\nx\n```\n"
	blocks := parse(t, New(FlavorCommonMark), input)

	var spans []string
	ast.Inspect(blocks, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.Math:
			spans = append(spans, v.Span.Text(input))
		case *ast.Command:
			spans = append(spans, v.Span.Text(input))
		case *ast.CodeBlock:
			spans = append(spans, v.Span.Text(input))
		}
		return true
	})

	assert.Equal(t, []string{
		"$a$",
		"#cmd(p={$b$}){body $c$}",
		"$b$",
		"$c$",
		"```py\nx\n```",
	}, spans)
}

func TestBuild_PlaceholderOutOfRangePanics(t *testing.T) {
	t.Parallel()

	p := New(FlavorCommonMark)
	assert.Panics(t, func() {
		p.Build(&compose.Composed{Source: "text <elem-5> text"})
	})
}

func TestBuilder_InvariantViolationsPanic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []Event
	}{
		{
			name:   "end without start",
			events: []Event{{Kind: EventEnd, Tag: TagParagraph}},
		},
		{
			name:   "mismatched end",
			events: []Event{{Kind: EventStart, Tag: TagParagraph}, {Kind: EventEnd, Tag: TagList}},
		},
		{
			name:   "unclosed frame",
			events: []Event{{Kind: EventStart, Tag: TagEmphasis}, {Kind: EventText, Text: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := &builder{parser: New(FlavorCommonMark), composed: &compose.Composed{}}
			assert.Panics(t, func() { b.build(tt.events) })
		})
	}
}

func TestBuilder_InlineInBlockFrameIsWrapped(t *testing.T) {
	t.Parallel()

	b := &builder{parser: New(FlavorCommonMark), composed: &compose.Composed{}}
	blocks := b.build([]Event{{Kind: EventText, Text: "loose"}, {Kind: EventRule}})

	assert.Equal(t, []ast.Block{
		&ast.Plain{Inner: []ast.Inline{txt("loose")}},
		&ast.Plain{Inner: []ast.Inline{&ast.Rule{}}},
	}, blocks)
}

// visibleText concatenates the text a reader would see.
func visibleText(blocks []ast.Block) string {
	var sb strings.Builder
	ast.Inspect(blocks, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.Text:
			sb.WriteString(v.Value)
		case *ast.Code:
			sb.WriteString(v.Source)
		case *ast.SoftBreak, *ast.HardBreak:
			sb.WriteString("\n")
		}
		return true
	})
	return sb.String()
}

func withoutSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestParse_PlainMarkdownMatchesGoldmark(t *testing.T) {
	t.Parallel()

	tagPattern := regexp.MustCompile(`<[^>]*>`)

	tests := []struct {
		name  string
		input string
	}{
		{"headings", "# Title\n\n## Sub *title*\n\nSetext\n======\n"},
		{"emphasis", "Some *em*, **strong** and ***both*** text.\n"},
		{"lists", "- one\n- two\n  - nested\n\n3. three\n4. four\n"},
		{"loose list", "- a\n\n- b\n"},
		{"links", "A [link](http://example.com \"title\") and [ref][r].\n\n[r]: /target\n"},
		{"entities", "Copyright &copy; 2024 &amp; more &#35;1 &#x41;.\n"},
		{"escapes", "\\*not em\\* \\_x\\_ \\# not a command \\[no link\\]\n"},
		{"blockquote", "> quoted *text*\n> more\n\n> second\n"},
		{"breaks", "line one  \nline two\nline three\n"},
		{"rule", "above\n\n***\n\nbelow\n"},
		{"indented code", "para\n\n    code line\n    x < y\n"},
		{"tilde fence", "~~~go\nfunc main() {}\n~~~\n"},
		{"hash in text", "Issue #12 and C# and a/b#frag.\n"},
	}

	p := New(FlavorCommonMark)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, goldmark.New().Convert([]byte(tt.input), &buf))
			want := html.UnescapeString(tagPattern.ReplaceAllString(buf.String(), ""))

			got := visibleText(parse(t, p, tt.input))
			assert.Equal(t, withoutSpace(want), withoutSpace(got))
		})
	}
}
