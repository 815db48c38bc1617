package markdown

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, src string) string {
	t.Helper()
	out, err := Parse([]byte(src), Options{})
	require.NoError(t, err)
	return string(out)
}

func TestParse_EmptyInput(t *testing.T) {
	require.Equal(t, "", parseString(t, ""))
	require.Equal(t, "", parseString(t, "\n\n\n"))
	require.Equal(t, "", parseString(t, "\r\n"))
}

func TestParse_HeaderLevels(t *testing.T) {
	for level := 1; level <= 6; level++ {
		src := ""
		for i := 0; i < level; i++ {
			src += "#"
		}
		src += " text\n"
		want := fmt.Sprintf("<h%d>text</h%d>", level, level)
		require.Equal(t, want, parseString(t, src), "level %d", level)
	}
}

func TestParse_HeaderRunPastSixIsLiteral(t *testing.T) {
	require.Equal(t, "<p>####### seven</p>", parseString(t, "####### seven\n"))
}

func TestParse_HeaderNeedsSpaceAfterRun(t *testing.T) {
	require.Equal(t, "<p>#hash</p>", parseString(t, "#hash"))
	require.Equal(t, "<p>##also</p>", parseString(t, "##also"))
}

func TestParse_HeaderOnlyAtBlockStart(t *testing.T) {
	// Mid-paragraph '#' is plain text, even right after a soft break.
	require.Equal(t, "<p>a # b</p>", parseString(t, "a # b"))
	require.Equal(t, "<p>a # b</p>", parseString(t, "a\n# b"))
	// A blank line starts a new block, so the heading applies again.
	require.Equal(t, "<p>a</p><h1>b</h1>", parseString(t, "a\n\n# b"))
}

func TestParse_EmptyHeader(t *testing.T) {
	require.Equal(t, "<h1></h1>", parseString(t, "# "))
	require.Equal(t, "<h2></h2>", parseString(t, "## \n"))
}

func TestParse_HeaderIsSingleLine(t *testing.T) {
	require.Equal(t, "<h1>title</h1><p>body</p>", parseString(t, "# title\nbody"))
}

func TestParse_HeaderWithInlineContent(t *testing.T) {
	require.Equal(t, "<h2>a <b>b</b></h2>", parseString(t, "## a *b*\n"))
}

func TestParse_HeaderForceClosesEmphasis(t *testing.T) {
	// Emphasis left open when the header line ends is closed before the
	// header tag, keeping the output balanced.
	require.Equal(t, "<h1><b>open</b></h1>", parseString(t, "# *open\n"))
	require.Equal(t, "<h1><b>a <u>b</u></b></h1><p>next</p>", parseString(t, "# *a _b\nnext"))
}

func TestParse_ParagraphSoftBreak(t *testing.T) {
	require.Equal(t, "<p>line one line two</p><p>line three</p>",
		parseString(t, "line one\nline two\n\nline three"))
}

func TestParse_ExtraBlankLinesCollapse(t *testing.T) {
	require.Equal(t, "<p>a</p><p>b</p>", parseString(t, "a\n\n\n\n\nb"))
	require.Equal(t, "<p>a</p>", parseString(t, "\n\na\n\n"))
}

func TestParse_LineTerminatorForms(t *testing.T) {
	// CRLF and bare CR count as one terminator each, same as LF.
	require.Equal(t, "<p>a b</p>", parseString(t, "a\r\nb"))
	require.Equal(t, "<p>a b</p>", parseString(t, "a\rb"))
	require.Equal(t, "<p>a</p><p>b</p>", parseString(t, "a\r\n\r\nb"))
	require.Equal(t, "<p>a</p><p>b</p>", parseString(t, "a\r\rb"))
}

func TestParse_Bold(t *testing.T) {
	require.Equal(t, "<p><b>bold</b></p>", parseString(t, "*bold*"))
}

func TestParse_Italic(t *testing.T) {
	require.Equal(t, "<p><i>italic</i></p>", parseString(t, "/italic/"))
}

func TestParse_Underscore(t *testing.T) {
	require.Equal(t, "<p><u>underscore</u></p>", parseString(t, "_underscore_"))
}

func TestParse_NestedEmphasis(t *testing.T) {
	require.Equal(t, "<p>a<u><b>b</b></u>c</p>", parseString(t, "a_*b*_c"))
}

func TestParse_EmptyEmphasis(t *testing.T) {
	require.Equal(t, "<p><b></b></p>", parseString(t, "**"))
}

func TestParse_UnclosedEmphasisClosedAtEndOfInput(t *testing.T) {
	require.Equal(t, "<p><b>bold without close</b></p>", parseString(t, "*bold without close"))
}

func TestParse_UnclosedEmphasisClosedAtBlankLine(t *testing.T) {
	require.Equal(t, "<p><b>a</b></p><p>b</p>", parseString(t, "*a\n\nb"))
}

func TestParse_EmphasisSurvivesSoftBreak(t *testing.T) {
	require.Equal(t, "<p><b>a b</b></p>", parseString(t, "*a\nb*"))
}

func TestParse_InterleavedMarkersNest(t *testing.T) {
	// A marker only closes the innermost open context, so crossing markers
	// open fresh contexts and everything unwinds LIFO at block end.
	require.Equal(t, "<p><b>a<u>b<b>c<u></u></b></u></b></p>", parseString(t, "*a_b*c_"))
}

func TestParse_CodeSpan(t *testing.T) {
	require.Equal(t,
		`<p><span class="code"><code class="code">code</code></span></p>`,
		parseString(t, "`code`"))
}

func TestParse_CodeSpanContentIsVerbatim(t *testing.T) {
	// No markers, no escapes and no raw HTML inside a span; entities are
	// still escaped.
	require.Equal(t,
		`<p><span class="code"><code class="code">*a* \n &lt;b&gt;</code></span></p>`,
		parseString(t, "`*a* \\n <b>`"))
}

func TestParse_CodeSpanEndsAtLineBreak(t *testing.T) {
	require.Equal(t,
		`<p>a <span class="code"><code class="code">x</code></span> b</p>`,
		parseString(t, "a `x\nb"))
}

func TestParse_EmptyCodeSpan(t *testing.T) {
	require.Equal(t,
		`<p><span class="code"><code class="code"></code></span></p>`,
		parseString(t, "``"))
}

func TestParse_EntityEscaping(t *testing.T) {
	require.Equal(t, "<p>2 &lt; 3 &gt; 1</p>", parseString(t, "2 < 3 > 1"))
	require.Equal(t, "<p>AT&amp;T</p>", parseString(t, "AT&T"))
}

func TestParse_RawHTMLPassthrough(t *testing.T) {
	require.Equal(t, "<p>a <br> b</p>", parseString(t, "a <br> b"))
	require.Equal(t, "<p><em>x</em></p>", parseString(t, "<em>x</em>"))
	require.Equal(t, `<p><a id="x">y</a></p>`, parseString(t, `<a id="x">y</a>`))
}

func TestParse_RawHTMLEndsAtLineBreak(t *testing.T) {
	// An angle bracket left open at the end of the line stays open in the
	// output; the break is then handled normally.
	require.Equal(t, "<p>a <div b</p>", parseString(t, "a <div\nb"))
}

func TestParse_LooseAngleBracketIsText(t *testing.T) {
	// '<' opens a raw span only before a tag name letter or '/'.
	require.Equal(t, "<p>1 &lt; 2</p>", parseString(t, "1 < 2"))
	require.Equal(t, "<p>&lt;3</p>", parseString(t, "<3"))
	require.Equal(t, "<p>&lt;</p>", parseString(t, "<"))
}

func TestParse_BackslashEscapes(t *testing.T) {
	require.Equal(t, "<p>*not bold*</p>", parseString(t, `\*not bold\*`))
	require.Equal(t, "<p>_plain_</p>", parseString(t, `\_plain\_`))
	require.Equal(t, "<p>&lt;div&gt;</p>", parseString(t, `\<div>`))
	require.Equal(t, "<p>[x]</p>", parseString(t, `\[x]`))
	require.Equal(t, `<p>\</p>`, parseString(t, `\\`))
}

func TestParse_TrailingBackslash(t *testing.T) {
	require.Equal(t, `<p>a\</p>`, parseString(t, `a\`))
}

func TestParse_ExclamationWithoutBracketIsText(t *testing.T) {
	require.Equal(t, "<p>hey!</p>", parseString(t, "hey!"))
	require.Equal(t, "<p>!x</p>", parseString(t, "!x"))
}

func TestParse_MixedDocument(t *testing.T) {
	src := "# Title\n\nIntro with *bold* and a [link](https://example.com/a b).\n\n## Second\ntail"
	want := `<h1>Title</h1><p>Intro with <b>bold</b> and a <a href="https://example.com/a%20b">link</a>.</p><h2>Second</h2><p>tail</p>`
	require.Equal(t, want, parseString(t, src))
}
