package markdown

import "strconv"

// stateKind identifies one formatting context. Every open construct on the
// stack carries exactly one kind; the kind selects the tag pair to emit and
// the handler class that interprets bytes while the context is on top.
type stateKind uint8

const (
	stateParagraph stateKind = iota
	stateHeader
	stateBold
	stateItalic
	stateUnderscore
	stateCode
	stateRawHTML
	stateLinkText
	stateLinkURL
	stateImageAlt
	stateImageURL
)

// stateClass groups kinds by how the engine interprets bytes while that
// kind is on top of the stack.
type stateClass uint8

const (
	// classBlock: paragraph or heading. Markers open inline contexts,
	// terminators close or continue the block.
	classBlock stateClass = iota
	// classInline: emphasis, code spans and raw HTML spans.
	classInline
	// classLink: the accumulation phases of a link or image construct.
	classLink
)

func (k stateKind) class() stateClass {
	switch k {
	case stateParagraph, stateHeader:
		return classBlock
	case stateBold, stateItalic, stateUnderscore, stateCode, stateRawHTML:
		return classInline
	default:
		return classLink
	}
}

// frame is one open context. Frames live in the stack's arena and are
// reused across pushes; the link buffers keep their backing arrays.
type frame struct {
	kind  stateKind
	level int // heading level 1..6 when kind == stateHeader
	start int // byte offset of the construct's first marker byte
	text  []byte
	url   []byte
}

func (f *frame) reset(kind stateKind, start int) {
	f.kind = kind
	f.level = 0
	f.start = start
	f.text = f.text[:0]
	f.url = f.url[:0]
}

// tagPair is the HTML emitted when a fixed-tag context opens and closes.
// Heading tags depend on the level and are produced separately.
type tagPair struct {
	start, end string
}

var tags = map[stateKind]tagPair{
	stateParagraph:  {"<p>", "</p>"},
	stateBold:       {"<b>", "</b>"},
	stateItalic:     {"<i>", "</i>"},
	stateUnderscore: {"<u>", "</u>"},
	stateCode:       {`<span class="code"><code class="code">`, "</code></span>"},
}

func headerTags(level int) tagPair {
	n := strconv.Itoa(level)
	return tagPair{"<h" + n + ">", "</h" + n + ">"}
}
