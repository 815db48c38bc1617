package markdown

// emitter owns the output buffer. Every writer appends; emitted bytes are
// never revisited. Contexts without an entry in the tag table (raw HTML
// spans, link phases) open and close silently.
type emitter struct {
	buf []byte
}

func newEmitter(sizeHint int) emitter {
	return emitter{buf: make([]byte, 0, sizeHint+sizeHint/4+16)}
}

func (e *emitter) bytes() []byte { return e.buf }

func (e *emitter) raw(s string) { e.buf = append(e.buf, s...) }

func (e *emitter) rawByte(b byte) { e.buf = append(e.buf, b) }

// literal appends one content byte, escaping the characters HTML assigns
// meaning to.
func (e *emitter) literal(b byte) {
	switch b {
	case '<':
		e.raw("&lt;")
	case '>':
		e.raw("&gt;")
	case '&':
		e.raw("&amp;")
	default:
		e.buf = append(e.buf, b)
	}
}

func (e *emitter) literalBytes(p []byte) {
	for _, b := range p {
		e.literal(b)
	}
}

// attr appends attribute-value text: literal escaping plus double quotes,
// which would otherwise end the enclosing quoted attribute.
func (e *emitter) attr(p []byte) {
	for _, b := range p {
		if b == '"' {
			e.raw("&quot;")
		} else {
			e.literal(b)
		}
	}
}

// href appends a URL attribute value. URLs pass through untouched apart
// from spaces and double quotes, which are percent-encoded.
func (e *emitter) href(p []byte) {
	for _, b := range p {
		switch b {
		case ' ':
			e.raw("%20")
		case '"':
			e.raw("%22")
		default:
			e.buf = append(e.buf, b)
		}
	}
}

func (e *emitter) open(f *frame) {
	if f.kind == stateHeader {
		e.raw(headerTags(f.level).start)
		return
	}
	e.raw(tags[f.kind].start)
}

func (e *emitter) close(f *frame) {
	if f.kind == stateHeader {
		e.raw(headerTags(f.level).end)
		return
	}
	e.raw(tags[f.kind].end)
}

func (e *emitter) link(text, url []byte) {
	e.raw(`<a href="`)
	e.href(url)
	e.raw(`">`)
	e.literalBytes(text)
	e.raw("</a>")
}

func (e *emitter) image(alt, url []byte) {
	e.raw(`<img src="`)
	e.href(url)
	e.raw(`" alt="`)
	e.attr(alt)
	e.raw(`">`)
}
