package markdown

// parser drives one Parse call: a cursor over the input, the context
// stack, and the emitter. It is built, run and discarded per call.
type parser struct {
	cur   cursor
	stack contextStack
	out   emitter
	limit int
}

func newParser(src []byte, opts Options) *parser {
	limit := opts.maxDepth()
	return &parser{
		cur:   cursor{src: src},
		stack: newContextStack(limit),
		out:   newEmitter(len(src)),
		limit: limit,
	}
}

// run is the engine loop. Whenever no context is open it classifies and
// opens the next block; otherwise it hands the current byte to the handler
// for the class of the top context.
func (p *parser) run() error {
	for {
		if p.stack.empty() {
			opened, err := p.openBlock()
			if err != nil {
				return err
			}
			if !opened {
				return nil
			}
			continue
		}
		if p.cur.done() {
			p.closeBlock()
			return nil
		}

		top := p.stack.peek()
		var err error
		switch top.kind.class() {
		case classBlock:
			err = p.stepBlock()
		case classInline:
			err = p.stepInline(top)
		case classLink:
			err = p.stepLink(top)
		}
		if err != nil {
			return err
		}
	}
}

// push opens a context, translating a full stack into *DepthError at the
// current input position.
func (p *parser) push(kind stateKind, marker byte) (*frame, error) {
	f, ok := p.stack.push(kind, p.cur.pos)
	if !ok {
		return nil, &DepthError{Offset: p.cur.pos, Marker: marker, Limit: p.limit}
	}
	return f, nil
}

// popTop closes the top context. Handlers only pop contexts they have
// just observed, so failure here means the engine itself is broken; it is
// reported rather than assumed away.
func (p *parser) popTop() (*frame, error) {
	f, ok := p.stack.pop()
	if !ok {
		return nil, &UnderflowError{Offset: p.cur.pos}
	}
	return f, nil
}

// openBlock skips line breaks between blocks and opens the next one,
// classifying a heading from a run of '#' at the start of its line. It
// reports false at end of input. Apart from a heading prefix the first
// content byte is not consumed, so markers work at the start of a block.
func (p *parser) openBlock() (bool, error) {
	for !p.cur.done() {
		w := p.cur.terminator()
		if w == 0 {
			break
		}
		p.cur.skip(w)
	}
	if p.cur.done() {
		return false, nil
	}

	if level, width, ok := p.classifyHeader(); ok {
		f, err := p.push(stateHeader, '#')
		if err != nil {
			return false, err
		}
		f.level = level
		p.cur.skip(width)
		p.out.open(f)
		return true, nil
	}

	f, err := p.push(stateParagraph, p.cur.current())
	if err != nil {
		return false, err
	}
	p.out.open(f)
	return true, nil
}

// classifyHeader inspects a run of '#' at the current position. One to six
// of them followed by a single space make a heading; the returned width
// covers the run and that space. A longer run, or no space after the run,
// leaves the whole line to the paragraph path with the '#' bytes as
// ordinary text.
func (p *parser) classifyHeader() (level, width int, ok bool) {
	if p.cur.current() != '#' {
		return 0, 0, false
	}
	run := 1
	for {
		b, ok := p.cur.peek(run)
		if !ok || b != '#' {
			break
		}
		run++
	}
	if run > 6 {
		return 0, 0, false
	}
	if b, ok := p.cur.peek(run); !ok || b != ' ' {
		return 0, 0, false
	}
	return run, run + 1, true
}

func (p *parser) stepBlock() error {
	if w := p.cur.terminator(); w > 0 {
		p.lineBreak(w)
		return nil
	}
	return p.stepText()
}

func (p *parser) stepInline(top *frame) error {
	switch top.kind {
	case stateCode:
		return p.stepCode()
	case stateRawHTML:
		return p.stepRaw()
	}
	if w := p.cur.terminator(); w > 0 {
		p.lineBreak(w)
		return nil
	}
	return p.stepText()
}

// lineBreak handles the terminator at the current position. Paragraph
// content continues across a single break as one space, inline contexts
// staying open. A blank line ends the block, as does any break while a
// heading is open; headings are single-line.
func (p *parser) lineBreak(w int) {
	block := p.stack.bottom()
	if block.kind == stateParagraph && !p.cur.blankAfter(w) {
		p.out.rawByte(' ')
		p.cur.skip(w)
		return
	}
	p.cur.skip(w)
	p.closeBlock()
}

// closeBlock closes every open context in LIFO order, the block last, so
// the emitted fragment stays balanced no matter what was left open.
// Unfinished link and image constructs fall back to their literal form.
func (p *parser) closeBlock() {
	for !p.stack.empty() {
		f, _ := p.stack.pop()
		if f.kind.class() == classLink {
			p.emitLinkFallback(f)
			continue
		}
		p.out.close(f)
	}
}

// stepText interprets one byte of ordinary block or emphasis content.
func (p *parser) stepText() error {
	b := p.cur.current()
	switch b {
	case '*':
		return p.toggle(stateBold, b)
	case '/':
		return p.toggle(stateItalic, b)
	case '_':
		return p.toggle(stateUnderscore, b)
	case '`':
		f, err := p.push(stateCode, b)
		if err != nil {
			return err
		}
		p.out.open(f)
		p.cur.skip(1)
		return nil
	case '[':
		if _, err := p.push(stateLinkText, b); err != nil {
			return err
		}
		p.cur.skip(1)
		return nil
	case '!':
		if nb, ok := p.cur.peek(1); ok && nb == '[' {
			if _, err := p.push(stateImageAlt, b); err != nil {
				return err
			}
			p.cur.skip(2)
			return nil
		}
		p.out.literal(b)
		p.cur.skip(1)
		return nil
	case '<':
		if nb, ok := p.cur.peek(1); ok && rawSpanStart(nb) {
			if _, err := p.push(stateRawHTML, b); err != nil {
				return err
			}
			p.out.rawByte('<')
			p.cur.skip(1)
			return nil
		}
		p.out.literal(b)
		p.cur.skip(1)
		return nil
	case '\\':
		if nb, ok := p.cur.peek(1); ok {
			p.out.literal(nb)
			p.cur.skip(2)
			return nil
		}
		p.out.literal(b)
		p.cur.skip(1)
		return nil
	default:
		p.out.literal(b)
		p.cur.skip(1)
		return nil
	}
}

// toggle closes the marker's context when it is on top of the stack and
// opens a new one otherwise. Only the top is consulted, so interleaved
// markers nest instead of overlapping and are unwound in LIFO order at
// block end.
func (p *parser) toggle(kind stateKind, marker byte) error {
	if top := p.stack.peek(); top != nil && top.kind == kind {
		f, err := p.popTop()
		if err != nil {
			return err
		}
		p.out.close(f)
		p.cur.skip(1)
		return nil
	}
	f, err := p.push(kind, marker)
	if err != nil {
		return err
	}
	p.out.open(f)
	p.cur.skip(1)
	return nil
}

// stepCode consumes code span content verbatim except for entity escaping.
// The only bytes with meaning inside a span are the closing backtick and
// the line terminator, which ends the span before the break itself is
// handled by the enclosing context.
func (p *parser) stepCode() error {
	if p.cur.terminator() > 0 {
		f, err := p.popTop()
		if err != nil {
			return err
		}
		p.out.close(f)
		return nil
	}
	if p.cur.current() == '`' {
		f, err := p.popTop()
		if err != nil {
			return err
		}
		p.out.close(f)
		p.cur.skip(1)
		return nil
	}
	p.out.literal(p.cur.current())
	p.cur.skip(1)
	return nil
}

// stepRaw copies a raw HTML span through unescaped. The span ends at the
// first '>'; a line break ends it with nothing further emitted.
func (p *parser) stepRaw() error {
	if p.cur.terminator() > 0 {
		_, err := p.popTop()
		return err
	}
	b := p.cur.current()
	p.out.rawByte(b)
	p.cur.skip(1)
	if b == '>' {
		_, err := p.popTop()
		return err
	}
	return nil
}

// rawSpanStart reports whether b, following '<', makes the '<' open a raw
// HTML span: a tag name letter or the '/' of a closing tag. Anything else
// keeps the '<' ordinary text.
func rawSpanStart(b byte) bool {
	return b == '/' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
