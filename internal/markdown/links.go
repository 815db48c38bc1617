package markdown

// Link and image constructs are parsed in two phases that live on the
// context stack like any other context: a text phase from '[' to ']', and
// a URL phase from '(' to ')'. Both accumulate into the frame's buffers
// and emit nothing until the construct completes. Malformed input is never
// an error: whatever was consumed is re-emitted as literal text and the
// parse continues.

func (p *parser) stepLink(top *frame) error {
	switch top.kind {
	case stateLinkText, stateImageAlt:
		return p.stepLinkText(top)
	case stateLinkURL, stateImageURL:
		return p.stepLinkURL(top)
	default:
		return &StateError{Offset: p.cur.pos, Kind: uint8(top.kind)}
	}
}

func (p *parser) stepLinkText(top *frame) error {
	if p.cur.terminator() > 0 {
		return p.abortLink() // the break is reprocessed in the enclosing context
	}
	b := p.cur.current()
	switch b {
	case '\\':
		if nb, ok := p.cur.peek(1); ok {
			top.text = append(top.text, nb)
			p.cur.skip(2)
			return nil
		}
		top.text = append(top.text, b)
		p.cur.skip(1)
		return nil
	case ']':
		if nb, ok := p.cur.peek(1); ok && nb == '(' {
			// Same frame, next phase; the accumulated text rides along.
			if top.kind == stateLinkText {
				top.kind = stateLinkURL
			} else {
				top.kind = stateImageURL
			}
			p.cur.skip(2)
			return nil
		}
		// ']' not followed by '(': the construct never was a link.
		f, err := p.popTop()
		if err != nil {
			return err
		}
		p.emitLinkFallback(f)
		p.out.literal(']')
		p.cur.skip(1)
		return nil
	default:
		top.text = append(top.text, b)
		p.cur.skip(1)
		return nil
	}
}

func (p *parser) stepLinkURL(top *frame) error {
	if p.cur.terminator() > 0 {
		return p.abortLink()
	}
	b := p.cur.current()
	switch b {
	case '\\':
		if nb, ok := p.cur.peek(1); ok {
			top.url = append(top.url, nb)
			p.cur.skip(2)
			return nil
		}
		top.url = append(top.url, b)
		p.cur.skip(1)
		return nil
	case ')':
		f, err := p.popTop()
		if err != nil {
			return err
		}
		if f.kind == stateImageURL {
			p.out.image(f.text, f.url)
		} else {
			p.out.link(f.text, f.url)
		}
		p.cur.skip(1)
		return nil
	default:
		top.url = append(top.url, b)
		p.cur.skip(1)
		return nil
	}
}

// abortLink abandons the construct on top of the stack, re-emitting what
// it consumed. The current byte is left for the enclosing context.
func (p *parser) abortLink() error {
	f, err := p.popTop()
	if err != nil {
		return err
	}
	p.emitLinkFallback(f)
	return nil
}

// emitLinkFallback reconstructs an unfinished link or image as literal
// text: the opening marker, the text consumed so far and, once the URL
// phase had begun, the "](" separator and the partial URL.
func (p *parser) emitLinkFallback(f *frame) {
	if f.kind == stateImageAlt || f.kind == stateImageURL {
		p.out.literal('!')
	}
	p.out.literal('[')
	p.out.literalBytes(f.text)
	if f.kind == stateLinkURL || f.kind == stateImageURL {
		p.out.literal(']')
		p.out.literal('(')
		p.out.literalBytes(f.url)
	}
}
