package markdown

// cursor reads the input left to right. The position only ever moves
// forward; decisions that need future bytes use bounded lookahead instead
// of rewinding.
type cursor struct {
	src []byte
	pos int
}

func (c *cursor) done() bool { return c.pos >= len(c.src) }

func (c *cursor) current() byte { return c.src[c.pos] }

// peek returns the byte n positions ahead of the current one without
// consuming anything. ok is false past the end of input.
func (c *cursor) peek(n int) (b byte, ok bool) {
	if c.pos+n >= len(c.src) {
		return 0, false
	}
	return c.src[c.pos+n], true
}

func (c *cursor) skip(n int) { c.pos += n }

// terminator returns the width of the line terminator at the current
// position: 2 for "\r\n", 1 for "\n" or a bare "\r", 0 otherwise. All
// three forms count as exactly one line break.
func (c *cursor) terminator() int {
	return terminatorWidth(c.src, c.pos)
}

// blankAfter reports whether the line break of width w at the current
// position is followed by another line break or by end of input, which
// ends the block instead of continuing it.
func (c *cursor) blankAfter(w int) bool {
	next := c.pos + w
	return next >= len(c.src) || terminatorWidth(c.src, next) > 0
}

func terminatorWidth(src []byte, pos int) int {
	if pos >= len(src) {
		return 0
	}
	switch src[pos] {
	case '\n':
		return 1
	case '\r':
		if pos+1 < len(src) && src[pos+1] == '\n' {
			return 2
		}
		return 1
	}
	return 0
}
