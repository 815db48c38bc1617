package markdown

// contextStack holds the open formatting contexts. The arena is allocated
// once at the configured capacity and never grows: a push beyond capacity
// is refused, which is what bounds memory and nesting depth for the whole
// parse. The bottom frame, while any input is being consumed, is always a
// block context.
type contextStack struct {
	arena []frame
	top   int // index of the top frame, -1 when empty
}

func newContextStack(capacity int) contextStack {
	return contextStack{arena: make([]frame, capacity), top: -1}
}

func (s *contextStack) depth() int { return s.top + 1 }

func (s *contextStack) empty() bool { return s.top < 0 }

// peek returns the top frame, or nil when the stack is empty. The pointer
// stays valid until the next push or pop.
func (s *contextStack) peek() *frame {
	if s.top < 0 {
		return nil
	}
	return &s.arena[s.top]
}

// bottom returns the block frame the stack is rooted in, nil when empty.
func (s *contextStack) bottom() *frame {
	if s.top < 0 {
		return nil
	}
	return &s.arena[0]
}

// push opens a context of the given kind. It reports false when the stack
// is at capacity; the caller turns that into a *DepthError carrying the
// input position.
func (s *contextStack) push(kind stateKind, start int) (*frame, bool) {
	if s.top+1 >= len(s.arena) {
		return nil, false
	}
	s.top++
	f := &s.arena[s.top]
	f.reset(kind, start)
	return f, true
}

// pop closes the top context and returns it. The returned pointer stays
// valid until the next push. It reports false on an empty stack.
func (s *contextStack) pop() (*frame, bool) {
	if s.top < 0 {
		return nil, false
	}
	f := &s.arena[s.top]
	s.top--
	return f, true
}
