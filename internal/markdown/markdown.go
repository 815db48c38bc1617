// Package markdown converts Markdown source into an HTML fragment in a
// single left-to-right pass over the input bytes.
//
// The converter never builds a document tree. It walks the input once with
// a forward-only cursor, tracks open block and inline formatting contexts
// on an explicit fixed-capacity stack, and appends HTML to an output buffer
// as soon as each byte's meaning is decided. Output is always balanced:
// contexts left open at the end of a line or of the input are closed in
// LIFO order.
//
// The produced HTML is a fragment for embedding in a page, not a complete
// document. Heading and paragraph tags are emitted back to back without
// separator bytes.
package markdown

// DefaultMaxDepth is the context stack capacity used when Options.MaxDepth
// is zero. Each open block or inline construct occupies one slot.
const DefaultMaxDepth = 64

// Options configures a single Parse call.
type Options struct {
	// MaxDepth bounds how deeply block and inline contexts may nest.
	// A push beyond the limit aborts the parse with *DepthError.
	// Zero selects DefaultMaxDepth.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Parse converts src to an HTML fragment.
//
// Parse is a pure function: it consults no state outside the call and is
// safe for concurrent use. Any byte sequence is acceptable input; the
// converter is byte-transparent and performs no encoding validation.
// The only error condition reachable from well-formed use is *DepthError,
// returned when nesting exceeds Options.MaxDepth.
func Parse(src []byte, opts Options) ([]byte, error) {
	p := newParser(src, opts)
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.out.bytes(), nil
}
