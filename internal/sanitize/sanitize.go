// Package sanitize post-processes rendered fragments when the Markdown
// source is untrusted. The converter passes raw HTML spans through
// verbatim; this pass is what removes anything dangerous they may carry.
package sanitize

import "github.com/microcosm-cc/bluemonday"

// Policy wraps a bluemonday policy tuned to the converter's output: the
// UGC baseline plus the class attribute carried by code spans.
type Policy struct {
	policy *bluemonday.Policy
}

func NewPolicy() *Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("span", "div")
	p.AllowAttrs("class").OnElements("span", "code", "div")
	return &Policy{policy: p}
}

// Sanitize returns a cleaned copy of the fragment. Links gain
// rel="nofollow"; scripts, event handlers and unknown elements are
// dropped.
func (p *Policy) Sanitize(fragment []byte) []byte {
	return p.policy.SanitizeBytes(fragment)
}
