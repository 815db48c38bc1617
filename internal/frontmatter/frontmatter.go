// Package frontmatter separates metadata blocks from Markdown sources
// before conversion. The converter itself treats frontmatter delimiters as
// ordinary text, so sources that carry metadata strip it here first.
package frontmatter

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// Meta is the parsed metadata block. Title is the only field consulted by
// this program; everything else is preserved in Extra for callers.
type Meta struct {
	Title string         `yaml:"title"`
	Extra map[string]any `yaml:",inline"`
}

// Strip separates a YAML ("---") or TOML ("+++") frontmatter block from
// src and returns the remaining body. Sources without a block come back
// unchanged with had == false. A block that is present but malformed is an
// error; silently converting it would leak metadata into the output.
func Strip(src []byte) (body []byte, meta Meta, had bool, err error) {
	body, err = frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("parse frontmatter: %w", err)
	}
	return body, meta, len(body) != len(src), nil
}
