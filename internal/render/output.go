package render

import "strings"

// OutputPath derives the conventional HTML output path for a Markdown
// source file. A trailing .md is replaced by .html; any other name gets
// .html appended. Only the suffix is touched, so "docs/readme.md.md"
// becomes "docs/readme.md.html".
func OutputPath(source string) string {
	if rest := strings.TrimSuffix(source, ".md"); rest != source {
		return rest + ".html"
	}
	return source + ".html"
}
