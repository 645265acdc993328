// Package notice finds, parses and renders copyright notices.
//
// A notice is a comment statement of the form
//
//	Copyright [©|(c)] <years> <organization text>
//
// where <years> uses the grammar of package years. Parse locates the first
// notice in a file's leading comment region and reports the exact byte span
// of the statement, so callers can replace it without touching the comment
// delimiters or any other byte of the file.
package notice

import (
	"errors"

	"github.com/steveyegge/copyrighter/internal/comment"
	"github.com/steveyegge/copyrighter/internal/years"
)

var (
	// ErrEmptyOrganization is returned when no organization text is supplied.
	ErrEmptyOrganization = errors.New("organization is required")

	// ErrEmptyYearSet is returned when rendering a notice with no years.
	ErrEmptyYearSet = errors.New("no years to render")
)

// Span is a half-open byte range [Start, End) within a file.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Notice is a copyright statement, either parsed from a file or rendered.
type Notice struct {
	// Organization is the text after the years. Informational only; callers
	// render with their own organization.
	Organization string

	// Years holds the parsed years; empty when YearsErr is set
	Years years.Set

	// YearsText is the raw year-token run found after "Copyright"
	YearsText string

	// YearsErr is a *years.MalformedYearsError when YearsText did not parse
	YearsErr error

	// Style is the comment style the notice was found in
	Style comment.Style

	// Span covers the statement from "Copyright" to the end of the
	// statement on its line, excluding trailing space and block closers
	Span Span

	// Line is the 1-based line number the notice was found on
	Line int
}
