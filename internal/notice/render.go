package notice

import (
	"fmt"
	"strings"

	"github.com/steveyegge/copyrighter/internal/comment"
	"github.com/steveyegge/copyrighter/internal/years"
)

// DefaultRights is appended to rendered statements unless overridden.
const DefaultRights = "All rights reserved."

// RenderOptions controls the statement text.
type RenderOptions struct {
	// Symbol writes "Copyright ©" instead of "Copyright"
	Symbol bool

	// Rights is appended after the organization; empty disables it
	Rights string
}

// Statement returns the notice text without comment delimiters:
//
//	Copyright [© ]<years> <org>[ <rights>]
//
// Whitespace inside org is collapsed to single spaces. When a rights
// statement is appended, org is first terminated with a period; an org that
// already contains the rights text is left as is.
func Statement(org string, ys years.Set, opts RenderOptions) (string, error) {
	org = strings.Join(strings.Fields(org), " ")
	if org == "" {
		return "", ErrEmptyOrganization
	}
	if ys.Len() == 0 {
		return "", ErrEmptyYearSet
	}

	var b strings.Builder
	b.WriteString("Copyright ")
	if opts.Symbol {
		b.WriteString("© ")
	}
	b.WriteString(years.Format(ys))
	b.WriteByte(' ')
	b.WriteString(org)

	rights := strings.TrimSpace(opts.Rights)
	if rights != "" && !strings.Contains(strings.ToLower(org), strings.ToLower(rights)) {
		if !strings.HasSuffix(org, ".") {
			b.WriteByte('.')
		}
		b.WriteByte(' ')
		b.WriteString(rights)
	}
	return b.String(), nil
}

// Render returns the statement as a complete one-line comment in style.
func Render(org string, ys years.Set, style comment.Style, opts RenderOptions) (string, error) {
	stmt, err := Statement(org, ys, opts)
	if err != nil {
		return "", err
	}
	if err := CheckDelimiters(stmt, style); err != nil {
		return "", err
	}
	return style.Wrap(stmt), nil
}

// CheckDelimiters fails if stmt would terminate a block comment in style early.
func CheckDelimiters(stmt string, style comment.Style) error {
	if closer := style.Close(); closer != "" && strings.Contains(stmt, closer) {
		return fmt.Errorf("notice text contains comment delimiter %q", closer)
	}
	return nil
}
