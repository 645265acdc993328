package notice

import (
	"regexp"
	"strings"

	"github.com/steveyegge/copyrighter/internal/comment"
	"github.com/steveyegge/copyrighter/internal/years"
)

// DefaultMaxLines bounds how far into a file Parse looks for a notice.
const DefaultMaxLines = 50

// ParseOptions configures Parse.
type ParseOptions struct {
	// MaxLines is the number of lines scanned; <= 0 uses DefaultMaxLines
	MaxLines int

	// Rights is a rights statement that may sit on the line after the
	// notice, in addition to DefaultRights
	Rights string
}

var (
	// "Copyright", an optional symbol or colon, then the years
	copyrightWord = regexp.MustCompile(`(?i)\bcopyright\b(?:[ \t]*(?:©|\(c\)))?[ \t]*:?[ \t]*`)

	// a run of four-digit years and ranges; each token ends on a word boundary
	// so "2019 3M Company" yields "2019"
	yearRun = regexp.MustCompile(`^\d{4}(?:[ \t]*[-–—][ \t]*\d{4})?\b(?:[ \t]*,?[ \t]*\d{4}(?:[ \t]*[-–—][ \t]*\d{4})?\b)*`)

	// a dangling range after the run, e.g. the "-20" of "2019-20"
	danglingRange = regexp.MustCompile(`^[ \t]*[-–—][ \t]*\d`)

	// the first whitespace- or comma-delimited word
	firstWord = regexp.MustCompile(`^[^\s,]+`)
)

// Parse returns the first copyright notice in the leading comment region of
// text, or nil if there is none.
//
// The leading region is everything before the first line that is neither
// blank nor part of a comment in syn, after any preamble line (a shebang,
// an XML prolog or doctype, or a bare "<?php"). Only the first match is
// used; later notice-like lines are left alone.
//
// A notice may continue onto the following lines of the same comment: a
// rights statement line, and when the Copyright line ends after the years,
// one line holding the organization. The span covers those lines too.
//
// A notice whose years fail to parse is still returned, with empty Years
// and YearsErr set, so that it can be replaced.
func Parse(text string, syn comment.Syntax, opts ParseOptions) *Notice {
	maxLines := opts.MaxLines
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	sc := newLineScanner(text)
	skipPreamble(sc, syn)

	var inBlock bool
	for sc.lineNo < maxLines {
		ln, ok := sc.next()
		if !ok {
			break
		}

		if inBlock {
			closer := syn.Block.Close()
			limit := len(ln.content)
			closeIdx := strings.Index(ln.content, closer)
			if closeIdx >= 0 {
				limit = closeIdx
			}
			if n := matchNotice(ln, 0, limit, syn.Block); n != nil {
				extendNotice(sc, n, closeIdx < 0, opts.Rights)
				return n
			}
			if closeIdx >= 0 {
				inBlock = false
				if strings.TrimSpace(ln.content[closeIdx+len(closer):]) != "" {
					return nil
				}
			}
			continue
		}

		trimmed := strings.TrimLeft(ln.content, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(ln.content) - len(trimmed)

		if syn.Line != comment.StyleNone && strings.HasPrefix(trimmed, syn.Line.Open()) {
			if n := matchNotice(ln, indent+len(syn.Line.Open()), len(ln.content), syn.Line); n != nil {
				extendNotice(sc, n, false, opts.Rights)
				return n
			}
			continue
		}

		if syn.Block != comment.StyleNone && strings.HasPrefix(trimmed, syn.Block.Open()) {
			bodyStart := indent + len(syn.Block.Open())
			closer := syn.Block.Close()
			limit := len(ln.content)
			closeIdx := strings.Index(ln.content[bodyStart:], closer)
			if closeIdx >= 0 {
				limit = bodyStart + closeIdx
			}
			if n := matchNotice(ln, bodyStart, limit, syn.Block); n != nil {
				extendNotice(sc, n, closeIdx < 0, opts.Rights)
				return n
			}
			if closeIdx < 0 {
				inBlock = true
			} else if strings.TrimSpace(ln.content[limit+len(closer):]) != "" {
				return nil
			}
			continue
		}

		// first line of code
		return nil
	}
	return nil
}

// InsertionPoint returns the byte offset at which a new notice should be
// inserted: just after any preamble lines, else the start of the file.
func InsertionPoint(text string, syn comment.Syntax) int {
	sc := newLineScanner(text)
	skipPreamble(sc, syn)
	return sc.pos
}

// matchNotice looks for a notice inside ln.content[from:limit].
func matchNotice(ln line, from, limit int, style comment.Style) *Notice {
	body := ln.content[from:limit]

	for _, loc := range copyrightWord.FindAllStringIndex(body, -1) {
		after := body[loc[1]:]
		if after == "" || after[0] < '0' || after[0] > '9' {
			// "copyright" in prose, not a notice
			continue
		}

		n := &Notice{
			Style: style,
			Line:  ln.number,
			Years: years.NewSet(),
		}

		run := yearRun.FindString(after)
		rest := after[len(run):]
		switch {
		case run == "":
			word := firstWord.FindString(after)
			n.YearsText = word
			n.YearsErr = &years.MalformedYearsError{Text: word, Token: word, Reason: "not a four-digit year"}
			rest = after[len(word):]
		case danglingRange.MatchString(rest):
			dangling := danglingRange.FindString(rest)
			n.YearsText = run + dangling + firstWord.FindString(rest[len(dangling):])
			n.YearsErr = &years.MalformedYearsError{Text: n.YearsText, Reason: "incomplete range"}
			rest = after[len(n.YearsText):]
		default:
			n.YearsText = run
			ys, err := years.ParseRanges(run)
			if err != nil {
				n.YearsErr = err
			} else {
				n.Years = ys
			}
		}

		n.Organization = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(rest), ","))

		end := from + len(strings.TrimRight(body, " \t"))
		n.Span = Span{
			Start: ln.start + from + loc[0],
			End:   ln.start + end,
		}
		return n
	}
	return nil
}

// extendNotice grows n's span over continuation lines. open is true when
// n sits in a block comment that is still open after its line.
func extendNotice(sc *lineScanner, n *Notice, open bool, rights string) {
	if n.Style.Kind() == comment.KindBlock && !open {
		return
	}
	needOrg := n.Organization == ""
	for {
		ln, ok := sc.peek()
		if !ok {
			return
		}
		body, end, closes := continuationBody(ln, n.Style)
		switch {
		case body == "":
			return
		case isRightsStatement(body, rights):
			n.Span.End = end
			return
		case needOrg:
			n.Organization = body
			n.Span.End = end
			needOrg = false
		default:
			return
		}
		sc.next()
		if closes {
			return
		}
	}
}

// continuationBody returns the comment text of ln as a line of a notice in
// style, the absolute offset where that text ends, and whether ln closes
// the block. body is empty when ln does not continue the comment.
func continuationBody(ln line, style comment.Style) (body string, end int, closes bool) {
	seg := ln.content
	if style.Kind() == comment.KindLine {
		trimmed := strings.TrimLeft(seg, " \t")
		if !strings.HasPrefix(trimmed, style.Open()) {
			return "", 0, false
		}
		body = trimmed[len(style.Open()):]
	} else {
		if i := strings.Index(seg, style.Close()); i >= 0 {
			seg = seg[:i]
			closes = true
		}
		body = strings.TrimLeft(seg, " \t")
		// " * " decoration of C block comments
		if style == comment.StyleCBlock {
			body = strings.TrimPrefix(body, "*")
		}
	}
	end = ln.start + len(strings.TrimRight(seg, " \t"))
	return strings.TrimSpace(body), end, closes
}

// isRightsStatement reports whether text is DefaultRights or rights,
// ignoring case and a trailing period.
func isRightsStatement(text, rights string) bool {
	norm := func(s string) string {
		return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "."))
	}
	text = norm(text)
	if text == norm(DefaultRights) {
		return true
	}
	return norm(rights) != "" && text == norm(rights)
}

// skipPreamble advances sc past lines that must stay ahead of any notice.
func skipPreamble(sc *lineScanner, syn comment.Syntax) {
	for {
		ln, ok := sc.peek()
		if !ok || !isPreamble(ln, syn) {
			return
		}
		sc.next()
	}
}

func isPreamble(ln line, syn comment.Syntax) bool {
	trimmed := strings.TrimSpace(ln.content)
	switch {
	case ln.number == 1 && strings.HasPrefix(ln.content, "#!"):
		return true
	case trimmed == "<?php":
		return true
	case syn.Prolog && strings.HasPrefix(trimmed, "<?xml"):
		return true
	case syn.Prolog && strings.HasPrefix(strings.ToUpper(trimmed), "<!DOCTYPE"):
		return true
	}
	return false
}

// line is one line of a file. content excludes the line terminator.
type line struct {
	number  int
	start   int
	content string
}

type lineScanner struct {
	text   string
	pos    int
	lineNo int
}

func newLineScanner(text string) *lineScanner {
	return &lineScanner{text: text}
}

func (s *lineScanner) peek() (line, bool) {
	if s.pos >= len(s.text) {
		return line{}, false
	}
	rest := s.text[s.pos:]
	end := strings.IndexByte(rest, '\n')
	if end < 0 {
		end = len(rest)
	}
	return line{
		number:  s.lineNo + 1,
		start:   s.pos,
		content: strings.TrimSuffix(rest[:end], "\r"),
	}, true
}

func (s *lineScanner) next() (line, bool) {
	ln, ok := s.peek()
	if !ok {
		return ln, false
	}
	s.pos += len(ln.content)
	if s.pos < len(s.text) && s.text[s.pos] == '\r' {
		s.pos++
	}
	if s.pos < len(s.text) && s.text[s.pos] == '\n' {
		s.pos++
	}
	s.lineNo++
	return ln, true
}
