// Package comment describes the comment syntaxes a copyright notice can be
// written in, and maps files to the syntax of their language.
package comment

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Kind distinguishes line comments from block comments.
type Kind int

const (
	// KindLine comments run from a prefix to the end of the line
	KindLine Kind = iota + 1
	// KindBlock comments are enclosed by an open and a close delimiter
	KindBlock
)

// Style is one concrete comment syntax. The set of styles is closed.
type Style int

const (
	// StyleNone is the zero value; no style
	StyleNone Style = iota
	// StyleSlash is "// ..."
	StyleSlash
	// StyleHash is "# ..."
	StyleHash
	// StyleDashDash is "-- ..."
	StyleDashDash
	// StyleSemicolon is ";; ..."
	StyleSemicolon
	// StylePercent is "% ..."
	StylePercent
	// StyleCBlock is "/* ... */"
	StyleCBlock
	// StyleXMLBlock is "<!-- ... -->"
	StyleXMLBlock
)

type styleInfo struct {
	name  string
	kind  Kind
	open  string
	close string
}

var styles = map[Style]styleInfo{
	StyleSlash:     {name: "slash", kind: KindLine, open: "//"},
	StyleHash:      {name: "hash", kind: KindLine, open: "#"},
	StyleDashDash:  {name: "dashdash", kind: KindLine, open: "--"},
	StyleSemicolon: {name: "semicolon", kind: KindLine, open: ";;"},
	StylePercent:   {name: "percent", kind: KindLine, open: "%"},
	StyleCBlock:    {name: "cblock", kind: KindBlock, open: "/*", close: "*/"},
	StyleXMLBlock:  {name: "xml", kind: KindBlock, open: "<!--", close: "-->"},
}

// Name returns the style's configuration name, e.g. "slash".
func (s Style) Name() string {
	if info, ok := styles[s]; ok {
		return info.name
	}
	return "none"
}

func (s Style) String() string { return s.Name() }

// Kind reports whether the style is a line or block comment.
func (s Style) Kind() Kind { return styles[s].kind }

// Open returns the line prefix or block opener.
func (s Style) Open() string { return styles[s].open }

// Close returns the block closer; empty for line styles.
func (s Style) Close() string { return styles[s].close }

// Wrap returns text as a complete one-line comment in this style.
func (s Style) Wrap(text string) string {
	info := styles[s]
	if info.kind == KindBlock {
		return info.open + " " + text + " " + info.close
	}
	return info.open + " " + text
}

// ParseStyle looks up a style by its configuration name.
func ParseStyle(name string) (Style, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for s, info := range styles {
		if info.name == want {
			return s, nil
		}
	}
	return StyleNone, fmt.Errorf("unknown comment style %q (want one of %s)", name, strings.Join(StyleNames(), ", "))
}

// StyleNames returns the configuration names of all styles, sorted.
func StyleNames() []string {
	names := make([]string, 0, len(styles))
	for _, info := range styles {
		names = append(names, info.name)
	}
	sort.Strings(names)
	return names
}

// Syntax is the set of comment styles a language accepts.
type Syntax struct {
	// Line is the line-comment style, or StyleNone
	Line Style

	// Block is the block-comment style, or StyleNone
	Block Style

	// Prolog marks languages whose files may open with an XML declaration
	Prolog bool
}

// Default returns the style used when inserting a new notice.
func (s Syntax) Default() Style {
	if s.Line != StyleNone {
		return s.Line
	}
	return s.Block
}

// Styles returns the styles of the syntax, line style first.
func (s Syntax) Styles() []Style {
	var out []Style
	if s.Line != StyleNone {
		out = append(out, s.Line)
	}
	if s.Block != StyleNone {
		out = append(out, s.Block)
	}
	return out
}

// SyntaxFor returns the syntax a single style implies when it is the only
// one a file type allows (used for configured overrides and fallbacks).
func SyntaxFor(style Style) Syntax {
	if style.Kind() == KindBlock {
		return Syntax{Block: style, Prolog: style == StyleXMLBlock}
	}
	return Syntax{Line: style}
}

// UnsupportedFileTypeError is returned for files whose comment syntax is unknown.
type UnsupportedFileTypeError struct {
	Path string
}

func (e *UnsupportedFileTypeError) Error() string {
	ext := filepath.Ext(e.Path)
	if ext == "" {
		return fmt.Sprintf("unsupported file type for %s (no extension)", e.Path)
	}
	return fmt.Sprintf("unsupported file type %q for %s", ext, e.Path)
}
