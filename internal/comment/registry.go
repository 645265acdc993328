package comment

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var (
	cLike  = Syntax{Line: StyleSlash, Block: StyleCBlock}
	hash   = Syntax{Line: StyleHash}
	sqlish = Syntax{Line: StyleDashDash, Block: StyleCBlock}
	lua    = Syntax{Line: StyleDashDash}
	lisp   = Syntax{Line: StyleSemicolon}
	tex    = Syntax{Line: StylePercent}
	css    = Syntax{Block: StyleCBlock}
	markup = Syntax{Block: StyleXMLBlock, Prolog: true}
)

var defaultExtensions = map[string]Syntax{
	// C family and friends
	".c": cLike, ".h": cLike, ".cc": cLike, ".cpp": cLike, ".cxx": cLike,
	".hh": cLike, ".hpp": cLike, ".hxx": cLike, ".m": cLike, ".mm": cLike,
	".go": cLike, ".java": cLike, ".kt": cLike, ".kts": cLike, ".scala": cLike,
	".js": cLike, ".jsx": cLike, ".mjs": cLike, ".cjs": cLike, ".ts": cLike,
	".tsx": cLike, ".rs": cLike, ".swift": cLike, ".cs": cLike, ".dart": cLike,
	".proto": cLike, ".groovy": cLike, ".gradle": cLike, ".zig": cLike,
	".php": cLike, ".sv": cLike,

	// hash comments
	".sh": hash, ".bash": hash, ".zsh": hash, ".fish": hash, ".py": hash,
	".rb": hash, ".pl": hash, ".pm": hash, ".r": hash, ".yaml": hash,
	".yml": hash, ".toml": hash, ".mk": hash, ".cmake": hash, ".tf": hash,
	".nix": hash, ".ps1": hash, ".conf": hash, ".cfg": hash, ".ini": hash,
	".bzl": hash, ".star": hash, ".jl": hash, ".ex": hash, ".exs": hash,
	".nim": hash, ".cr": hash,

	// dash-dash comments
	".sql": sqlish, ".lua": lua, ".hs": lua, ".ada": lua, ".adb": lua, ".ads": lua,
	".elm": lua, ".vhd": lua, ".vhdl": lua,

	// semicolons, percents
	".el": lisp, ".lisp": lisp, ".lsp": lisp, ".clj": lisp, ".cljs": lisp,
	".scm": lisp, ".rkt": lisp, ".asm": lisp,
	".tex": tex, ".sty": tex, ".cls": tex, ".erl": tex, ".hrl": tex,

	// block-only
	".css": css, ".scss": cLike, ".less": cLike,
	".html": markup, ".htm": markup, ".xml": markup, ".xsd": markup,
	".xsl": markup, ".svg": markup, ".vue": markup, ".md": markup,
	".xhtml": markup, ".plist": markup,
}

var defaultFilenames = map[string]Syntax{
	"Makefile":       hash,
	"GNUmakefile":    hash,
	"Dockerfile":     hash,
	"CMakeLists.txt": hash,
	"BUILD":          hash,
	"BUILD.bazel":    hash,
	"WORKSPACE":      hash,
	"Rakefile":       hash,
	"Gemfile":        hash,
	"Jenkinsfile":    cLike,
}

// Registry maps file names to comment syntaxes.
type Registry struct {
	extensions map[string]Syntax
	filenames  map[string]Syntax
	fallback   Style
}

// NewRegistry returns a registry holding the built-in table.
func NewRegistry() *Registry {
	r := &Registry{
		extensions: make(map[string]Syntax, len(defaultExtensions)),
		filenames:  make(map[string]Syntax, len(defaultFilenames)),
	}
	for ext, syn := range defaultExtensions {
		r.extensions[ext] = syn
	}
	for name, syn := range defaultFilenames {
		r.filenames[name] = syn
	}
	return r
}

// SetExtension overrides the syntax for an extension. The leading dot is optional.
func (r *Registry) SetExtension(ext string, style Style) error {
	if style == StyleNone {
		return fmt.Errorf("extension %q: no comment style given", ext)
	}
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return fmt.Errorf("empty extension")
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.extensions[ext] = SyntaxFor(style)
	return nil
}

// SetFallback sets the style used for unknown file types.
// StyleNone (the default) makes Lookup fail for them instead.
func (r *Registry) SetFallback(style Style) {
	r.fallback = style
}

// Lookup returns the comment syntax for path. Unknown types yield an
// *UnsupportedFileTypeError unless a fallback style is set.
func (r *Registry) Lookup(path string) (Syntax, error) {
	base := filepath.Base(path)
	if syn, ok := r.filenames[base]; ok {
		return syn, nil
	}
	if syn, ok := r.extensions[strings.ToLower(filepath.Ext(base))]; ok {
		return syn, nil
	}
	if r.fallback != StyleNone {
		return SyntaxFor(r.fallback), nil
	}
	return Syntax{}, &UnsupportedFileTypeError{Path: path}
}

// Entry is one row of the registry listing.
type Entry struct {
	Pattern string
	Syntax  Syntax
}

// Entries lists every known filename and extension, sorted by pattern.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.extensions)+len(r.filenames))
	for name, syn := range r.filenames {
		out = append(out, Entry{Pattern: name, Syntax: syn})
	}
	for ext, syn := range r.extensions {
		out = append(out, Entry{Pattern: "*" + ext, Syntax: syn})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pattern < out[j].Pattern })
	return out
}
