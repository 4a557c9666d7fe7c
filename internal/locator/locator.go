// Package locator identifies source files by URL and attributes byte ranges
// within them for error reporting.
package locator

import (
	"fmt"
	"net/url"
)

// Locator is a file identity backed by a URL. Two locators with an equal URL
// are the same file; compare them and key maps on them through Key.
type Locator struct {
	u *url.URL
}

// New parses s as a URL and returns the Locator backed by it.
func New(s string) (Locator, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Locator{}, fmt.Errorf("invalid url %q: %w", s, err)
	}
	return Locator{u: u}, nil
}

// FromURL wraps an already-parsed URL as a Locator.
func FromURL(u *url.URL) Locator {
	c := *u
	return Locator{u: &c}
}

// URL returns the underlying URL.
func (l Locator) URL() *url.URL {
	return l.u
}

// IsZero reports whether l is the zero Locator.
func (l Locator) IsZero() bool {
	return l.u == nil
}

// String renders the locator's URL.
func (l Locator) String() string {
	if l.u == nil {
		return ""
	}
	return l.u.String()
}

// Key returns a comparable, hashable representation of the locator suitable
// for use as a map key (Locator itself holds a pointer and two locators
// parsed from equal strings are not guaranteed identical pointers, so
// comparisons and map lookups should go through Key, not ==).
func (l Locator) Key() string {
	return l.String()
}

// AsBase returns a copy of l with a trailing path separator appended, so
// that l.Join can resolve paths relative to it rather than to its last
// segment.
func (l Locator) AsBase() Locator {
	if l.u == nil {
		return l
	}
	u := *l.u
	if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
		u.Path += "/"
	}
	return Locator{u: &u}
}

// Join resolves a relative path against the locator, treating the locator as
// a base URL. An empty path is rejected.
func (l Locator) Join(path string) (Locator, error) {
	if path == "" {
		return Locator{}, fmt.Errorf("empty path")
	}
	if l.u == nil {
		return Locator{}, fmt.Errorf("join against zero locator")
	}
	ref, err := url.Parse(path)
	if err != nil {
		return Locator{}, fmt.Errorf("invalid url %q: %w", path, err)
	}
	return Locator{u: l.u.ResolveReference(ref)}, nil
}

// Less provides a total order over locators, used to produce deterministic
// compilation orders when the dependency graph leaves ties.
func (l Locator) Less(other Locator) bool {
	return l.String() < other.String()
}

// Pos is a position within a source file: a byte offset plus the line and
// column it falls on (both 1-based), kept for human-readable diagnostics.
type Pos struct {
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open byte range within a locator's file, used to attribute
// errors to source text.
type Span struct {
	Loc   Locator
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%s-%s", s.Loc, s.Start, s.End)
}

// Zero reports whether the span carries no locator (e.g. a synthesized node
// with no source origin).
func (s Span) Zero() bool {
	return s.Loc.IsZero()
}
