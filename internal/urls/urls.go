// Package urls implements the ordered, prefix-based route table that sits in
// front of the site handlers.
//
// A Table is a list of Patterns checked in declared order against the request
// path with its leading slash removed. The first pattern that matches wins. A
// pattern either hands the request to a handler or includes another Table, in
// which case resolution continues there against the rest of the path. Tables
// are immutable once built and safe for concurrent use.
package urls

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var ErrNoMatch = errors.New("urls: no pattern matches path")

// Pattern is a single (prefix, destination) entry of a Table.
type Pattern struct {
	prefix  string
	name    string
	handler http.Handler
	include *Table
}

// Path routes prefix to h. An empty prefix or one ending in "/" owns every
// path below it; any other prefix must match the remaining path exactly.
func Path(prefix string, h http.Handler, name string) Pattern {
	if h == nil {
		panic("urls: nil handler for prefix " + prefix)
	}
	return Pattern{prefix: prefix, name: name, handler: h}
}

// Include delegates everything under prefix to t.
func Include(prefix string, t *Table) Pattern {
	if t == nil {
		panic("urls: nil table included at prefix " + prefix)
	}
	return Pattern{prefix: prefix, include: t}
}

func (p Pattern) Prefix() string { return p.prefix }
func (p Pattern) Name() string   { return p.name }

// IsInclude reports whether the pattern delegates to another table.
func (p Pattern) IsInclude() bool { return p.include != nil }

// Included returns the delegated table, or nil for handler patterns.
func (p Pattern) Included() *Table { return p.include }

func (p Pattern) match(path string) (rest string, ok bool) {
	if !strings.HasPrefix(path, p.prefix) {
		return "", false
	}
	rest = path[len(p.prefix):]
	if p.include != nil || p.prefix == "" || strings.HasSuffix(p.prefix, "/") {
		return rest, true
	}
	return rest, rest == ""
}

// Table is an immutable ordered list of patterns.
type Table struct {
	name     string
	patterns []Pattern
}

// New builds a table. The patterns slice is copied.
func New(name string, patterns ...Pattern) *Table {
	ps := make([]Pattern, len(patterns))
	copy(ps, patterns)
	return &Table{name: name, patterns: ps}
}

func (t *Table) Name() string { return t.name }

func (t *Table) Len() int { return len(t.patterns) }

// Patterns returns a copy of the entries in declared order.
func (t *Table) Patterns() []Pattern {
	ps := make([]Pattern, len(t.patterns))
	copy(ps, t.patterns)
	return ps
}

// Match is the outcome of resolving a path.
type Match struct {
	Handler http.Handler
	// Name is the matched handler pattern's name, namespaced by the tables
	// it was found through ("main:site").
	Name string
	// Prefixes holds every matched prefix from the outermost table inward.
	Prefixes []string
	// Tables holds the names of the tables traversed, outermost first.
	Tables []string
	// Remainder is the part of the path below the matched handler prefix.
	Remainder string
}

// Route is the concatenation of the matched prefixes.
func (m *Match) Route() string {
	return strings.Join(m.Prefixes, "")
}

// Resolve finds the handler for path. A leading "/" is ignored.
func (t *Table) Resolve(path string) (*Match, error) {
	m := &Match{}
	if !t.resolve(strings.TrimPrefix(path, "/"), m) {
		return nil, ErrNoMatch
	}
	return m, nil
}

func (t *Table) resolve(path string, m *Match) bool {
	for _, p := range t.patterns {
		rest, ok := p.match(path)
		if !ok {
			continue
		}
		if p.include != nil {
			sub := *m
			sub.Prefixes = append(append([]string(nil), m.Prefixes...), p.prefix)
			sub.Tables = append(append([]string(nil), m.Tables...), t.name)
			if p.include.resolve(rest, &sub) {
				*m = sub
				return true
			}
			// An include that has no match does not stop the search.
			continue
		}
		m.Handler = p.handler
		m.Prefixes = append(m.Prefixes, p.prefix)
		m.Tables = append(m.Tables, t.name)
		m.Remainder = rest
		m.Name = qualify(m.Tables[1:], p.name)
		return true
	}
	return false
}

func qualify(namespaces []string, name string) string {
	if name == "" || len(namespaces) == 0 {
		return name
	}
	return strings.Join(namespaces, ":") + ":" + name
}

// Reverse returns the absolute URL prefix of the named pattern. Names of
// patterns inside included tables carry the table names as namespaces.
func (t *Table) Reverse(name string) (string, bool) {
	return t.reverse(name, nil, "/")
}

func (t *Table) reverse(name string, namespaces []string, base string) (string, bool) {
	for _, p := range t.patterns {
		if p.include != nil {
			ns := append(append([]string(nil), namespaces...), p.include.name)
			if u, ok := p.include.reverse(name, ns, base+p.prefix); ok {
				return u, true
			}
			continue
		}
		if p.name != "" && qualify(namespaces, p.name) == name {
			return base + p.prefix, true
		}
	}
	return "", false
}

type matchKey struct{}

// FromContext returns the Match attached by ServeHTTP, if any.
func FromContext(ctx context.Context) (*Match, bool) {
	m, ok := ctx.Value(matchKey{}).(*Match)
	return m, ok
}

// ServeHTTP dispatches r to the resolved handler.
func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	if target, ok := t.appendSlash(r, path); ok {
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	m, err := t.Resolve(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	ctx := context.WithValue(r.Context(), matchKey{}, m)
	m.Handler.ServeHTTP(w, r.WithContext(ctx))
}

// appendSlash reports whether path is a declared non-empty prefix missing
// its trailing slash, and returns the URL to redirect to.
func (t *Table) appendSlash(r *http.Request, path string) (string, bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return "", false
	}
	if path == "" || strings.HasSuffix(path, "/") {
		return "", false
	}
	if !t.hasSlashPrefix(path + "/") {
		return "", false
	}
	target := "/" + path + "/"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	return target, true
}

func (t *Table) hasSlashPrefix(path string) bool {
	for _, p := range t.patterns {
		if p.prefix != "" && p.prefix == path {
			return true
		}
		if p.include != nil && strings.HasPrefix(path, p.prefix) {
			if p.include.hasSlashPrefix(path[len(p.prefix):]) {
				return true
			}
		}
	}
	return false
}
