package engine

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/driftersoft/janitord/internal/fs"
)

// Filter decides whether an entry is a deletion candidate. Only entries the
// filter matches may be deleted by the policies; directories are never run
// through the filter.
type Filter interface {
	Match(path string, md *fs.Metadata) bool
}

// FilterFunc adapts a plain predicate to the Filter interface.
type FilterFunc func(path string, md *fs.Metadata) bool

func (f FilterFunc) Match(path string, md *fs.Metadata) bool { return f(path, md) }

// matchAll is the default when no filter is configured.
var matchAll Filter = FilterFunc(func(string, *fs.Metadata) bool { return true })

type globFilter struct {
	root    string
	pattern string
}

// NewGlobFilter matches the pattern (doublestar syntax, e.g. "**/*.log")
// against paths relative to root.
func NewGlobFilter(root, pattern string) (Filter, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	return &globFilter{root: root, pattern: pattern}, nil
}

func (g *globFilter) Match(path string, _ *fs.Metadata) bool {
	rel, err := filepath.Rel(g.root, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(g.pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

type regexpFilter struct {
	re *regexp.Regexp
}

// NewRegexpFilter matches the expression against the full path.
func NewRegexpFilter(expr string) (Filter, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter regexp: %w", err)
	}
	return &regexpFilter{re: re}, nil
}

func (r *regexpFilter) Match(path string, _ *fs.Metadata) bool {
	return r.re.MatchString(path)
}

type allOf []Filter

// AllOf combines filters; every one of them has to match.
func AllOf(filters ...Filter) Filter {
	return allOf(filters)
}

func (a allOf) Match(path string, md *fs.Metadata) bool {
	for _, f := range a {
		if !f.Match(path, md) {
			return false
		}
	}
	return true
}

// ProtectList shields paths from deletion using gitignore-style patterns
// evaluated against the root-relative path. A protected entry is kept no
// matter what the policies decide.
type ProtectList struct {
	root    string
	matcher *ignore.GitIgnore
}

// NewProtectList compiles the given patterns. An empty pattern set protects
// nothing.
func NewProtectList(root string, patterns []string) (*ProtectList, error) {
	if len(patterns) == 0 {
		return &ProtectList{root: root}, nil
	}
	matcher, err := ignore.CompileIgnoreLines(patterns...)
	if err != nil {
		return nil, fmt.Errorf("compile protect patterns: %w", err)
	}
	return &ProtectList{root: root, matcher: matcher}, nil
}

// Protected reports whether the path matches a protect pattern.
func (p *ProtectList) Protected(path string) bool {
	if p == nil || p.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		return false
	}
	return p.matcher.MatchesPath(rel)
}
