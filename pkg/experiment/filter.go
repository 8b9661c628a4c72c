package experiment

import (
	"fmt"
	"strings"
)

const (
	filterAll     = "all"
	filterExclude = "not;"
)

// Filter selects catalog entries by name.
// An empty Filter (or one parsed from "all") selects everything.
type Filter struct {
	Names   []string
	Exclude bool
}

// ParseFilter parses a comma separated, case-insensitive list of names.
// A leading "not;" turns the list into an exclusion list.
// Empty entries are kept so that apply rejects them as unknown names.
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, filterAll) {
		return Filter{}
	}

	f := Filter{}
	if strings.HasPrefix(s, filterExclude) {
		f.Exclude = true
		s = strings.TrimPrefix(s, filterExclude)
	}

	seen := map[string]bool{}
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true
		f.Names = append(f.Names, name)
	}
	return f
}

// All reports whether the filter keeps every entry.
func (f Filter) All() bool {
	return !f.Exclude && len(f.Names) == 0
}

func (f Filter) keeps(name string) bool {
	if f.All() {
		return true
	}
	found := false
	for _, n := range f.Names {
		if n == strings.ToLower(name) {
			found = true
			break
		}
	}
	return found != f.Exclude
}

// apply returns the entries kept by f in catalog order. Every name in f must exist in the catalog.
func apply[T any](items []T, name func(T) string, f Filter, unknown error) ([]T, error) {
	known := map[string]bool{}
	for _, item := range items {
		known[strings.ToLower(name(item))] = true
	}
	for _, n := range f.Names {
		if !known[n] {
			return nil, fmt.Errorf("%w %q", unknown, n)
		}
	}

	kept := []T{}
	for _, item := range items {
		if f.keeps(name(item)) {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

// SelectSUTs applies a filter string to the SUT catalog.
func SelectSUTs(catalog []SUT, filter string) ([]SUT, error) {
	return apply(catalog, func(s SUT) string { return s.Name }, ParseFilter(filter), ErrUnknownSUT)
}

// SelectTools applies a filter string to the tool list, keeping the generation order.
func SelectTools(tools []Tool, filter string) ([]Tool, error) {
	return apply(tools, func(t Tool) string { return string(t) }, ParseFilter(filter), ErrUnknownTool)
}
