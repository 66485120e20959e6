package reflection

import "sort"

// Filter is a set of reflection type names to keep. A nil Filter keeps every
// type; an empty non-nil Filter keeps none.
type Filter map[string]struct{}

// NewFilter builds a Filter from names. Matching is exact and case-sensitive.
func NewFilter(names []string) Filter {
	f := make(Filter, len(names))
	for _, n := range names {
		f[n] = struct{}{}
	}
	return f
}

// Keep reports whether records of typeName pass the filter.
func (f Filter) Keep(typeName string) bool {
	if f == nil {
		return true
	}
	_, ok := f[typeName]
	return ok
}

// Names returns the filter's names, sorted.
func (f Filter) Names() []string {
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GroupRecords partitions records by type name in one pass. Groups appear in
// first-seen order and members keep source order. Records rejected by filter
// are dropped without error.
func GroupRecords(records []Record, filter Filter) []*Group {
	groups := make([]*Group, 0)
	byType := make(map[string]*Group)
	for _, r := range records {
		if !filter.Keep(r.Type) {
			continue
		}
		g, ok := byType[r.Type]
		if !ok {
			g = &Group{Type: r.Type}
			byType[r.Type] = g
			groups = append(groups, g)
		}
		g.Records = append(g.Records, r)
	}
	return groups
}
