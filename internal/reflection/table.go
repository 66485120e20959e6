package reflection

import "sort"

// ResolveColumns returns the union of metric names across the group's records.
// With OrderFirstSeen the header follows first appearance, scanning records in
// order; with OrderAlphabetical it is sorted. The result is deterministic for a
// given record order.
func ResolveColumns(g *Group, order ColumnOrder) []string {
	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for _, r := range g.Records {
		for _, m := range r.Metrics {
			if _, ok := seen[m.Name]; ok {
				continue
			}
			seen[m.Name] = struct{}{}
			columns = append(columns, m.Name)
		}
	}
	if order == OrderAlphabetical {
		sort.Strings(columns)
	}
	return columns
}

// MaterializeRow aligns a record to columns. Columns the record lacks are empty.
func MaterializeRow(r Record, columns []string) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		if v, ok := r.Lookup(c); ok {
			row[i] = v.String()
		}
	}
	return row
}

// BuildTable flattens one group.
func BuildTable(g *Group, order ColumnOrder) Table {
	columns := ResolveColumns(g, order)
	rows := make([][]string, 0, len(g.Records))
	for _, r := range g.Records {
		rows = append(rows, MaterializeRow(r, columns))
	}
	return Table{Name: g.Type, Header: columns, Rows: rows}
}

// BuildTables flattens every group, preserving group order.
func BuildTables(groups []*Group, order ColumnOrder) []Table {
	tables := make([]Table, 0, len(groups))
	for _, g := range groups {
		tables = append(tables, BuildTable(g, order))
	}
	return tables
}
