// Package reflection turns a JSON document of reflection records into flat
// tables, one per reflection type.
//
// The pipeline is:
//   - Parse/Load: raw JSON to a Document of Records, source order preserved
//   - GroupRecords: partition by type name, optionally through a Filter
//   - ResolveColumns: union of metric names per group, first-seen order
//   - MaterializeRow/BuildTables: one row per record aligned to the header
//
// # Record Shapes
//
// Flat records carry the type name under one of Options.TypeKeys and every
// other field is a metric:
//
//	[{"type": "Speed", "mph": 10}, {"type": "Speed", "mph": 20, "gear": 3}]
//
// Export records come from the reflection app and hold typed metric entries:
//
//	{"id": "...", "name": "Mood", "date": 707233858.4, "notes": "",
//	 "metrics": [{"recorded": true, "kind": {"rating": {"_0": {"name": "Energy", "score": 4}}}}]}
//
// Export records gain Timestamp, Date, ID and Notes columns after their metrics
// when Options.Attributes is set.
//
// # Errors
//
// Parse failures are *ParseError, record problems are *SchemaError and the
// output side reports *WriteError. All three unwrap to the sentinel causes.
package reflection
