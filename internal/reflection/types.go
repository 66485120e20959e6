package reflection

// ValueKind tags the variant held by a Value.
type ValueKind string

const (
	// KindNull marks an absent or JSON null value. It renders as an empty cell.
	KindNull ValueKind = "null"
	// KindString marks a JSON string.
	KindString ValueKind = "string"
	// KindNumber marks a JSON number. The source text is kept verbatim.
	KindNumber ValueKind = "number"
	// KindBool marks a JSON boolean.
	KindBool ValueKind = "bool"
	// KindNested marks a JSON object or array kept as compact JSON text.
	KindNested ValueKind = "nested"
)

// Value is a metric value read from the source document.
type Value struct {
	// Kind is the variant tag.
	Kind ValueKind `json:"kind"`
	// Text is the textual form written to the CSV cell.
	Text string `json:"text"`
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{Kind: KindString, Text: s} }

// NumberValue returns a number Value from its JSON source text.
func NumberValue(raw string) Value { return Value{Kind: KindNumber, Text: raw} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value {
	if b {
		return Value{Kind: KindBool, Text: "true"}
	}
	return Value{Kind: KindBool, Text: "false"}
}

// NullValue returns the empty Value.
func NullValue() Value { return Value{Kind: KindNull} }

// NestedValue returns a Value holding compact JSON text.
func NestedValue(compactJSON string) Value { return Value{Kind: KindNested, Text: compactJSON} }

// String returns the cell text. Null values render as "".
func (v Value) String() string {
	if v.Kind == KindNull {
		return ""
	}
	return v.Text
}

// IsNull reports whether the value renders as an empty cell.
func (v Value) IsNull() bool {
	return v.Kind == KindNull || v.Kind == ""
}

// Record-level column names added to export-shaped records.
const (
	ColumnTimestamp = "Timestamp"
	ColumnDate      = "Date"
	ColumnID        = "ID"
	ColumnNotes     = "Notes"
)

// Metric is one named value of a reflection record.
type Metric struct {
	// Name becomes the CSV column name.
	Name string `json:"name"`
	// Value is the metric value.
	Value Value `json:"value"`
	// Attribute marks record-level columns (Timestamp, Date, ID, Notes).
	Attribute bool `json:"attribute,omitempty"`
}

// Record is one reflection instance. Records are never mutated after parsing;
// transformations build new records.
//
// Build records with NewRecord. Lookup on a Record assembled as a struct
// literal falls back to a linear scan of Metrics.
type Record struct {
	// Index is the zero-based position of the record in the source sequence.
	Index int `json:"index"`
	// Type is the reflection type name, the grouping key.
	Type string `json:"type"`
	// Metrics holds the record's values in first-seen key order.
	Metrics []Metric `json:"metrics"`

	index map[string]int
}

// NewRecord builds a record. A metric name seen twice keeps the position of its
// first occurrence and the value of its last.
func NewRecord(index int, typeName string, metrics []Metric) Record {
	r := Record{
		Index:   index,
		Type:    typeName,
		Metrics: make([]Metric, 0, len(metrics)),
		index:   make(map[string]int, len(metrics)),
	}
	for _, m := range metrics {
		r.set(m)
	}
	return r
}

func (r *Record) set(m Metric) {
	if i, ok := r.index[m.Name]; ok {
		r.Metrics[i] = m
		return
	}
	r.index[m.Name] = len(r.Metrics)
	r.Metrics = append(r.Metrics, m)
}

// Lookup returns the value for a metric name.
func (r Record) Lookup(name string) (Value, bool) {
	if r.index != nil {
		i, ok := r.index[name]
		if !ok {
			return Value{}, false
		}
		return r.Metrics[i].Value, true
	}
	for _, m := range r.Metrics {
		if m.Name == name {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the metric names in record order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.Metrics))
	for i, m := range r.Metrics {
		keys[i] = m.Name
	}
	return keys
}

// Group is the set of records sharing one type name.
type Group struct {
	// Type is the shared reflection type name.
	Type string `json:"type"`
	// Records are the members in source order.
	Records []Record `json:"records"`
}

// Table is the flat form of one group: a header and rows aligned to it.
type Table struct {
	// Name is the reflection type name the table was built from.
	Name string `json:"name"`
	// Header holds the resolved column names.
	Header []string `json:"header"`
	// Rows holds one row per record, each aligned 1:1 with Header.
	Rows [][]string `json:"rows"`
}

// Document is the parsed input.
type Document struct {
	// Records in source order.
	Records []Record `json:"records"`
	// Skipped lists source indexes dropped under the skip policy.
	Skipped []int `json:"skipped,omitempty"`
}
