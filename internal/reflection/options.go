package reflection

import (
	"fmt"
	"time"
)

// Shape selects how records are read.
type Shape string

const (
	// ShapeAuto reads a record as ShapeExport when its "metrics" field is a
	// non-empty array of objects that each carry a "kind" object, and as
	// ShapeFlat otherwise.
	ShapeAuto Shape = "auto"
	// ShapeFlat reads every field except the type key as a metric.
	ShapeFlat Shape = "flat"
	// ShapeExport reads the reflection app export layout
	// {id, name, date, notes, metrics: [...]}.
	ShapeExport Shape = "export"
)

// MissingTypePolicy decides what happens to a record without a type name.
type MissingTypePolicy string

const (
	// MissingTypeStrict aborts parsing with a SchemaError.
	MissingTypeStrict MissingTypePolicy = "strict"
	// MissingTypeSkip drops the record and continues.
	MissingTypeSkip MissingTypePolicy = "skip"
)

// NestedMode decides how object and array metric values are rendered.
type NestedMode string

const (
	// NestedJSON keeps nested values as one cell of compact JSON.
	NestedJSON NestedMode = "json"
	// NestedFlatten expands objects into dotted column names. Arrays stay JSON.
	NestedFlatten NestedMode = "flatten"
)

// ColumnOrder decides the header order of a table.
type ColumnOrder string

const (
	// OrderFirstSeen orders columns by first appearance across the group.
	OrderFirstSeen ColumnOrder = "first_seen"
	// OrderAlphabetical sorts columns by name.
	OrderAlphabetical ColumnOrder = "alphabetical"
)

// DateEpoch is the zero point of export-shaped "date" fields.
type DateEpoch string

const (
	// EpochUnix counts seconds from 1970-01-01 UTC.
	EpochUnix DateEpoch = "unix"
	// EpochReference counts seconds from 2001-01-01 UTC.
	EpochReference DateEpoch = "reference"
)

// referenceEpochOffset is the number of seconds between the unix and reference epochs.
const referenceEpochOffset = 978307200

// DefaultRecordsKey is the key searched when the top level is an object.
const DefaultRecordsKey = "reflections"

// DefaultDateLayout renders the Date column.
const DefaultDateLayout = "2006-01-02 15:04:05"

// Options controls parsing and table building.
type Options struct {
	// Shape selects the record layout.
	Shape Shape
	// TypeKeys are searched in order for the type name of flat records.
	TypeKeys []string
	// RecordsKey holds the record array when the top level is an object.
	RecordsKey string
	// MissingType is the policy for records without a type name.
	MissingType MissingTypePolicy
	// Nested controls rendering of object and array values.
	Nested NestedMode
	// ColumnOrder controls header order.
	ColumnOrder ColumnOrder
	// Attributes adds Timestamp, Date, ID and Notes columns to export records.
	Attributes bool
	// DateEpoch is the zero point of export "date" fields.
	DateEpoch DateEpoch
	// DateLayout is the time layout of the Date column.
	DateLayout string
	// Location is the time zone of the Date column. Nil means time.Local.
	Location *time.Location
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Shape:       ShapeAuto,
		TypeKeys:    []string{"type", "name"},
		RecordsKey:  DefaultRecordsKey,
		MissingType: MissingTypeStrict,
		Nested:      NestedJSON,
		ColumnOrder: OrderFirstSeen,
		Attributes:  true,
		DateEpoch:   EpochUnix,
		DateLayout:  DefaultDateLayout,
	}
}

// Validate checks the enumerated fields.
func (o Options) Validate() error {
	switch o.Shape {
	case ShapeAuto, ShapeFlat, ShapeExport:
	default:
		return fmt.Errorf("shape must be auto, flat or export, got %q", o.Shape)
	}
	switch o.MissingType {
	case MissingTypeStrict, MissingTypeSkip:
	default:
		return fmt.Errorf("missing_type must be strict or skip, got %q", o.MissingType)
	}
	switch o.Nested {
	case NestedJSON, NestedFlatten:
	default:
		return fmt.Errorf("nested must be json or flatten, got %q", o.Nested)
	}
	switch o.ColumnOrder {
	case OrderFirstSeen, OrderAlphabetical:
	default:
		return fmt.Errorf("column_order must be first_seen or alphabetical, got %q", o.ColumnOrder)
	}
	switch o.DateEpoch {
	case EpochUnix, EpochReference:
	default:
		return fmt.Errorf("date_epoch must be unix or reference, got %q", o.DateEpoch)
	}
	if len(o.TypeKeys) == 0 {
		return fmt.Errorf("at least one type key is required")
	}
	for i, k := range o.TypeKeys {
		if k == "" {
			return fmt.Errorf("type key %d is empty", i)
		}
	}
	return nil
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o Options) dateLayout() string {
	if o.DateLayout == "" {
		return DefaultDateLayout
	}
	return o.DateLayout
}
