package reflection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reflectcsv/internal/logging"
)

// exportValueFields maps an export metric kind to the payload field holding its value.
var exportValueFields = map[string]string{
	"choice": "choice",
	"bool":   "bool",
	"unit":   "value",
	"rating": "score",
	"string": "string",
}

// Load reads the JSON document at path and parses it.
// Read and parse failures are returned as *ParseError carrying the path.
func Load(ctx context.Context, path string, opts Options) (*Document, error) {
	f, err := os.Open(path) // #nosec G304 -- CLI tool reads a user-provided path
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("failed to read input: %w", err)}
	}

	doc, err := Parse(ctx, data, opts)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) && perr.Path == "" {
			perr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse reads a reflection document from raw JSON.
//
// The top level is either an array of records or an object holding that array
// under opts.RecordsKey. Records keep their source order and their metrics keep
// source key order.
func Parse(ctx context.Context, data []byte, opts Options) (*Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parse options: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Err: ErrMalformedJSON}
	}

	list, err := recordList(gjson.ParseBytes(data), opts.RecordsKey)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	doc := &Document{Records: make([]Record, 0)}
	var parseErr error
	index := 0
	list.ForEach(func(_, item gjson.Result) bool {
		rec, err := parseRecord(ctx, logger, index, item, opts)
		if err != nil {
			var serr *SchemaError
			if opts.MissingType == MissingTypeSkip && errors.As(err, &serr) {
				logger.Warn(ctx, "skipping record", zap.Int("record", index), zap.Error(err))
				doc.Skipped = append(doc.Skipped, index)
				index++
				return true
			}
			parseErr = err
			return false
		}
		logger.Trace(ctx, "parsed record",
			zap.Int("record", index),
			zap.String("reflection", rec.Type),
			zap.Int("metrics", len(rec.Metrics)))
		doc.Records = append(doc.Records, rec)
		index++
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	logger.Debug(ctx, "parsed document",
		zap.Int("records", len(doc.Records)),
		zap.Int("skipped", len(doc.Skipped)))
	return doc, nil
}

// recordList locates the record array.
func recordList(root gjson.Result, recordsKey string) (gjson.Result, error) {
	if root.IsArray() {
		return root, nil
	}
	if !root.IsObject() {
		return gjson.Result{}, &ParseError{Err: fmt.Errorf("%w: expected an array or an object", ErrUnexpectedShape)}
	}
	if recordsKey == "" {
		recordsKey = DefaultRecordsKey
	}
	list, ok := objectFields(root).get(recordsKey)
	if !ok {
		return gjson.Result{}, &ParseError{Err: fmt.Errorf("%w: object has no %q key", ErrUnexpectedShape, recordsKey)}
	}
	if !list.IsArray() {
		return gjson.Result{}, &ParseError{Err: fmt.Errorf("%w: %q is not an array", ErrUnexpectedShape, recordsKey)}
	}
	return list, nil
}

type field struct {
	key   string
	value gjson.Result
}

type fields []field

func (fs fields) get(key string) (gjson.Result, bool) {
	for _, f := range fs {
		if f.key == key {
			return f.value, true
		}
	}
	return gjson.Result{}, false
}

// objectFields lists the members of a JSON object in source order.
// Keys are compared verbatim so dots and wildcards in keys carry no meaning.
func objectFields(obj gjson.Result) fields {
	var fs fields
	obj.ForEach(func(key, value gjson.Result) bool {
		fs = append(fs, field{key: key.Str, value: value})
		return true
	})
	return fs
}

func parseRecord(ctx context.Context, logger *logging.Logger, index int, item gjson.Result, opts Options) (Record, error) {
	if !item.IsObject() {
		return Record{}, &SchemaError{Index: index, Err: ErrNotObject}
	}
	fs := objectFields(item)

	typeKey, typeName, ok := findTypeName(fs, opts.TypeKeys)
	if !ok {
		return Record{}, &SchemaError{
			Index:  index,
			Err:    ErrMissingType,
			Detail: "searched keys: " + strings.Join(opts.TypeKeys, ", "),
		}
	}

	shape := opts.Shape
	if shape == ShapeAuto {
		shape = ShapeFlat
		if m, ok := fs.get("metrics"); ok && isExportMetricList(m) {
			shape = ShapeExport
		}
	}

	if shape == ShapeExport {
		metrics, shadowed := exportMetrics(fs, opts)
		for _, name := range shadowed {
			logger.Warn(ctx, "metric shadowed by record attribute",
				zap.Int("record", index),
				zap.String("metric", name))
		}
		return NewRecord(index, typeName, metrics), nil
	}

	metrics := make([]Metric, 0, len(fs))
	for _, f := range fs {
		if f.key == typeKey {
			continue
		}
		metrics = appendValue(metrics, f.key, f.value, opts.Nested)
	}
	return NewRecord(index, typeName, metrics), nil
}

// findTypeName returns the first key from keys holding a non-empty string.
func findTypeName(fs fields, keys []string) (string, string, bool) {
	for _, k := range keys {
		v, ok := fs.get(k)
		if ok && v.Type == gjson.String && v.Str != "" {
			return k, v.Str, true
		}
	}
	return "", "", false
}

// isExportMetricList reports whether list looks like an export metrics array:
// non-empty, every item an object with a "kind" object.
func isExportMetricList(list gjson.Result) bool {
	if !list.IsArray() {
		return false
	}
	items := 0
	export := true
	list.ForEach(func(_, item gjson.Result) bool {
		items++
		if !item.IsObject() || !item.Get("kind").IsObject() {
			export = false
			return false
		}
		return true
	})
	return export && items > 0
}

// exportMetrics decodes the metrics array of an export-shaped record, followed
// by the record-level attribute columns when enabled. It also returns the
// metric names that an attribute column replaces.
func exportMetrics(fs fields, opts Options) ([]Metric, []string) {
	var metrics []Metric
	list, _ := fs.get("metrics")
	list.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		// An absent "recorded" flag counts as recorded.
		if rec := item.Get("recorded"); rec.Exists() && !rec.Bool() {
			return true
		}
		kind, payload, ok := firstMember(item.Get("kind"))
		if !ok {
			return true
		}
		valueField, known := exportValueFields[kind]
		if !known {
			return true
		}
		body := payload.Get("_0")
		name := body.Get("name")
		if name.Type != gjson.String || name.Str == "" {
			return true
		}
		v := body.Get(valueField)
		if !v.Exists() {
			metrics = append(metrics, Metric{Name: name.Str, Value: NullValue()})
			return true
		}
		metrics = appendValue(metrics, name.Str, v, opts.Nested)
		return true
	})

	if !opts.Attributes {
		return metrics, nil
	}

	var shadowed []string
	for _, m := range metrics {
		switch m.Name {
		case ColumnTimestamp, ColumnDate, ColumnID, ColumnNotes:
			shadowed = append(shadowed, m.Name)
		}
	}

	date, _ := fs.get("date")
	id, _ := fs.get("id")
	notes, _ := fs.get("notes")
	return append(metrics,
		Metric{Name: ColumnTimestamp, Value: valueOf(date), Attribute: true},
		Metric{Name: ColumnDate, Value: formatDate(date, opts), Attribute: true},
		Metric{Name: ColumnID, Value: valueOf(id), Attribute: true},
		Metric{Name: ColumnNotes, Value: valueOf(notes), Attribute: true},
	), shadowed
}

// firstMember returns the first key and value of a JSON object.
func firstMember(obj gjson.Result) (string, gjson.Result, bool) {
	if !obj.IsObject() {
		return "", gjson.Result{}, false
	}
	var (
		key   string
		value gjson.Result
		found bool
	)
	obj.ForEach(func(k, v gjson.Result) bool {
		key, value, found = k.Str, v, true
		return false
	})
	return key, value, found
}

// formatDate renders a seconds-since-epoch number as a local date string.
// Non-numeric dates pass through unchanged.
func formatDate(date gjson.Result, opts Options) Value {
	if date.Type != gjson.Number {
		return valueOf(date)
	}
	secs := date.Float()
	if opts.DateEpoch == EpochReference {
		secs += referenceEpochOffset
	}
	whole, frac := math.Modf(secs)
	t := time.Unix(int64(whole), int64(math.Round(frac*1e9)))
	return StringValue(t.In(opts.location()).Format(opts.dateLayout()))
}

// appendValue adds name=v to dst. Under NestedFlatten, objects are expanded into
// dotted names; an empty object keeps its column as "{}".
func appendValue(dst []Metric, name string, v gjson.Result, mode NestedMode) []Metric {
	if mode == NestedFlatten && v.IsObject() {
		before := len(dst)
		v.ForEach(func(k, child gjson.Result) bool {
			dst = appendValue(dst, name+"."+k.Str, child, mode)
			return true
		})
		if len(dst) == before {
			dst = append(dst, Metric{Name: name, Value: NestedValue("{}")})
		}
		return dst
	}
	return append(dst, Metric{Name: name, Value: valueOf(v)})
}

func valueOf(v gjson.Result) Value {
	if !v.Exists() {
		return NullValue()
	}
	switch v.Type {
	case gjson.String:
		return StringValue(v.Str)
	case gjson.Number:
		return NumberValue(v.Raw)
	case gjson.True:
		return BoolValue(true)
	case gjson.False:
		return BoolValue(false)
	case gjson.JSON:
		return NestedValue(string(pretty.Ugly([]byte(v.Raw))))
	default:
		return NullValue()
	}
}
