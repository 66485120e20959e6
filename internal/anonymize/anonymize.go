// Package anonymize replaces reflection names and values with stable pseudonyms
// so exports can be shared without revealing what was tracked.
package anonymize

import (
	"github.com/google/uuid"

	"github.com/fyrsmithlabs/reflectcsv/internal/reflection"
)

// NaN is written in place of every value in NaN mode.
const NaN = "NaN"

// Pseudonym prefixes.
const (
	PrefixReflection = "reflection_"
	PrefixMetric     = "metric_"
	PrefixValue      = "value_"
)

// Options configures an Anonymizer.
type Options struct {
	// Salt seeds the pseudonym namespace. The same salt always yields the same
	// pseudonyms.
	Salt string
	// NaN replaces every non-empty value except Timestamp and Date with "NaN".
	NaN bool
}

// Anonymizer rewrites groups. It holds no per-run state, so it is safe to reuse.
type Anonymizer struct {
	ns  uuid.UUID
	nan bool
}

// New returns an Anonymizer for opts.
func New(opts Options) *Anonymizer {
	return &Anonymizer{
		ns:  uuid.NewSHA1(uuid.NameSpaceOID, []byte("reflectcsv:"+opts.Salt)),
		nan: opts.NaN,
	}
}

// Groups returns anonymized copies of groups in the same order. Inputs are not
// modified.
func (a *Anonymizer) Groups(groups []*reflection.Group) []*reflection.Group {
	out := make([]*reflection.Group, 0, len(groups))
	for _, g := range groups {
		ng := &reflection.Group{
			Type:    a.TypeName(g.Type),
			Records: make([]reflection.Record, 0, len(g.Records)),
		}
		for _, r := range g.Records {
			ng.Records = append(ng.Records, a.record(r, ng.Type))
		}
		out = append(out, ng)
	}
	return out
}

// TypeName returns the pseudonym of a reflection type name.
func (a *Anonymizer) TypeName(name string) string {
	return a.pseudonym(PrefixReflection, name)
}

// MetricName returns the pseudonym of a metric name.
func (a *Anonymizer) MetricName(name string) string {
	return a.pseudonym(PrefixMetric, name)
}

func (a *Anonymizer) record(r reflection.Record, typeName string) reflection.Record {
	metrics := make([]reflection.Metric, 0, len(r.Metrics))
	for _, m := range r.Metrics {
		name := m.Name
		if !m.Attribute {
			name = a.MetricName(m.Name)
		}
		metrics = append(metrics, reflection.Metric{
			Name:      name,
			Value:     a.value(m),
			Attribute: m.Attribute,
		})
	}
	return reflection.NewRecord(r.Index, typeName, metrics)
}

func (a *Anonymizer) value(m reflection.Metric) reflection.Value {
	v := m.Value
	if v.IsNull() || isTimeColumn(m) {
		return v
	}
	if a.nan {
		return reflection.StringValue(NaN)
	}
	switch v.Kind {
	case reflection.KindString, reflection.KindNested:
		return reflection.StringValue(a.pseudonym(PrefixValue, v.Text))
	default:
		return v
	}
}

func isTimeColumn(m reflection.Metric) bool {
	return m.Attribute && (m.Name == reflection.ColumnTimestamp || m.Name == reflection.ColumnDate)
}

// pseudonym derives prefix plus the first 8 hex digits of a name-based UUID.
// The prefix is part of the hashed name so a type and a metric sharing a name
// get unrelated pseudonyms.
func (a *Anonymizer) pseudonym(prefix, s string) string {
	id := uuid.NewSHA1(a.ns, []byte(prefix+s))
	return prefix + id.String()[:8]
}
