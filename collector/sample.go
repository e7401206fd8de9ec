package collector

import "strconv"

// ValueKind declares how a MetricSample value is typed.
type ValueKind int

const (
	IntegerValue ValueKind = iota
	FloatValue
	StringValue
)

func (k ValueKind) String() string {
	switch k {
	case IntegerValue:
		return "integer"
	case FloatValue:
		return "float"
	case StringValue:
		return "string"
	}
	return "unknown"
}

// MetricSample is one normalized stat produced by a collection. Key carries
// the item key the host agent expects (e.g. "redis.stat[connected_clients]"),
// Field the raw INFO field the sample came from.
type MetricSample struct {
	Field string
	Key   string
	Kind  ValueKind

	Int   int64
	Float float64
	Str   string
}

func newIntSample(field, key string, v int64) MetricSample {
	return MetricSample{Field: field, Key: key, Kind: IntegerValue, Int: v}
}

func newFloatSample(field, key string, v float64) MetricSample {
	return MetricSample{Field: field, Key: key, Kind: FloatValue, Float: v}
}

func newStringSample(field, key, v string) MetricSample {
	return MetricSample{Field: field, Key: key, Kind: StringValue, Str: v}
}

// Number returns the numeric value of the sample; ok is false for string
// samples.
func (s MetricSample) Number() (val float64, ok bool) {
	switch s.Kind {
	case IntegerValue:
		return float64(s.Int), true
	case FloatValue:
		return s.Float, true
	}
	return 0, false
}

// Value renders the sample the way the agent sends it upstream.
func (s MetricSample) Value() string {
	switch s.Kind {
	case IntegerValue:
		return strconv.FormatInt(s.Int, 10)
	case FloatValue:
		return strconv.FormatFloat(s.Float, 'f', -1, 64)
	}
	return s.Str
}

// Result is the outcome of one successful collection. Samples keeps the
// order of the backend reply; Skipped lists the allow-listed fields whose
// values failed coercion. An empty Result is valid.
type Result struct {
	Samples []MetricSample
	Skipped []string
}
