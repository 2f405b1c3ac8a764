// internal/poller/types.go
package poller

import (
	"bytes"
	"encoding/json"
	"reflect"
	"time"
)

// TimestampFormat is the sortable UTC layout of Record.Timestamp on the wire.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// FieldOutcome is the result of one field read in one cycle.
// Exactly one of Value / Err is meaningful.
type FieldOutcome struct {
	Name  string
	Value any
	Err   error
}

func (o FieldOutcome) OK() bool { return o.Err == nil }

// Record is a snapshot produced by one poll cycle.
// It holds an outcome for every configured field, in configured order.
// Immutable once handed to the publisher.
type Record struct {
	Timestamp time.Time
	Fields    []FieldOutcome
}

// Lookup returns the outcome for a field name.
func (r Record) Lookup(name string) (FieldOutcome, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldOutcome{}, false
}

// Failed returns the names of fields that failed, in order.
func (r Record) Failed() []string {
	var out []string
	for _, f := range r.Fields {
		if !f.OK() {
			out = append(out, f.Name)
		}
	}
	return out
}

// MarshalJSON encodes the record as one object: field name to value,
// null for a failed field, plus "timestamp". Keys keep field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for _, f := range r.Fields {
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		switch {
		case !f.OK():
			buf.WriteString("null")
		case isNilSlice(f.Value):
			// an empty read is not a failure
			buf.WriteString("[]")
		default:
			val, err := json.Marshal(f.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte(',')
	}

	buf.WriteString(`"timestamp":"`)
	buf.WriteString(r.Timestamp.UTC().Format(TimestampFormat))
	buf.WriteString(`"}`)

	return buf.Bytes(), nil
}

func isNilSlice(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice && rv.IsNil()
}
