package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one stored object. Values are JSON-compatible: string, bool,
// json.Number, nil, []any or map[string]any.
type Record map[string]any

// RecordSet is an ordered collection of records.
type RecordSet []Record

// String returns the string value for key, or "" when absent or not a string.
func (r Record) String(key string) string {
	if r == nil {
		return ""
	}
	value, _ := r[key].(string)
	return value
}

// Has reports whether key is present, even with a null value.
func (r Record) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r[key]
	return ok
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = cloneValue(value)
	}
	return out
}

// Clone returns a deep copy of the set.
func (s RecordSet) Clone() RecordSet {
	if s == nil {
		return nil
	}
	out := make(RecordSet, len(s))
	for i, record := range s {
		out[i] = record.Clone()
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = cloneValue(inner)
		}
		return out
	case Record:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = cloneValue(inner)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}

// EncodeRecordSet serialises a set as a JSON array. A nil set encodes as "[]".
func EncodeRecordSet(records RecordSet) ([]byte, error) {
	if records == nil {
		records = RecordSet{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("persistence: encode records: %w", err)
	}
	return data, nil
}

// DecodeRecordSet parses a JSON array produced by EncodeRecordSet. Numbers are
// kept as json.Number so re-encoding does not alter them. Empty input yields
// an empty set.
func DecodeRecordSet(data []byte) (RecordSet, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return RecordSet{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var records RecordSet
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if records == nil {
		records = RecordSet{}
	}
	return records, nil
}
