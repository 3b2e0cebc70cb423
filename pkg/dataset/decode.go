package dataset

import (
	"bytes"
	"math"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/matzehuels/crimescope/pkg/errors"
)

// Decode unmarshals a JSON resource into v, tagging failures with
// ErrCodeDecode.
func Decode(name string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeDecode, err, "decode %s", name)
	}
	return nil
}

// ParsePeriod parses a period from a JSON key or value such as "1700",
// "1700.0" or 1700.0.
func ParsePeriod(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeDecode, err, "invalid period %q", s)
	}
	return int(math.Round(f)), nil
}

// DecodeWide parses a wide-format resource, an array of objects holding a
// period field and one numeric field per series key:
//
//	[{"year": 1700, "theft": 12, "fraud": 3}, ...]
//
// Non-numeric fields other than the period are ignored. Null values are
// skipped and read as zero.
func DecodeWide(name string, data []byte, periodField string) (*Table, error) {
	var records []map[string]json.RawMessage
	if err := Decode(name, data, &records); err != nil {
		return nil, err
	}
	return WideTable(name, records, periodField)
}

// WideTable builds a table from already split wide records, for resources
// that nest several wide arrays in one document.
func WideTable(name string, records []map[string]json.RawMessage, periodField string) (*Table, error) {
	t := NewTable()
	for i, rec := range records {
		raw, ok := rec[periodField]
		if !ok {
			return nil, errors.New(errors.ErrCodeDecode, "%s: record %d has no %q field", name, i, periodField)
		}
		p, err := ParsePeriod(string(bytes.Trim(raw, `"`)))
		if err != nil {
			return nil, err
		}
		t.AddPeriod(p)

		for _, key := range sortedFields(rec) {
			if key == periodField {
				continue
			}
			var v *float64
			if err := json.Unmarshal(rec[key], &v); err != nil || v == nil {
				continue
			}
			t.Add(Row{Period: p, Key: key, Value: *v, Count: NoCount})
		}
	}
	return t, nil
}

func sortedFields(rec map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
