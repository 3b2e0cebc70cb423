package dataset

import (
	"slices"
	"testing"

	"github.com/matzehuels/crimescope/pkg/errors"
)

func TestDecodeWide(t *testing.T) {
	data := []byte(`[
		{"year": 1700.0, "theft": 10, "fraud": 2},
		{"year": 1701, "theft": 0, "fraud": null},
		{"year": "1702", "theft": 4}
	]`)

	tbl, err := DecodeWide("q.json", data, "year")
	if err != nil {
		t.Fatalf("DecodeWide: %v", err)
	}
	if got := tbl.Periods(); !slices.Equal(got, []int{1700, 1701, 1702}) {
		t.Errorf("Periods() = %v", got)
	}
	if got := tbl.SortedKeys(); !slices.Equal(got, []string{"fraud", "theft"}) {
		t.Errorf("SortedKeys() = %v", got)
	}
	if v := tbl.Value(1700, "theft"); v != 10 {
		t.Errorf("Value(1700, theft) = %v", v)
	}
	if v := tbl.Value(1701, "fraud"); v != 0 {
		t.Errorf("null should read as 0, got %v", v)
	}
}

func TestDecodeWideErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"not array", `{"year": 1}`},
		{"missing period", `[{"theft": 1}]`},
		{"bad period", `[{"year": "abc"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeWide("q.json", []byte(tt.data), "year")
			if !errors.Is(err, errors.ErrCodeDecode) {
				t.Errorf("DecodeWide() error = %v, want DECODE_ERROR", err)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1700", 1700},
		{"1700.0", 1700},
		{"1839.9999", 1840},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParsePeriod(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestDecodeTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"json", "map.json", `{"theft": ["simpleLarceny", "pocketpicking"], "damage": ["arson"]}`},
		{"yaml", "map.yaml", "theft:\n  - simpleLarceny\n  - pocketpicking\ndamage:\n  - arson\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := DecodeTaxonomy(tt.file, []byte(tt.data))
			if err != nil {
				t.Fatalf("DecodeTaxonomy: %v", err)
			}
			if got := tax.Parents(); !slices.Equal(got, []string{"damage", "theft"}) {
				t.Errorf("Parents() = %v", got)
			}
			if got := tax.Children("theft"); !slices.Equal(got, []string{"simpleLarceny", "pocketpicking"}) {
				t.Errorf("Children(theft) = %v", got)
			}
			if p, ok := tax.ParentOf("arson"); !ok || p != "damage" {
				t.Errorf("ParentOf(arson) = %q, %v", p, ok)
			}
		})
	}
}
