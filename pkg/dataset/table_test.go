package dataset

import (
	"slices"
	"testing"
)

func TestTableMissingCellsReadZero(t *testing.T) {
	tbl := FromRows([]Row{
		{Period: 1991, Key: "a", Value: 1, Count: NoCount},
		{Period: 1990, Key: "b", Value: 2, Count: 4},
	})

	if got := tbl.Periods(); !slices.Equal(got, []int{1990, 1991}) {
		t.Errorf("Periods() = %v, want [1990 1991]", got)
	}
	if got := tbl.Keys(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v, want first-seen order [a b]", got)
	}
	if v := tbl.Value(1990, "a"); v != 0 {
		t.Errorf("Value(1990, a) = %v, want 0", v)
	}
	if v := tbl.Value(2000, "a"); v != 0 {
		t.Errorf("Value(2000, a) = %v, want 0", v)
	}
	if c, ok := tbl.Count(1990, "b"); !ok || c != 4 {
		t.Errorf("Count(1990, b) = %d, %v, want 4, true", c, ok)
	}
	if _, ok := tbl.Count(1991, "a"); ok {
		t.Error("Count(1991, a) should be unknown")
	}
}

func TestTableAddAccumulates(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Row{Period: 1800, Key: "All", Value: 3, Count: 10})
	tbl.Add(Row{Period: 1800, Key: "All", Value: 2, Count: 5})

	if v := tbl.Value(1800, "All"); v != 5 {
		t.Errorf("Value = %v, want 5", v)
	}
	if c, _ := tbl.Count(1800, "All"); c != 15 {
		t.Errorf("Count = %d, want 15", c)
	}
}

func TestTableEmptyPeriodKept(t *testing.T) {
	tbl := NewTable()
	tbl.AddPeriod(1700)
	tbl.Add(Row{Period: 1701, Key: "x", Value: 1, Count: NoCount})

	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
	lo, hi, ok := tbl.Extent()
	if !ok || lo != 1700 || hi != 1701 {
		t.Errorf("Extent() = %d, %d, %v", lo, hi, ok)
	}
}

func TestTableFilter(t *testing.T) {
	tbl := FromRows([]Row{
		{Period: 1, Key: "keep", Value: 1, Count: NoCount},
		{Period: 2, Key: "drop", Value: 2, Count: NoCount},
	})
	tbl.SetTotal(2, 10)

	out := tbl.Filter(func(k string) bool { return k == "keep" })
	if got := out.Keys(); !slices.Equal(got, []string{"keep"}) {
		t.Errorf("Keys() = %v", got)
	}
	if got := out.Periods(); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Periods() = %v, want periods preserved", got)
	}
	if total, ok := out.Total(2); !ok || total != 10 {
		t.Errorf("Total(2) = %v, %v", total, ok)
	}

	none := tbl.Filter(func(string) bool { return false })
	if !none.Empty() {
		t.Error("filtering every key should give an empty table")
	}
}

func TestTableSelect(t *testing.T) {
	var rows []Row
	for p := 1700; p <= 1710; p++ {
		rows = append(rows, Row{Period: p, Key: "k", Value: float64(p), Count: NoCount})
	}
	out := FromRows(rows).Select(1703, 1705)
	if got := out.Periods(); !slices.Equal(got, []int{1703, 1704, 1705}) {
		t.Errorf("Periods() = %v", got)
	}
}

func TestAnnotationDrawEnd(t *testing.T) {
	tests := []struct {
		name string
		a    Annotation
		want int
	}{
		{"exclusive", Annotation{Start: 1750, End: 1800}, 1800},
		{"inclusive", Annotation{Start: 1750, End: 1800, EndInclusive: true}, 1801},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.DrawEnd(); got != tt.want {
				t.Errorf("DrawEnd() = %d, want %d", got, tt.want)
			}
			if !tt.a.Contains(1800) || tt.a.Contains(1801) {
				t.Error("Contains should cover [Start, End]")
			}
		})
	}
}
