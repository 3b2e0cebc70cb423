package dataset

import (
	"slices"
	"sort"
)

// NoCount marks a row whose backing sample size is unknown.
const NoCount = -1

// Row is one record per period and series key.
type Row struct {
	Period int     `json:"period"`
	Key    string  `json:"key"`
	Value  float64 `json:"value"`
	Count  int     `json:"count"` // backing sample size, NoCount if unknown
}

// Table holds rows grouped by period and key.
type Table struct {
	periods []int
	keys    []string
	values  map[int]map[string]float64
	counts  map[int]map[string]int
	totals  map[int]float64
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		values: make(map[int]map[string]float64),
		counts: make(map[int]map[string]int),
		totals: make(map[int]float64),
	}
}

// FromRows builds a table from rows, adding them in order.
func FromRows(rows []Row) *Table {
	t := NewTable()
	for _, r := range rows {
		t.Add(r)
	}
	return t
}

// Add accumulates r into the table. Adding the same (period, key) twice sums
// the values and the known counts.
func (t *Table) Add(r Row) {
	t.AddPeriod(r.Period)
	if !slices.Contains(t.keys, r.Key) {
		t.keys = append(t.keys, r.Key)
	}
	t.values[r.Period][r.Key] += r.Value
	if r.Count != NoCount {
		if t.counts[r.Period] == nil {
			t.counts[r.Period] = make(map[string]int)
		}
		t.counts[r.Period][r.Key] += r.Count
	}
}

// AddPeriod registers a period with no values. Periods with no rows are
// still part of the table and stack as zeros.
func (t *Table) AddPeriod(p int) {
	if _, ok := t.values[p]; ok {
		return
	}
	t.values[p] = make(map[string]float64)
	i := sort.SearchInts(t.periods, p)
	t.periods = slices.Insert(t.periods, i, p)
}

// SetTotal records the external total for period p.
func (t *Table) SetTotal(p int, total float64) {
	t.AddPeriod(p)
	t.totals[p] = total
}

// Total returns the external total for p and whether one was set.
func (t *Table) Total(p int) (float64, bool) {
	v, ok := t.totals[p]
	return v, ok
}

// Periods returns the periods in ascending order.
func (t *Table) Periods() []int {
	return slices.Clone(t.periods)
}

// Keys returns the series keys in first-seen order.
func (t *Table) Keys() []string {
	return slices.Clone(t.keys)
}

// SortedKeys returns the series keys in lexical order.
func (t *Table) SortedKeys() []string {
	keys := t.Keys()
	sort.Strings(keys)
	return keys
}

// HasKey reports whether key has at least one row.
func (t *Table) HasKey(key string) bool {
	return slices.Contains(t.keys, key)
}

// Value returns the value at (p, key), zero when absent.
func (t *Table) Value(p int, key string) float64 {
	return t.values[p][key]
}

// Count returns the backing sample size at (p, key).
func (t *Table) Count(p int, key string) (int, bool) {
	c, ok := t.counts[p][key]
	return c, ok
}

// Len returns the number of periods.
func (t *Table) Len() int { return len(t.periods) }

// Empty reports whether the table has no keys.
func (t *Table) Empty() bool { return len(t.keys) == 0 }

// Extent returns the first and last period. ok is false for an empty table.
func (t *Table) Extent() (lo, hi int, ok bool) {
	if len(t.periods) == 0 {
		return 0, 0, false
	}
	return t.periods[0], t.periods[len(t.periods)-1], true
}

// Rows returns every stored cell ordered by period, then by key order.
func (t *Table) Rows() []Row {
	var rows []Row
	for _, p := range t.periods {
		for _, k := range t.keys {
			v, ok := t.values[p][k]
			if !ok {
				continue
			}
			c, has := t.counts[p][k]
			if !has {
				c = NoCount
			}
			rows = append(rows, Row{Period: p, Key: k, Value: v, Count: c})
		}
	}
	return rows
}

// Filter returns a new table holding only the keys for which keep is true.
// Periods and totals are preserved even when every key is dropped.
func (t *Table) Filter(keep func(key string) bool) *Table {
	out := NewTable()
	for _, p := range t.periods {
		out.AddPeriod(p)
	}
	for p, total := range t.totals {
		out.SetTotal(p, total)
	}
	for _, r := range t.Rows() {
		if keep(r.Key) {
			out.Add(r)
		}
	}
	return out
}

// Select returns a table restricted to the periods in [from, to].
func (t *Table) Select(from, to int) *Table {
	out := NewTable()
	for _, p := range t.periods {
		if p < from || p > to {
			continue
		}
		out.AddPeriod(p)
		if total, ok := t.totals[p]; ok {
			out.SetTotal(p, total)
		}
	}
	for _, r := range t.Rows() {
		if r.Period >= from && r.Period <= to {
			out.Add(r)
		}
	}
	return out
}
