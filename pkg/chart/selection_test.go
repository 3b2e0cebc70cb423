package chart

import (
	"slices"
	"testing"

	"github.com/matzehuels/crimescope/pkg/dataset"
)

func TestSelectionImmutable(t *testing.T) {
	a := NewSelection("category", "theft")
	b := a.With("fraud")
	if a.IsActive("fraud") {
		t.Error("With mutated the receiver")
	}
	if !b.IsActive("fraud") || !b.IsActive("theft") {
		t.Errorf("b.Active() = %v, want [fraud theft]", b.Active())
	}
}

func TestSelectionFlipInverse(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		key  string
	}{
		{"inactive key", NewSelection("category", "a"), "b"},
		{"active key", NewSelection("category", "a", "b"), "b"},
		{"empty", NewSelection("category"), "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := tt.sel.Flip(tt.key)
			if once.IsActive(tt.key) == tt.sel.IsActive(tt.key) {
				t.Errorf("Flip did not change %q", tt.key)
			}
			if twice := once.Flip(tt.key); !twice.Equal(tt.sel) {
				t.Errorf("Flip twice = %v, want %v", twice.Active(), tt.sel.Active())
			}
		})
	}
}

func TestSelectionResolve(t *testing.T) {
	known := []string{"c", "a", "b"}
	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"empty means all", NewSelection(""), []string{"c", "a", "b"}},
		{"known order kept", NewSelection("", "b", "c"), []string{"c", "b"}},
		{"unknown only means all", NewSelection("", "zzz"), []string{"c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sel.Resolve(known); !slices.Equal(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectionWithMode(t *testing.T) {
	s := NewSelection("category", "theft").WithFocus("theft")
	next := s.WithMode("subcategory")
	if next.Len() != 0 || next.Focus() != "" {
		t.Errorf("WithMode kept keys %v and focus %q", next.Active(), next.Focus())
	}
	if same := s.WithMode("category"); !same.Equal(s) {
		t.Error("WithMode to the current mode changed the selection")
	}
}

func TestSelectionWithFilterClearsFocus(t *testing.T) {
	s := NewSelection("").WithFilter("A").WithFocus("x")
	if got := s.WithFilter("A").Focus(); got != "x" {
		t.Errorf("same filter cleared focus, got %q", got)
	}
	if got := s.WithFilter("B").Focus(); got != "" {
		t.Errorf("new filter kept focus %q", got)
	}
}

func TestSelectionGroup(t *testing.T) {
	children := []string{"burglary", "robbery"}
	s := NewSelection("subcategory", "burglary")

	if s.GroupState(children) {
		t.Error("partial group reported checked")
	}
	on := s.FlipGroup(children)
	if !on.GroupState(children) {
		t.Errorf("FlipGroup from partial: active %v, want both children", on.Active())
	}
	off := on.FlipGroup(children)
	if off.IsActive("burglary") || off.IsActive("robbery") {
		t.Errorf("FlipGroup from checked left %v", off.Active())
	}
	if NewSelection("").GroupState(nil) {
		t.Error("empty group reported checked")
	}
}

func TestController(t *testing.T) {
	tax := dataset.NewTaxonomy(map[string][]string{
		"theft":   {"burglary", "robbery"},
		"violent": {"assault"},
	})
	c := NewController(NewSelection("subcategory"))
	c.SetTaxonomy(tax)

	var seen []Selection
	c.Subscribe(func(s Selection) { seen = append(seen, s) })

	c.Toggle("assault")
	if !c.IsActive("assault") || len(seen) != 1 {
		t.Fatalf("Toggle: active=%v notifications=%d", c.IsActive("assault"), len(seen))
	}
	if !c.GroupChecked("violent") {
		t.Error("violent group not checked after its only child was toggled on")
	}

	c.ToggleGroup("theft")
	if len(seen) != 2 {
		t.Errorf("ToggleGroup notifications = %d, want 2", len(seen))
	}
	if !c.IsActive("burglary") || !c.IsActive("robbery") {
		t.Errorf("ToggleGroup on: active %v", c.Selection().Active())
	}

	c.Batch(func() {
		c.Clear()
		c.SetAll([]string{"robbery"})
		c.Batch(func() { c.SetFocus("robbery") })
	})
	if len(seen) != 3 {
		t.Errorf("Batch notifications = %d total, want 3", len(seen))
	}
	last := seen[len(seen)-1]
	if !slices.Equal(last.Active(), []string{"robbery"}) || last.Focus() != "robbery" {
		t.Errorf("batched selection = %v focus %q", last.Active(), last.Focus())
	}

	c.SetMode("category")
	if c.Selection().Len() != 0 {
		t.Errorf("SetMode kept %v", c.Selection().Active())
	}
}

func TestSession(t *testing.T) {
	var s Session
	first := s.Begin(NewSelection("a"))
	second := s.Begin(NewSelection("b"))

	if s.Accept(first) {
		t.Error("stale ticket accepted")
	}
	if !s.Accept(second) {
		t.Error("latest ticket rejected")
	}
	if first.ID == second.ID {
		t.Error("tickets share an ID")
	}
	if got := s.Generation(); got != 2 {
		t.Errorf("Generation() = %d, want 2", got)
	}
}
