package chart

import "testing"

func TestLinear(t *testing.T) {
	tests := []struct {
		name  string
		s     Linear
		in    float64
		want  float64
		round float64
	}{
		{"identity", Linear{0, 10, 0, 10}, 5, 5, 5},
		{"inverted range", Linear{0, 1, 400, 0}, 0.25, 300, 0.25},
		{"period axis", Linear{1990, 2010, 0, 800}, 2000, 400, 2000},
		{"degenerate domain", Linear{5, 5, 400, 0}, 123, 400, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.s.Map(tt.in)
			if got != tt.want {
				t.Errorf("Map(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if back := tt.s.Invert(got); back != tt.round {
				t.Errorf("Invert(%v) = %v, want %v", got, back, tt.round)
			}
		})
	}
}

func TestPeriodScale(t *testing.T) {
	start := 1720
	s := PeriodScale([]int{1750, 1800}, &start, 800)
	if s.D0 != 1720 || s.D1 != 1800 {
		t.Errorf("domain = [%v, %v], want [1720, 1800]", s.D0, s.D1)
	}

	s = PeriodScale([]int{1990}, nil, 800)
	if !s.Degenerate() {
		t.Error("single period scale not degenerate")
	}
	if got := s.Map(1990); got != 0 {
		t.Errorf("single period maps to %v, want 0", got)
	}
}

func TestValueScale(t *testing.T) {
	s := ValueScale(0.2, true, 400)
	if s.D1 != 1 {
		t.Errorf("unit domain max = %v, want 1", s.D1)
	}
	if got := s.Map(1); got != 0 {
		t.Errorf("Map(1) = %v, want 0 (top)", got)
	}

	s = ValueScale(0, false, 400)
	if got := s.Map(0); got != 400 {
		t.Errorf("empty domain Map(0) = %v, want 400", got)
	}
}

func TestTicks(t *testing.T) {
	s := Linear{1990, 2020, 0, 900}
	ticks := s.Ticks(10, true)
	if len(ticks) == 0 {
		t.Fatal("no ticks")
	}
	for _, v := range ticks {
		if v != float64(int(v)) {
			t.Errorf("tick %v not integral", v)
		}
		if v < 1990 || v > 2020 {
			t.Errorf("tick %v outside domain", v)
		}
	}

	if got := (Linear{3, 3, 0, 1}).Ticks(5, false); len(got) != 1 || got[0] != 3 {
		t.Errorf("degenerate ticks = %v, want [3]", got)
	}
}
