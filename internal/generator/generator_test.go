package generator

import (
	"sort"
	"testing"
)

func TestSeededGeneratorsAgree(t *testing.T) {
	a := NewSeeded(7)
	b := NewSeeded(7)
	la := a.Lanes(32, 4)
	lb := b.Lanes(32, 4)
	for i := range la {
		if la[i] != lb[i] {
			t.Fatalf("lane %d differs: %d vs %d", i, la[i], lb[i])
		}
		if la[i] < 0 || la[i] >= 4 {
			t.Fatalf("lane out of range: %d", la[i])
		}
	}
	if a.Between(60, 260) != b.Between(60, 260) {
		t.Fatalf("expected identical draws")
	}
}

func TestBetweenBounds(t *testing.T) {
	g := NewSeeded(1)
	for i := 0; i < 200; i++ {
		v := g.Between(60, 260)
		if v < 60 || v >= 260 {
			t.Fatalf("value out of range: %d", v)
		}
	}
	if g.Between(5, 5) != 5 {
		t.Fatalf("empty range should return lower bound")
	}
}

func TestShuffledKeepsValues(t *testing.T) {
	g := NewSeeded(3)
	in := []int{85, 89, 92, 95, 99}
	out := g.Shuffled(in)
	if len(out) != len(in) {
		t.Fatalf("expected %d values, got %d", len(in), len(out))
	}
	sorted := append([]int(nil), out...)
	sort.Ints(sorted)
	for i := range in {
		if sorted[i] != in[i] {
			t.Fatalf("shuffle changed values: %v", out)
		}
	}
	if in[0] != 85 || in[4] != 99 {
		t.Fatalf("input must not be modified: %v", in)
	}
}
