package sampling

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestShuffle_Permutation(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	orig := slices.Clone(in)
	r := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 50; i++ {
		out := Shuffle(r, in)
		if !slices.Equal(in, orig) {
			t.Fatalf("input mutated: %v", in)
		}
		sorted := slices.Clone(out)
		slices.Sort(sorted)
		if !slices.Equal(sorted, orig) {
			t.Fatalf("not a permutation: %v", out)
		}
	}
}

func TestShuffle_Empty(t *testing.T) {
	if got := Shuffle[int](nil, nil); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
	if got := Shuffle(nil, []string{"only"}); len(got) != 1 || got[0] != "only" {
		t.Fatalf("got %v", got)
	}
}

func TestShuffle_Uniform(t *testing.T) {
	// Every element should land in every position roughly equally often.
	const n, trials = 4, 40000
	r := rand.New(rand.NewPCG(42, 7))
	var counts [n][n]int
	in := []int{0, 1, 2, 3}
	for i := 0; i < trials; i++ {
		for pos, v := range Shuffle(r, in) {
			counts[v][pos]++
		}
	}
	want := trials / n
	for v := range counts {
		for pos, c := range counts[v] {
			if c < want*9/10 || c > want*11/10 {
				t.Errorf("value %d at position %d: %d times, want about %d", v, pos, c, want)
			}
		}
	}
}

func TestPick_Range(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		k := Pick(r, 5)
		if k < 0 || k >= 5 {
			t.Fatalf("Pick out of range: %d", k)
		}
		seen[k] = true
	}
	if len(seen) != 5 {
		t.Fatalf("not all indices picked: %v", seen)
	}
	if k := Pick(nil, 1); k != 0 {
		t.Fatalf("Pick(nil, 1) = %d", k)
	}
}
