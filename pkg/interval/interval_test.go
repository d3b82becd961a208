package interval_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/corvusdb/corvus/pkg/interval"
)

func TestTree_Search(t *testing.T) {
	tree := interval.NewTree([]interval.Interval[string]{
		{Min: []byte("a"), Max: []byte("e"), Value: "A"},
		{Min: []byte("c"), Max: []byte("h"), Value: "B"},
		{Min: []byte("j"), Max: []byte("m"), Value: "C"},
		{Min: []byte("m"), Max: []byte("m"), Value: "D"},
	}, bytes.Compare)

	for _, test := range []struct {
		min, max string
		want     []string
	}{
		{"a", "b", []string{"A"}},
		{"d", "d", []string{"A", "B"}},
		{"e", "j", []string{"A", "B", "C"}},
		{"h", "h", []string{"B"}},
		{"i", "i", nil},
		{"m", "z", []string{"C", "D"}},
		{"a", "z", []string{"A", "B", "C", "D"}},
	} {
		got := tree.Search([]byte(test.min), []byte(test.max))
		sort.Strings(got)
		if !equalStrings(got, test.want) {
			t.Fatalf("Search(%q, %q) = %v, want %v", test.min, test.max, got, test.want)
		}
	}
}

func TestTree_Count(t *testing.T) {
	ivs := []interval.Interval[int]{
		{Min: []byte("a"), Max: []byte("b"), Value: 0},
		{Min: []byte("a"), Max: []byte("b"), Value: 1},
		{Min: []byte("x"), Max: []byte("z"), Value: 2},
	}
	if n := interval.NewTree(ivs, bytes.Compare).Count(); n != 3 {
		t.Fatalf("Count() = %d, want 3", n)
	}
}

func TestTree_Empty(t *testing.T) {
	tree := interval.NewTree[int](nil, bytes.Compare)
	if n := tree.Count(); n != 0 {
		t.Fatalf("Count() = %d, want 0", n)
	}
	if got := tree.Search([]byte("a"), []byte("z")); len(got) != 0 {
		t.Fatalf("Search() = %v, want none", got)
	}
}

// TestTree_Search_Random cross-checks the tree against a brute-force scan.
func TestTree_Search_Random(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	key := func(n int) []byte { return []byte(fmt.Sprintf("%03d", n)) }

	ivs := make([]interval.Interval[int], 200)
	for i := range ivs {
		a, b := rnd.Intn(1000), rnd.Intn(1000)
		if a > b {
			a, b = b, a
		}
		ivs[i] = interval.Interval[int]{Min: key(a), Max: key(b), Value: i}
	}
	tree := interval.NewTree(ivs, bytes.Compare)

	for q := 0; q < 100; q++ {
		a, b := rnd.Intn(1000), rnd.Intn(1000)
		if a > b {
			a, b = b, a
		}
		min, max := key(a), key(b)

		var want []int
		for _, iv := range ivs {
			if bytes.Compare(iv.Min, max) <= 0 && bytes.Compare(min, iv.Max) <= 0 {
				want = append(want, iv.Value)
			}
		}

		got := tree.Search(min, max)
		sort.Ints(got)
		sort.Ints(want)
		if !equalInts(got, want) {
			t.Fatalf("Search(%s, %s) = %v, want %v", min, max, got, want)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
