package csi1

import "testing"

func TestExpression_SatisfiedBy(t *testing.T) {
	for _, test := range []struct {
		name  string
		expr  *Expression
		value string
		want  bool
	}{
		{"eq hit", point(OpEqual, "cat"), "cat", true},
		{"eq miss", point(OpEqual, "cat"), "dog", false},
		{"ne hit", point(OpNotEqual, "cat"), "dog", true},
		{"ne miss", point(OpNotEqual, "cat"), "cat", false},
		{"prefix hit", point(OpPrefix, "ca"), "cat", true},
		{"prefix miss", point(OpPrefix, "ca"), "dog", false},
		{"contains hit", point(OpContains, "a"), "cat", true},
		{"contains miss", point(OpContains, "z"), "cat", false},
		{"range inside", span("ant", "dog"), "cat", true},
		{"range below", span("bee", "dog"), "ant", false},
		{"range above", span("ant", "bee"), "cat", false},
		{"range lower edge inclusive", span("cat", "dog"), "cat", true},
		{"range upper edge inclusive", span("ant", "cat"), "cat", true},
		{"range open lower", span("", "bee"), "ant", true},
		{"range open upper", span("bee", ""), "cat", true},
	} {
		if got := test.expr.SatisfiedBy([]byte(test.value)); got != test.want {
			t.Fatalf("%s: got %v", test.name, got)
		}
	}
}

func TestExpression_SatisfiedBy_ExclusiveBounds(t *testing.T) {
	expr := &Expression{
		Op:    OpRange,
		Lower: &Bound{Value: []byte("cat")},
		Upper: &Bound{Value: []byte("fox")},
	}
	if expr.SatisfiedBy([]byte("cat")) {
		t.Fatal("exclusive lower bound matched")
	}
	if expr.SatisfiedBy([]byte("fox")) {
		t.Fatal("exclusive upper bound matched")
	}
	if !expr.SatisfiedBy([]byte("dog")) {
		t.Fatal("interior value did not match")
	}
}

// Fingerprints give predicate groups a content-based identity.
func TestFingerprint(t *testing.T) {
	a, b := point(OpEqual, "cat"), point(OpEqual, "cat")
	if fingerprint(a) != fingerprint(b) {
		t.Fatal("equal expressions must fingerprint equally")
	}

	if fingerprint(a) == fingerprint(point(OpEqual, "dog")) {
		t.Fatal("different operands must fingerprint differently")
	}
	if fingerprint(a) == fingerprint(point(OpNotEqual, "cat")) {
		t.Fatal("different operators must fingerprint differently")
	}

	other := point(OpEqual, "cat")
	other.Column = "d"
	if fingerprint(a) == fingerprint(other) {
		t.Fatal("different columns must fingerprint differently")
	}

	if fingerprint(a, b) == fingerprint(a) {
		t.Fatal("group size must change the fingerprint")
	}

	x, y := point(OpEqual, "cat"), point(OpEqual, "dog")
	if fingerprint(x, y) == fingerprint(y, x) {
		t.Fatal("expression order must change the fingerprint")
	}

	incl := &Expression{Column: "c", Op: OpRange, Lower: &Bound{Value: []byte("a"), Inclusive: true}}
	excl := &Expression{Column: "c", Op: OpRange, Lower: &Bound{Value: []byte("a")}}
	if fingerprint(incl) == fingerprint(excl) {
		t.Fatal("bound inclusivity must change the fingerprint")
	}
}
