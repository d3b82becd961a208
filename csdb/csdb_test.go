package csdb_test

import (
	"testing"

	"github.com/corvusdb/corvus/csdb"
)

func TestKeyRange_Overlaps(t *testing.T) {
	r := csdb.KeyRange{Min: []byte("05"), Max: []byte("10")}

	for _, test := range []struct {
		min, max string
		want     bool
	}{
		{"01", "04", false},
		{"01", "05", true},
		{"07", "08", true},
		{"10", "20", true},
		{"11", "20", false},
		{"01", "20", true},
	} {
		if got := r.Overlaps([]byte(test.min), []byte(test.max)); got != test.want {
			t.Fatalf("[%s,%s]: got %v", test.min, test.max, got)
		}
	}

	// Empty query bounds overlap nothing.
	if r.Overlaps(nil, []byte("20")) {
		t.Fatal("empty min overlapped")
	} else if r.Overlaps([]byte("01"), nil) {
		t.Fatal("empty max overlapped")
	}
}

func TestValueType(t *testing.T) {
	if !csdb.TextType.Textual() {
		t.Fatal("text type is not textual")
	} else if csdb.BytesType.Textual() {
		t.Fatal("bytes type is textual")
	}

	if got := csdb.TextType.String(); got != "text" {
		t.Fatalf("unexpected name: %q", got)
	} else if got := csdb.BytesType.String(); got != "bytes" {
		t.Fatalf("unexpected name: %q", got)
	}

	if got := csdb.BytesType.Compare([]byte("a"), []byte("b")); got >= 0 {
		t.Fatalf("unexpected order: %d", got)
	}
}

func TestRowID_IsZero(t *testing.T) {
	if !csdb.RowID(0).IsZero() {
		t.Fatal("zero id is not zero")
	} else if csdb.RowID(1).IsZero() {
		t.Fatal("non-zero id is zero")
	}
}
