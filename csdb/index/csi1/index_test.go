package csi1_test

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/corvusdb/corvus/csdb"
	"github.com/corvusdb/corvus/csdb/index/csi1"
	"github.com/corvusdb/corvus/csdb/index/internal"
)

// Ensure creating a column index is idempotent per name.
func TestIndex_CreateColumnIndex(t *testing.T) {
	idx := NewIndex()

	ci := idx.CreateColumnIndex("city", csdb.TextType, nil)
	if ci == nil {
		t.Fatal("expected column index")
	}
	if got := ci.Name(); got != "city" {
		t.Fatalf("unexpected name: %q", got)
	} else if got := ci.Type(); got != csdb.TextType {
		t.Fatalf("unexpected type: %v", got)
	}

	if again := idx.CreateColumnIndex("city", csdb.TextType, nil); again != ci {
		t.Fatal("expected the existing column index")
	}
	if got := idx.ColumnIndex("city"); got != ci {
		t.Fatal("expected lookup to return the column index")
	}
	if got := idx.ColumnIndex("nope"); got != nil {
		t.Fatal("expected no column index")
	}
}

// Ensure updating an unregistered column fails.
func TestIndex_UpdateColumn_NotFound(t *testing.T) {
	idx := NewIndex()
	if err := idx.UpdateColumn("nope", nil, nil); !errors.Is(err, csi1.ErrColumnNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Ensure updates replace the column's snapshot and closing the index
// releases the published segments.
func TestIndex_UpdateAndClose(t *testing.T) {
	idx := NewIndex()
	ci := idx.CreateColumnIndex("city", csdb.TextType, nil)

	file := NewTestFile("a.dat", "01", "10")
	seg := NewTestSegment(file, "cat", "dog")
	if err := idx.UpdateColumn("city", nil, Segments(seg)); err != nil {
		t.Fatal(err)
	}
	if got := ci.View().Len(); got != 1 {
		t.Fatalf("unexpected view len: %d", got)
	}

	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
	if got := seg.DataClosed(); got != 1 {
		t.Fatalf("unexpected closes: %d", got)
	} else if got := file.Refs(); got != 0 {
		t.Fatalf("unexpected refs: %d", got)
	}
	if got := idx.ColumnIndex("city"); got != nil {
		t.Fatal("expected columns cleared")
	}
}

// Ensure a failed update keeps the previous snapshot published.
func TestIndex_UpdateColumn_Failure(t *testing.T) {
	idx := NewIndex()
	ci := idx.CreateColumnIndex("city", csdb.TextType, nil)

	file := NewTestFile("a.dat", "01", "10")
	seg := NewTestSegment(file, "cat", "dog")
	if err := idx.UpdateColumn("city", nil, Segments(seg)); err != nil {
		t.Fatal(err)
	}

	// A segment without term metadata cannot enter a snapshot.
	data := &internal.SegmentData{
		Searchf: func(*csi1.Expression) (csdb.RowIDIterator, error) { return nil, nil },
		Closef:  func() error { return nil },
	}
	bad := csi1.NewSegment(NewTestFile("b.dat", "11", "20"), data, nil, nil)
	defer bad.Release()

	if err := idx.UpdateColumn("city", nil, []*csi1.Segment{bad}); !errors.Is(err, csi1.ErrInconsistentView) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ci.View().Len(); got != 1 {
		t.Fatalf("unexpected view len after failed update: %d", got)
	} else if ci.View().Segment("a.dat") == nil {
		t.Fatal("expected previous snapshot to keep serving")
	}
}

// Ensure the configured index surface is reachable.
func TestIndex_Config(t *testing.T) {
	idx := NewIndex()
	idx.WithLogger(zap.NewNop())

	if got := idx.Config().QueryTimeQuota; got == 0 {
		t.Fatal("expected a default query time quota")
	}
}
