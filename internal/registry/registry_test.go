package registry

import (
	"context"
	"testing"
)

// openTestRegistry opens an in-memory SQLiteRegistry for use in tests.
func openTestRegistry(t *testing.T) *SQLiteRegistry {
	t.Helper()
	r, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory registry: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func Test_Registry_RecordAndRecent(t *testing.T) {
	t.Parallel()
	r := openTestRegistry(t)
	ctx := context.Background()

	if err := r.Record(ctx, "general", "report.pdf", "general/report.pdf", "chunk", 3, "indexed"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := r.Record(ctx, "general", "payload.exe", "", "chunk", 0, "rejected-type"); err != nil {
		t.Fatalf("record rejection: %v", err)
	}

	entries, err := r.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	// Newest-first: the rejection was recorded last.
	if entries[0].Filename != "payload.exe" || entries[0].Status != "rejected-type" {
		t.Errorf("entry[0]: got %s/%s", entries[0].Filename, entries[0].Status)
	}
	if entries[1].Filename != "report.pdf" || entries[1].Chunks != 3 {
		t.Errorf("entry[1]: got %s with %d chunks", entries[1].Filename, entries[1].Chunks)
	}
	if entries[1].FileKey != "general/report.pdf" {
		t.Errorf("entry[1] filekey %q", entries[1].FileKey)
	}
}

func Test_Registry_RecentLimitRespected(t *testing.T) {
	t.Parallel()
	r := openTestRegistry(t)
	ctx := context.Background()

	for range 6 {
		if err := r.Record(ctx, "general", "a.txt", "general/a.txt", "chunk", 1, "indexed"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	entries, err := r.Recent(ctx, 4)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("want 4 entries, got %d", len(entries))
	}
}

func Test_Registry_CaptionSourceKind(t *testing.T) {
	t.Parallel()
	r := openTestRegistry(t)
	ctx := context.Background()

	if err := r.Record(ctx, "photos", "chart.png", "photos/chart.png", "caption", 1, "indexed"); err != nil {
		t.Fatalf("record caption: %v", err)
	}

	entries, err := r.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 || entries[0].SourceKind != "caption" {
		t.Errorf("want one caption entry, got %+v", entries)
	}
}

func Test_Registry_UnknownSourceKindRejected(t *testing.T) {
	t.Parallel()
	r := openTestRegistry(t)

	if err := r.Record(context.Background(), "general", "x", "", "video", 0, "indexed"); err == nil {
		t.Error("want CHECK constraint violation for unknown source kind, got nil")
	}
}

func Test_Registry_EmptyReturnsNil(t *testing.T) {
	t.Parallel()
	r := openTestRegistry(t)

	entries, err := r.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent empty: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("want 0 entries, got %d", len(entries))
	}
}
