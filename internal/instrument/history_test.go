package instrument

import "testing"

func TestHistoryRecordAndRecent(t *testing.T) {
	h := NewHistory(3)

	id := h.Record(Execution{Mode: "live", RowCount: 10, Status: "ok"})
	if id == "" {
		t.Fatal("expected assigned execution id")
	}
	h.Record(Execution{Mode: "live", RowCount: 20, Status: "ok"})

	recent := h.Recent(10)
	if len(recent) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(recent))
	}
	// Newest first.
	if recent[0].RowCount != 20 || recent[1].RowCount != 10 {
		t.Fatalf("unexpected order: %v", recent)
	}
}

func TestHistoryRingEviction(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Record(Execution{RowCount: i})
	}
	if h.Len() != 3 {
		t.Fatalf("expected ring capped at 3, got %d", h.Len())
	}
	recent := h.Recent(3)
	if recent[0].RowCount != 5 || recent[2].RowCount != 3 {
		t.Fatalf("expected newest three (5,4,3), got %v", recent)
	}
}

func TestHistoryRecentLimit(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 6; i++ {
		h.Record(Execution{RowCount: i})
	}
	if got := len(h.Recent(2)); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := len(h.Recent(0)); got != 6 {
		t.Fatalf("expected all 6 for n<=0, got %d", got)
	}
}
