package state

import "testing"

func TestClampCursor(t *testing.T) {
	if got := ClampCursor(-1, 2); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := ClampCursor(2, 2); got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	if got := ClampCursor(1, 0); got != 0 {
		t.Fatalf("expected 0 for empty, got %d", got)
	}
}

func TestGridHeight(t *testing.T) {
	if got := GridHeight(30, false); got != 26 {
		t.Fatalf("expected 26 rows, got %d", got)
	}
	if got := GridHeight(30, true); got != 18 {
		t.Fatalf("expected 18 rows with help, got %d", got)
	}
	if got := GridHeight(2, false); got != 0 {
		t.Fatalf("expected collapsed grid, got %d", got)
	}
}

func TestLineStep(t *testing.T) {
	if got := LineStep(14); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	if got := LineStep(2); got != 1 {
		t.Fatalf("expected minimum step 1, got %v", got)
	}
	if got := LineStep(0); got != 1 {
		t.Fatalf("expected 1 without layout, got %v", got)
	}
}

func TestPageStep(t *testing.T) {
	if got := PageStep(30, 14); got != 28 {
		t.Fatalf("expected two rows, got %v", got)
	}
	if got := PageStep(10, 14); got != 14 {
		t.Fatalf("expected at least one row, got %v", got)
	}
	if got := PageStep(10, 0); got != 10 {
		t.Fatalf("expected viewport without layout, got %v", got)
	}
}
