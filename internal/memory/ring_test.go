package memory

import "testing"

func TestRing_EvictsOldest(t *testing.T) {
	r := NewRing[int](50)
	for i := 0; i < 51; i++ {
		r.Push(i)
	}

	if r.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", r.Len())
	}

	items := r.Items()
	if items[0] != 1 {
		t.Fatalf("expected oldest survivor 1, got %d", items[0])
	}
	if items[len(items)-1] != 50 {
		t.Fatalf("expected newest 50, got %d", items[len(items)-1])
	}
}

func TestRing_OrderUnderWrap(t *testing.T) {
	r := NewRing[int](3)
	for i := 0; i < 7; i++ {
		r.Push(i)
	}
	items := r.Items()
	want := []int{4, 5, 6}
	for i, v := range want {
		if items[i] != v {
			t.Fatalf("expected %v, got %v", want, items)
		}
	}
}

func TestRing_ScanNewestFirst(t *testing.T) {
	r := NewRing[int](5)
	for i := 0; i < 5; i++ {
		r.Push(i)
	}

	var seen []int
	r.ScanNewestFirst(func(v int) bool {
		seen = append(seen, v)
		return len(seen) < 3
	})

	want := []int{4, 3, 2}
	for i, v := range want {
		if seen[i] != v {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}
