package piecechain

import "testing"

// newTestChainPieces builds a sentinel-headed circular list containing
// pieces holding a..b..c and returns the sentinel and the pieces, for
// exercising spanSwap directly without going through Chain's public API.
func newTestChainPieces(sizes ...int) (*piece, []*piece) {
	sentinel := &piece{}
	sentinel.prev, sentinel.next = sentinel, sentinel

	pieces := make([]*piece, len(sizes))
	for i, size := range sizes {
		pieces[i] = &piece{size: size}
	}

	prev := sentinel
	for _, p := range pieces {
		p.prev = prev
		prev.next = p
		prev = p
	}
	prev.next = sentinel
	sentinel.prev = prev

	return sentinel, pieces
}

func chainSizes(sentinel *piece) []int {
	var out []int
	for p := sentinel.next; p != sentinel; p = p.next {
		out = append(out, p.size)
	}
	return out
}

func TestSpanSwap_PureInsertion(t *testing.T) {
	sentinel, pieces := newTestChainPieces(3, 4)
	mid := &piece{size: 2}
	mid.prev, mid.next = pieces[0], pieces[1]

	delta := spanSwap(emptySpan(), newSpan(mid, mid))
	if delta != 2 {
		t.Fatalf("delta=%d, want 2", delta)
	}

	got := chainSizes(sentinel)
	want := []int{3, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("sizes=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sizes=%v, want %v", got, want)
		}
	}
}

func TestSpanSwap_PureDeletion(t *testing.T) {
	sentinel, pieces := newTestChainPieces(3, 4, 5)

	delta := spanSwap(newSpan(pieces[1], pieces[1]), emptySpan())
	if delta != -4 {
		t.Fatalf("delta=%d, want -4", delta)
	}

	got := chainSizes(sentinel)
	want := []int{3, 5}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("sizes=%v, want %v", got, want)
	}
}

func TestSpanSwap_Replacement(t *testing.T) {
	sentinel, pieces := newTestChainPieces(3, 4, 5)

	replacement := &piece{size: 10}
	replacement.prev, replacement.next = pieces[0], pieces[2]

	delta := spanSwap(newSpan(pieces[1], pieces[1]), newSpan(replacement, replacement))
	if delta != 6 {
		t.Fatalf("delta=%d, want 6", delta)
	}

	got := chainSizes(sentinel)
	want := []int{3, 10, 5}
	if len(got) != len(want) {
		t.Fatalf("sizes=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sizes=%v, want %v", got, want)
		}
	}
}

func TestSpanSwap_Noop(t *testing.T) {
	if delta := spanSwap(emptySpan(), emptySpan()); delta != 0 {
		t.Fatalf("delta=%d, want 0", delta)
	}
}

func TestNewSpan_SumsLengths(t *testing.T) {
	_, pieces := newTestChainPieces(3, 4, 5)
	sp := newSpan(pieces[0], pieces[2])
	if sp.length != 12 {
		t.Fatalf("length=%d, want 12", sp.length)
	}
}
