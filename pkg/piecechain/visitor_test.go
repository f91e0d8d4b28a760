package piecechain_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/piecechain/pkg/piecechain"
)

func TestChain_VisitPartialRange(t *testing.T) {
	c := piecechain.New()
	defer c.Close()

	require.NoError(t, c.Insert(0, []byte("hello")))
	require.NoError(t, c.Insert(5, []byte(" world")))

	var got []byte
	err := c.Visit(3, 5, func(_ int, data []byte) bool {
		got = append(got, data...)
		return true
	})
	require.NoError(t, err)

	if diff := cmp.Diff("lo wo", string(got)); diff != "" {
		t.Errorf("Visit range mismatch (-want +got):\n%s", diff)
	}
}

func TestChain_VisitReportsAbsoluteOffsets(t *testing.T) {
	c := piecechain.New()
	defer c.Close()

	require.NoError(t, c.Insert(0, []byte("abcdef")))

	var offsets []int
	err := c.Visit(0, c.Size(), func(off int, data []byte) bool {
		offsets = append(offsets, off)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []int{0}, offsets)
}

func TestChain_VisitStopsEarly(t *testing.T) {
	c := piecechain.New()
	defer c.Close()

	require.NoError(t, c.Insert(0, []byte("a")))
	require.NoError(t, c.Commit())
	require.NoError(t, c.Insert(1, []byte("b")))
	require.NoError(t, c.Commit())
	require.NoError(t, c.Insert(2, []byte("c")))
	require.NoError(t, c.Commit())

	calls := 0
	err := c.Visit(0, c.Size(), func(_ int, _ []byte) bool {
		calls++
		return false
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestChain_VisitEmptyRangeIsNoop(t *testing.T) {
	c := piecechain.New()
	defer c.Close()

	require.NoError(t, c.Insert(0, []byte("abc")))

	called := false
	err := c.Visit(1, 0, func(int, []byte) bool {
		called = true
		return true
	})
	require.NoError(t, err)
	require.False(t, called)
}

func TestChain_VisitOnClosedChain(t *testing.T) {
	c := piecechain.New()
	require.NoError(t, c.Close())

	err := c.Visit(0, 0, func(int, []byte) bool { return true })
	require.ErrorIs(t, err, piecechain.ErrClosed)
}
