package piecechain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/piecechain/pkg/piecechain"
)

func TestChain_SaveInplace_NewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	c := piecechain.New()
	defer c.Close()

	require.NoError(t, c.Insert(0, []byte("hello world")))
	require.True(t, c.Dirty())

	require.NoError(t, c.Save(path, piecechain.SaveInplace))
	require.False(t, c.Dirty())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
}

func TestChain_SaveAtomic_NewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	c := piecechain.New()
	defer c.Close()

	require.NoError(t, c.Insert(0, []byte("atomic save")))
	require.NoError(t, c.Save(path, piecechain.SaveAtomic))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "atomic save", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no leftover temp files after a successful atomic save")
}

func TestChain_SaveAtomic_ReplacesExistingRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o644))

	c := piecechain.New()
	defer c.Close()

	require.NoError(t, c.Insert(0, []byte("new contents")))
	require.NoError(t, c.Save(path, piecechain.SaveAtomic))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new contents", string(got))
}

func TestChain_SaveAuto_FailsWhenTargetDirMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing-subdir", "out.txt")

	c := piecechain.New()
	defer c.Close()

	require.NoError(t, c.Insert(0, []byte("x")))

	// Neither strategy can create a file in a directory that doesn't
	// exist, so AUTO must surface an error rather than silently
	// succeeding via one of its two strategies.
	err := c.Save(path, piecechain.SaveAuto)
	require.Error(t, err)
}

func TestChain_SaveAtomic_RefusesHardLinkedTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	if err := os.Link(path, filepath.Join(dir, "out-link.txt")); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}

	c := piecechain.New()
	defer c.Close()

	require.NoError(t, c.Insert(0, []byte("new")))
	err := c.Save(path, piecechain.SaveAtomic)
	require.ErrorIs(t, err, piecechain.ErrUnsupportedTarget)
}

func TestChain_SaveOnClosedChain(t *testing.T) {
	c := piecechain.New()
	require.NoError(t, c.Close())

	err := c.Save(filepath.Join(t.TempDir(), "x"), piecechain.SaveInplace)
	require.ErrorIs(t, err, piecechain.ErrClosed)
}
