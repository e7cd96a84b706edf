package tiling

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/exposure/internal/compute"
)

func TestNeedsTiling(t *testing.T) {
	require.False(t, NeedsTiling(2048, 2048, 2048))
	require.True(t, NeedsTiling(2049, 10, 2048))
	require.True(t, NeedsTiling(10, 4096, 2048))
	require.False(t, NeedsTiling(1<<20, 1<<20, 0), "zero limit never tiles")
}

func TestPartition_Wide(t *testing.T) {
	blocks, err := Partition(4096, 100, 2048, 64)
	require.NoError(t, err)

	// ceil(4096/1984) = 3 columns, ceil(100/1984) = 1 row.
	require.Len(t, blocks, 3)
	require.Equal(t, Block{X: 0, Y: 0, Width: 2048, Height: 100, FirstX: true, FirstY: true, LastY: true}, blocks[0])
	require.Equal(t, Block{X: 1984, Y: 0, Width: 2048, Height: 100, FirstY: true, LastY: true}, blocks[1])
	require.Equal(t, Block{X: 3968, Y: 0, Width: 128, Height: 100, LastX: true, FirstY: true, LastY: true}, blocks[2])

	// Neighbors share exactly the overlap band.
	require.Equal(t, 64, blocks[0].X+blocks[0].Width-blocks[1].X)
	require.Equal(t, 64, blocks[1].X+blocks[1].Width-blocks[2].X)
}

func TestPartition_CoversImage(t *testing.T) {
	sizes := [][2]int{{1, 1}, {2049, 2049}, {5000, 3000}, {1985, 7}, {8192, 2048}}
	for _, sz := range sizes {
		w, h := sz[0], sz[1]
		blocks, err := Partition(w, h, 2048, 64)
		require.NoError(t, err, "%dx%d", w, h)

		covered := make([]bool, w*h)
		for _, b := range blocks {
			require.Positive(t, b.Width)
			require.Positive(t, b.Height)
			require.LessOrEqual(t, b.Width, 2048)
			require.LessOrEqual(t, b.Height, 2048)
			require.LessOrEqual(t, b.X+b.Width, w)
			require.LessOrEqual(t, b.Y+b.Height, h)
			for y := b.Y; y < b.Y+b.Height; y++ {
				for x := b.X; x < b.X+b.Width; x++ {
					covered[y*w+x] = true
				}
			}
		}
		for i, c := range covered {
			if !c {
				t.Fatalf("%dx%d: pixel (%d,%d) not covered", w, h, i%w, i/w)
			}
		}
		require.True(t, blocks[0].FirstX && blocks[0].FirstY)
		require.True(t, blocks[len(blocks)-1].LastX && blocks[len(blocks)-1].LastY)
	}
}

func TestPartition_RowMajorOrder(t *testing.T) {
	blocks, err := Partition(300, 300, 128, 16)
	require.NoError(t, err)
	for i := 1; i < len(blocks); i++ {
		prev, cur := blocks[i-1], blocks[i]
		require.True(t, cur.Y > prev.Y || (cur.Y == prev.Y && cur.X > prev.X),
			"block %d (%v) out of order after %v", i, cur, prev)
	}
}

func TestPartition_InvalidGeometry(t *testing.T) {
	_, err := Partition(0, 10, 2048, 64)
	require.ErrorIs(t, err, compute.ErrAssertion)

	_, err = Partition(10, 10, 64, 64)
	require.ErrorIs(t, err, compute.ErrAssertion)

	_, err = Partition(10, 10, 64, -1)
	require.ErrorIs(t, err, compute.ErrAssertion)
}

func TestChunks_Disjoint(t *testing.T) {
	chunks, err := Chunks(5000, 100, 2048)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	total := 0
	for _, c := range chunks {
		total += c.Width * c.Height
	}
	require.Equal(t, 5000*100, total)

	single, err := Chunks(30, 20, 0)
	require.NoError(t, err)
	require.Len(t, single, 1)
}
