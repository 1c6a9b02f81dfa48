package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileCount(t *testing.T) {
	tests := []struct {
		m, k, n, s int
		want       int
	}{
		{2, 2, 2, 3, 1},
		{6, 6, 6, 3, 8},
		{4, 6, 8, 3, 12},
		{7, 7, 7, 3, 27},
		{1, 1, 1, 1, 1},
		{5, 3, 2, 4, 2},
		{0, 3, 3, 3, 0},
	}

	for _, tt := range tests {
		got := Tiles(tt.m, tt.k, tt.n, tt.s)
		assert.Len(t, got, tt.want, "(%d,%d)x(%d,%d) on %d", tt.m, tt.k, tt.k, tt.n, tt.s)
		assert.Equal(t, tt.want, TileCount(tt.m, tt.k, tt.n, tt.s))
	}
}

func TestTilesSingle(t *testing.T) {
	tiles := Tiles(2, 2, 2, 3)
	require.Len(t, tiles, 1)
	assert.Equal(t, MatMulTile{
		ARows: Range{0, 2}, ACols: Range{0, 2},
		BRows: Range{0, 2}, BCols: Range{0, 2},
		IsFirstK: true, IsLastK: true,
	}, tiles[0])
}

func TestTilesRangesClamp(t *testing.T) {
	// (4, 5) x (5, 7) on a 3-wide array
	tiles := Tiles(4, 5, 7, 3)
	require.Len(t, tiles, 2*3*2)

	for _, tile := range tiles {
		assert.LessOrEqual(t, tile.ARows.End, 4)
		assert.LessOrEqual(t, tile.ACols.End, 5)
		assert.LessOrEqual(t, tile.BRows.End, 5)
		assert.LessOrEqual(t, tile.BCols.End, 7)
		assert.Equal(t, tile.ACols, tile.BRows)
		assert.Positive(t, tile.ARows.Len())
		assert.LessOrEqual(t, tile.ARows.Len(), 3)
		assert.LessOrEqual(t, tile.BCols.Len(), 3)
	}

	last := tiles[len(tiles)-1]
	assert.Equal(t, Range{3, 4}, last.ARows)
	assert.Equal(t, Range{3, 5}, last.ACols)
	assert.Equal(t, Range{6, 7}, last.BCols)
}

func TestTilesAccumulationOrder(t *testing.T) {
	shapes := [][3]int{{6, 6, 6}, {4, 9, 8}, {3, 1, 3}, {10, 7, 2}}
	for _, sh := range shapes {
		m, k, n := sh[0], sh[1], sh[2]
		tiles := Tiles(m, k, n, 3)

		type key struct{ i, j int }
		first := map[key]int{}
		last := map[key]int{}
		prevK := map[key]int{}
		seen := map[key]bool{}
		var order []key

		for _, tile := range tiles {
			kk := key{tile.OutputRow, tile.OutputCol}
			if !seen[kk] {
				seen[kk] = true
				order = append(order, kk)
				prevK[kk] = -1
			} else {
				// contiguous: the previous tile belongs to the same output tile
				assert.Equal(t, kk, order[len(order)-1], "k tiles of %v are not contiguous", kk)
			}
			assert.Equal(t, prevK[kk]+1, tile.KIndex, "k order for %v", kk)
			prevK[kk] = tile.KIndex
			if tile.IsFirstK {
				first[kk]++
			}
			if tile.IsLastK {
				last[kk]++
			}
		}

		for _, kk := range order {
			assert.Equal(t, 1, first[kk], "first-k count for %v in %v", kk, sh)
			assert.Equal(t, 1, last[kk], "last-k count for %v in %v", kk, sh)
		}
	}
}

func TestTilesOutputOrder(t *testing.T) {
	tiles := Tiles(6, 3, 6, 3)
	require.Len(t, tiles, 4)
	var got [][2]int
	for _, tile := range tiles {
		got = append(got, [2]int{tile.OutputRow, tile.OutputCol})
	}
	assert.Equal(t, [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, got)
}
