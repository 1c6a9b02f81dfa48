package tiling

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns End - Start.
func (r Range) Len() int {
	return r.End - r.Start
}

// MatMulTile is one (output row tile, output col tile, k tile) partial
// product of a TiledMatMul.
type MatMulTile struct {
	OutputRow int
	OutputCol int
	KIndex    int

	ARows, ACols Range
	BRows, BCols Range

	IsFirstK bool
	IsLastK  bool
}

// ceilDiv returns ceil(a/b) for a >= 0, b > 0.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// TileCount is the number of partial products of an (m, k) x (k, n)
// product on an s-wide array.
func TileCount(m, k, n, s int) int {
	return ceilDiv(m, s) * ceilDiv(n, s) * ceilDiv(k, s)
}

// Tiles enumerates the partial products of an (m, k) x (k, n) product in
// i, j, kk order, kk innermost. All k tiles of one output tile are
// contiguous and strictly increasing, which the accumulation tags rely on.
func Tiles(m, k, n, s int) []MatMulTile {
	mTiles, nTiles, kTiles := ceilDiv(m, s), ceilDiv(n, s), ceilDiv(k, s)
	tiles := make([]MatMulTile, 0, mTiles*nTiles*kTiles)

	for i := range mTiles {
		rows := Range{i * s, min((i+1)*s, m)}
		for j := range nTiles {
			cols := Range{j * s, min((j+1)*s, n)}
			for kk := range kTiles {
				inner := Range{kk * s, min((kk+1)*s, k)}
				tiles = append(tiles, MatMulTile{
					OutputRow: i,
					OutputCol: j,
					KIndex:    kk,
					ARows:     rows,
					ACols:     inner,
					BRows:     inner,
					BCols:     cols,
					IsFirstK:  kk == 0,
					IsLastK:   kk == kTiles-1,
				})
			}
		}
	}
	return tiles
}
