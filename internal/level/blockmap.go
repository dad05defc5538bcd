package level

import "github.com/fixedtick/levelsim/internal/fixed"

// BlockUnits is the side of a blockmap cell in map units.
const BlockUnits = 128

const blockShift = fixed.FracBits + 7

// BlockMap buckets lines into a uniform grid so collision and use checks only
// visit nearby walls. Lines land in every cell their bounding box covers.
type BlockMap struct {
	originX, originY int64
	cols, rows       int
	cells            [][]int

	seen  []uint32
	stamp uint32
}

func newBlockMap(l *Level) *BlockMap {
	bm := &BlockMap{cols: 1, rows: 1, seen: make([]uint32, len(l.Lines))}
	if len(l.Vertices) == 0 {
		bm.cells = make([][]int, 1)
		return bm
	}

	minX, minY := int64(l.Vertices[0].X), int64(l.Vertices[0].Y)
	maxX, maxY := minX, minY
	for _, v := range l.Vertices[1:] {
		minX, maxX = min(minX, int64(v.X)), max(maxX, int64(v.X))
		minY, maxY = min(minY, int64(v.Y)), max(maxY, int64(v.Y))
	}
	bm.originX = minX - int64(fixed.FromInt(8))
	bm.originY = minY - int64(fixed.FromInt(8))
	bm.cols = int((maxX-bm.originX)>>blockShift) + 1
	bm.rows = int((maxY-bm.originY)>>blockShift) + 1
	bm.cells = make([][]int, bm.cols*bm.rows)

	for i := range l.Lines {
		x1, y1, x2, y2, ok := l.LineEnds(i)
		if !ok {
			continue
		}
		cx1, cx2 := bm.col(min(x1, x2)), bm.col(max(x1, x2))
		cy1, cy2 := bm.row(min(y1, y2)), bm.row(max(y1, y2))
		for cy := cy1; cy <= cy2; cy++ {
			for cx := cx1; cx <= cx2; cx++ {
				c := cy*bm.cols + cx
				bm.cells[c] = append(bm.cells[c], i)
			}
		}
	}
	return bm
}

func (bm *BlockMap) col(x fixed.Fixed) int {
	return clampCell(int((int64(x)-bm.originX)>>blockShift), bm.cols)
}

func (bm *BlockMap) row(y fixed.Fixed) int {
	return clampCell(int((int64(y)-bm.originY)>>blockShift), bm.rows)
}

func clampCell(c, n int) int {
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

func (bm *BlockMap) query(x1, y1, x2, y2 fixed.Fixed, fn func(int) bool) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	bm.stamp++
	if bm.stamp == 0 {
		clear(bm.seen)
		bm.stamp = 1
	}
	for cy := bm.row(y1); cy <= bm.row(y2); cy++ {
		for cx := bm.col(x1); cx <= bm.col(x2); cx++ {
			for _, line := range bm.cells[cy*bm.cols+cx] {
				if bm.seen[line] == bm.stamp {
					continue
				}
				bm.seen[line] = bm.stamp
				if !fn(line) {
					return
				}
			}
		}
	}
}
