// Package bsp answers point-location and leaf-visibility queries over a
// level's BSP tree.
package bsp

import (
	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/geom"
	"github.com/fixedtick/levelsim/internal/level"
)

// NoSector is returned when a leaf cannot be resolved to a sector.
const NoSector = -1

type Index struct {
	lvl    *level.Level
	root   level.Child
	owners []int
	log    *zap.Logger

	// per-query visit stamps; a node reached twice means a malformed tree
	seen  []uint32
	stamp uint32
}

// New builds the index and resolves every leaf's owning sector from its first
// seg. Unresolvable leaves map to NoSector.
func New(lvl *level.Level, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	ix := &Index{lvl: lvl, log: log, seen: make([]uint32, len(lvl.Nodes))}
	if len(lvl.Nodes) == 0 {
		ix.root = level.LeafChild(0)
	} else {
		ix.root = level.NodeChild(len(lvl.Nodes) - 1)
	}

	ix.owners = make([]int, len(lvl.SubSectors))
	for i := range lvl.SubSectors {
		ix.owners[i] = ix.resolveOwner(i)
	}
	return ix
}

func (ix *Index) resolveOwner(leaf int) int {
	ss := ix.lvl.SubSectors[leaf]
	if ss.NumSegs <= 0 {
		ix.warn(&level.RefError{Kind: level.RefEmptySubSector, Index: leaf, Ref: ss.FirstSeg})
		return NoSector
	}
	if ss.FirstSeg < 0 || ss.FirstSeg >= len(ix.lvl.Segs) {
		ix.warn(&level.RefError{Kind: level.RefSeg, Index: leaf, Ref: ss.FirstSeg})
		return NoSector
	}
	seg := ix.lvl.Segs[ss.FirstSeg]
	return ix.lvl.SideSector(seg.Line, seg.Side)
}

func (ix *Index) warn(err *level.RefError) {
	ix.log.Warn("bsp reference", zap.Error(err))
}

// OwnerSector returns the sector a leaf belongs to, or NoSector.
func (ix *Index) OwnerSector(leaf int) int {
	if leaf < 0 || leaf >= len(ix.owners) {
		return NoSector
	}
	return ix.owners[leaf]
}

// side picks the child a point falls on: cross <= 0 is side 0.
func side(n *level.Node, x, y fixed.Fixed) int {
	if geom.Side(x, y, n.X, n.Y, n.DX, n.DY) <= 0 {
		return 0
	}
	return 1
}

// node resolves an internal child, reporting bad indexes.
func (ix *Index) node(c level.Child, parent int) (*level.Node, bool) {
	if c.Index() < 0 || c.Index() >= len(ix.lvl.Nodes) {
		ix.warn(&level.RefError{Kind: level.RefNodeChild, Index: parent, Ref: c.Index()})
		return nil, false
	}
	return &ix.lvl.Nodes[c.Index()], true
}

func (ix *Index) leaf(c level.Child, parent int) (int, bool) {
	if c.Index() < 0 || c.Index() >= len(ix.lvl.SubSectors) {
		ix.warn(&level.RefError{Kind: level.RefLeaf, Index: parent, Ref: c.Index()})
		return 0, false
	}
	return c.Index(), true
}

// LeafAt descends only the near side and returns the leaf containing (x,y),
// or -1 when the tree is broken along that path.
func (ix *Index) LeafAt(x, y fixed.Fixed) int {
	if len(ix.lvl.Nodes) == 0 {
		if len(ix.lvl.SubSectors) == 0 {
			return -1
		}
		return 0
	}
	c, parent := ix.root, -1
	for depth := 0; ; depth++ {
		if c.IsLeaf() {
			leaf, ok := ix.leaf(c, parent)
			if !ok {
				return -1
			}
			return leaf
		}
		if depth > len(ix.lvl.Nodes) {
			ix.warn(&level.RefError{Kind: level.RefNodeDepth, Index: parent, Ref: c.Index()})
			return -1
		}
		n, ok := ix.node(c, parent)
		if !ok {
			return -1
		}
		parent = c.Index()
		c = n.Children[side(n, x, y)]
	}
}

// SectorAt is OwnerSector(LeafAt(x, y)).
func (ix *Index) SectorAt(x, y fixed.Fixed) int {
	return ix.OwnerSector(ix.LeafAt(x, y))
}

// VisibleLeaves walks the whole tree from (x,y), near child before far child,
// and returns the leaves in that front-to-back order. No occlusion is done:
// every reachable leaf is listed exactly once. A broken branch is reported and
// skipped.
func (ix *Index) VisibleLeaves(x, y fixed.Fixed) []int {
	if len(ix.lvl.Nodes) == 0 {
		out := make([]int, len(ix.lvl.SubSectors))
		for i := range out {
			out[i] = i
		}
		return out
	}
	ix.stamp++
	if ix.stamp == 0 {
		clear(ix.seen)
		ix.stamp = 1
	}
	out := make([]int, 0, len(ix.lvl.SubSectors))
	ix.visit(ix.root, -1, x, y, &out)
	return out
}

func (ix *Index) visit(c level.Child, parent int, x, y fixed.Fixed, out *[]int) {
	if c.IsLeaf() {
		if leaf, ok := ix.leaf(c, parent); ok {
			*out = append(*out, leaf)
		}
		return
	}
	n, ok := ix.node(c, parent)
	if !ok {
		return
	}
	if ix.seen[c.Index()] == ix.stamp {
		ix.warn(&level.RefError{Kind: level.RefNodeDepth, Index: parent, Ref: c.Index()})
		return
	}
	ix.seen[c.Index()] = ix.stamp
	near := side(n, x, y)
	ix.visit(n.Children[near], c.Index(), x, y, out)
	ix.visit(n.Children[near^1], c.Index(), x, y, out)
}
