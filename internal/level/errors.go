package level

import "fmt"

// RefKind names the reference that failed to resolve.
type RefKind uint8

const (
	RefVertex RefKind = iota
	RefLine
	RefSide
	RefSector
	RefSeg
	RefEmptySubSector
	RefNodeChild
	RefLeaf
	RefNodeDepth
)

func (k RefKind) String() string {
	switch k {
	case RefVertex:
		return "vertex"
	case RefLine:
		return "line"
	case RefSide:
		return "side"
	case RefSector:
		return "sector"
	case RefSeg:
		return "seg"
	case RefEmptySubSector:
		return "empty subsector"
	case RefNodeChild:
		return "node child"
	case RefLeaf:
		return "leaf"
	case RefNodeDepth:
		return "node depth"
	default:
		return "unknown"
	}
}

// RefError is a GeometryReferenceError: a piece of level data points at
// something that does not exist. It is reported on the diagnostic channel and
// the query that hit it returns a sentinel; it never aborts a tick.
type RefError struct {
	Kind  RefKind
	Index int // the referring element
	Ref   int // the bad reference
}

func (e *RefError) Error() string {
	return fmt.Sprintf("bad %s reference %d from element %d", e.Kind, e.Ref, e.Index)
}
