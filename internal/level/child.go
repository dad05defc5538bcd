package level

// LeafBit marks a raw BSP child index as a subsector. It exists only in raw
// level data; Decode turns it into a Child once at load time.
const LeafBit = 0x8000

// Child is a BSP child: either another node or a leaf (subsector).
type Child struct {
	leaf  bool
	index int
}

func NodeChild(node int) Child { return Child{index: node} }
func LeafChild(subsector int) Child { return Child{leaf: true, index: subsector} }

// DecodeChild interprets a raw child index carrying LeafBit.
func DecodeChild(raw int) Child {
	if raw&LeafBit != 0 {
		return LeafChild(raw &^ LeafBit)
	}
	return NodeChild(raw)
}

func (c Child) IsLeaf() bool { return c.leaf }
func (c Child) Index() int { return c.index }

// Raw encodes c back into a raw child index.
func (c Child) Raw() int {
	if c.leaf {
		return c.index | LeafBit
	}
	return c.index
}
