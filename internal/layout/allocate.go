package layout

// Demand is one child's space requirement along the axis being allocated:
// a hard minimum and an optional maximum (HasMax false means unbounded).
type Demand struct {
	Weight int
	Min    int
	Max    int
	HasMax bool
}

// Allocate1D implements the three-pass linear allocator from spec.md §4.6
// for one row/column of children separated by sepWidth-wide gaps:
//
//	P1. Assign each child its min, subtracting min+sep from the available
//	    extent until exhausted.
//	P2. Walk again, giving each bounded child up to max-min while extent
//	    remains.
//	P3. Distribute remaining extent across unbounded children, weighted by
//	    Demand.Weight (equal shares when all weights match the default of
//	    1). Unlike a single one-shot division, each child's share is taken
//	    from the extent still remaining after its predecessors were paid,
//	    with its weight then removed from the pool — so the whole extent
//	    is consumed rather than leaving a fixed remainder idle on every
//	    unbounded child (spec.md §8 S4: two equal-weight children sharing
//	    23 units split 11/12, not 11/11-with-one-unused).
func Allocate1D(extent, sepWidth int, demands []Demand) []int {
	n := len(demands)
	sizes := make([]int, n)
	if n == 0 {
		return sizes
	}

	remaining := extent - sepWidth*(n-1)
	if remaining < 0 {
		remaining = 0
	}

	// P1
	for i, d := range demands {
		take := d.Min
		if take > remaining {
			take = remaining
		}
		sizes[i] = take
		remaining -= take
	}

	// P2
	for i, d := range demands {
		if !d.HasMax || remaining <= 0 {
			continue
		}
		extra := d.Max - d.Min
		if extra > remaining {
			extra = remaining
		}
		if extra > 0 {
			sizes[i] += extra
			remaining -= extra
		}
	}

	// P3
	if remaining > 0 {
		type unbounded struct {
			i int
			w int
		}
		var pool []unbounded
		totalWeight := 0
		for i, d := range demands {
			if !d.HasMax {
				w := d.Weight
				if w < 1 {
					w = 1
				}
				pool = append(pool, unbounded{i, w})
				totalWeight += w
			}
		}
		for _, u := range pool {
			if totalWeight <= 0 {
				break
			}
			share := remaining * u.w / totalWeight
			sizes[u.i] += share
			remaining -= share
			totalWeight -= u.w
		}
	}

	return sizes
}

// Rect is an axis-aligned screen region in cell coordinates.
type Rect struct {
	X, Y, W, H int
}

// DemandFunc supplies the space requirement for a leaf container along the
// axis currently being allocated (width for a '|' split's children, height
// for a '-' split's children).
type DemandFunc func(leaf Leaf, axis Axis) Demand

// Axis distinguishes horizontal (width) from vertical (height) allocation.
type Axis int

const (
	AxisWidth Axis = iota
	AxisHeight
)

// Compute walks the tree, assigning rect to n and recursively splitting it
// along each node's Sep among its children per Allocate1D, invoking visit
// for every leaf with its final rect. A '|' split (side-by-side children)
// uses hSepWidth between columns; a '-' split (stacked children) uses
// vSepWidth between rows — spec.md §8 S4 calls for a 2-wide column
// separator but only a 1-high row separator, so the two must be
// independently configurable rather than a single shared gap.
func Compute(n Node, rect Rect, hSepWidth, vSepWidth int, demandOf DemandFunc, visit func(Leaf, Rect)) {
	if n.IsLeaf {
		visit(n.Leaf, rect)
		return
	}

	axis := AxisWidth
	sepWidth := hSepWidth
	if n.Sep == SepVertical {
		axis = AxisHeight
		sepWidth = vSepWidth
	}

	demands := make([]Demand, len(n.Children))
	for i, c := range n.Children {
		demands[i] = Demand{Weight: childWeight(c), Min: 0, HasMax: false}
		if c.IsLeaf {
			demands[i] = demandOf(c.Leaf, axis)
			demands[i].Weight = childWeight(c)
		}
	}

	extent := rect.W
	if axis == AxisHeight {
		extent = rect.H
	}
	sizes := Allocate1D(extent, sepWidth, demands)

	offset := 0
	for i, c := range n.Children {
		var childRect Rect
		if axis == AxisWidth {
			childRect = Rect{X: rect.X + offset, Y: rect.Y, W: sizes[i], H: rect.H}
		} else {
			childRect = Rect{X: rect.X, Y: rect.Y + offset, W: rect.W, H: sizes[i]}
		}
		Compute(c, childRect, hSepWidth, vSepWidth, demandOf, visit)
		offset += sizes[i] + sepWidth
	}
}

func childWeight(n Node) int {
	if n.Weight < 1 {
		return 1
	}
	return n.Weight
}
