// Package octree builds the magnitude-ordered, level-of-detail spatial
// tree: a cubical decomposition of the catalog's bounding box with
// deterministic octant addressing, per-octant capacity, empty-node
// collapse and an optional low-occupancy postprocess merge.
//
// Octants are held in a flat arena (nodes) with a separate id->index
// map (nodesIdx), mirroring the original generator's "interior
// mutability of a RefCell<Vec<Octant>> plus a RefCell<HashMap>" design
// through plain Go slices/maps behind the single-threaded Octree
// builder — an arena of indices standing in for ids-not-pointers.
package octree

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/starforge-tools/catgen/internal/catlog"
	"github.com/starforge-tools/catgen/internal/errs"
	"github.com/starforge-tools/catgen/internal/particle"
	"github.com/starforge-tools/catgen/internal/units"
	"github.com/starforge-tools/catgen/internal/vecmath"
)

// noChild marks an empty child slot.
const noChild = -1

// Octant is one cube in the tree. Objects holds indices into the
// catalog list passed to Generate, not Particle pointers, so the
// octree never owns particle data.
type Octant struct {
	ID     int64
	Min    vecmath.Vec3
	Max    vecmath.Vec3
	Centre vecmath.Vec3
	Size   vecmath.Vec3
	Level  int

	HasParent bool
	ParentID  int64
	Children  [8]int64

	Objects []int

	NumObjects     int
	NumObjectsRec  int
	NumChildren    int
	NumChildrenRec int

	Deleted bool
}

// HasKids reports whether o has at least one non-empty child slot.
func (o *Octant) HasKids() bool {
	for _, c := range o.Children {
		if c != noChild {
			return true
		}
	}

	return false
}

// Octree is the builder and the final tree: nodes in insertion order,
// keyed by id through nodesIdx.
type Octree struct {
	MaxPart      int
	Postprocess  bool
	ChildCount   int
	ParentCount  int
	DistPcCap    float64
	CentreOrigin bool

	nodes    []*Octant
	nodesIdx map[int64]int

	log *catlog.Logger
}

// New creates an empty Octree with the given build parameters. log may
// be nil to disable progress logging.
func New(maxPart int, postprocess bool, childCount, parentCount int, distPcCap float64, centreOrigin bool, log *catlog.Logger) *Octree {
	return &Octree{
		MaxPart:      maxPart,
		Postprocess:  postprocess,
		ChildCount:   childCount,
		ParentCount:  parentCount,
		DistPcCap:    distPcCap,
		CentreOrigin: centreOrigin,
		log:          log,
	}
}

// Nodes returns the tree's arena in insertion order. Callers must treat
// this as read-only; deleted nodes remain present with Deleted set.
func (t *Octree) Nodes() []*Octant {
	return t.nodes
}

// NodeByID returns the octant with the given id, if present.
func (t *Octree) NodeByID(id int64) (*Octant, bool) {
	idx, ok := t.nodesIdx[id]
	if !ok {
		return nil, false
	}

	return t.nodes[idx], true
}

func (t *Octree) logf(format string, args ...any) {
	if t.log != nil {
		t.log.Debugf(format, args...)
	}
}

func (t *Octree) warnf(format string, args ...any) {
	if t.log != nil {
		t.log.Warnf(format, args...)
	}
}

// Generate builds the tree from list, inserting stars in ascending
// absolute magnitude order (brightest first; equal-magnitude stars
// retain relative order) through a sorted index permutation; list itself
// is not reordered, and octant Objects hold indices into it. Returns the
// final node count, the number of stars actually placed, and the deepest
// level reached.
func (t *Octree) Generate(list []*particle.Particle) (nodeCount, starCount, depth int, err error) {
	t.logf("starting octree generation over %d stars", len(list))

	t.setupRoot(list)

	order := make([]int, len(list))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return list[order[i]].AbsMag < list[order[j]].AbsMag
	})

	nodeCount = 1
	idx := 0
	n := len(order)

	for level := 0; level <= units.MaxOctreeDepth; level++ {
		t.logf("generating level %d (%d stars left)", level, n-idx)

		for idx < n {
			star := list[order[idx]]
			pos := star.Position()

			distPc := pos.Len() * units.UToPc
			if distPc > t.DistPcCap {
				idx++
				continue
			}

			id, ok := t.positionOctantID(pos.X, pos.Y, pos.Z, level)
			if !ok {
				idx++
				continue
			}

			octIdx, existed := t.nodesIdx[id]
			if !existed {
				var created int
				octIdx, created, err = t.createOctant(pos.X, pos.Y, pos.Z, level)
				if err != nil {
					return 0, 0, 0, err
				}
				nodeCount += created
			}

			oct := t.nodes[octIdx]
			oct.Objects = append(oct.Objects, order[idx])

			if level > depth {
				depth = level
			}
			starCount++
			idx++

			if len(oct.Objects) >= t.MaxPart {
				break
			}
		}

		if idx >= n {
			break
		}
	}

	if depth == units.MaxOctreeDepth && idx < n {
		t.warnf("maximum depth %d reached with %d stars left unplaced", depth, n-idx)
	}

	t.computeNumbers(t.nodesIdx[0])

	merged, mergedObjs := t.collapseEmptyParents(depth)
	t.logf("collapsed %d empty-parent nodes, floated %d objects", merged, mergedObjs)
	nodeCount -= merged
	t.computeNumbers(t.nodesIdx[0])

	if t.Postprocess {
		pmerged, pmergedObjs := t.postprocessMerge(depth)
		t.logf("postprocess merged %d nodes, %d objects (child_count=%d parent_count=%d)",
			pmerged, pmergedObjs, t.ChildCount, t.ParentCount)
		nodeCount -= pmerged
		t.computeNumbers(t.nodesIdx[0])
	}

	return nodeCount, starCount, depth, nil
}

func (t *Octree) setupRoot(list []*particle.Particle) {
	points := make([]vecmath.Vec3, len(list))
	for i, p := range list {
		points[i] = p.Position()
	}
	bbox := vecmath.BoundingBoxOf(points)

	size := math.Max(bbox.Dim.X, math.Max(bbox.Dim.Y, bbox.Dim.Z))
	half := size / 2.0

	min := vecmath.Vec3{X: bbox.Centre.X - half, Y: bbox.Centre.Y - half, Z: bbox.Centre.Z - half}
	max := vecmath.Vec3{X: bbox.Centre.X + half, Y: bbox.Centre.Y + half, Z: bbox.Centre.Z + half}

	if t.CentreOrigin {
		g := vecmath.Vec3{
			X: math.Max(math.Abs(bbox.Min.X), math.Abs(bbox.Max.X)),
			Y: math.Max(math.Abs(bbox.Min.Y), math.Abs(bbox.Max.Y)),
			Z: math.Max(math.Abs(bbox.Min.Z), math.Abs(bbox.Max.Z)),
		}
		min = vecmath.Vec3{X: -g.X, Y: -g.Y, Z: -g.Z}
		max = vecmath.Vec3{X: g.X + 4, Y: g.Y + 4, Z: g.Z + 4}
	}

	root := &Octant{
		ID:       0,
		Min:      min,
		Max:      max,
		Centre:   vecmath.Vec3{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2, Z: (min.Z + max.Z) / 2},
		Size:     vecmath.Vec3{X: max.X - min.X, Y: max.Y - min.Y, Z: max.Z - min.Z},
		Level:    0,
		Children: [8]int64{noChild, noChild, noChild, noChild, noChild, noChild, noChild, noChild},
	}

	t.nodes = []*Octant{root}
	t.nodesIdx = map[int64]int{0: 0}

	vol := math.Pow(size*units.UToPc, 3)
	t.logf("root node min=%v max=%v centre=%v volume=%.3e pc^3", root.Min, root.Max, root.Centre, vol)
}

// childPlacement returns the 0..7 child index for (x,y,z) within a cube
// whose minimum corner is min and half-size is hs, along with that
// child's own minimum corner. Axis ties (<=) resolve to the lower index.
func childPlacement(x, y, z float64, min vecmath.Vec3, hs float64) (idx int, childMin vecmath.Vec3) {
	bx, by, bz := 0, 0, 0
	nx, ny, nz := min.X, min.Y, min.Z

	if x > min.X+hs {
		bx = 1
		nx = min.X + hs
	}
	if y > min.Y+hs {
		by = 1
		ny = min.Y + hs
	}
	if z > min.Z+hs {
		bz = 1
		nz = min.Z + hs
	}

	return bx*4 + by*2 + bz, vecmath.Vec3{X: nx, Y: ny, Z: nz}
}

// positionOctantID returns the canonical id for (x,y,z) at level, and
// false if the point lies outside the root cube.
func (t *Octree) positionOctantID(x, y, z float64, level int) (int64, bool) {
	root := t.nodes[t.nodesIdx[0]]
	if x < root.Min.X || x > root.Max.X || y < root.Min.Y || y > root.Max.Y || z < root.Min.Z || z > root.Max.Z {
		return 0, false
	}
	if level == 0 {
		return 0, true
	}

	min := root.Min
	hs := root.Size.X / 2.0
	var id int64 = 1

	for l := 1; l <= level; l++ {
		childIdx, childMin := childPlacement(x, y, z, min, hs)
		id = id*8 + int64(childIdx)
		min = childMin
		hs /= 2.0
	}

	return id, true
}

// createOctant walks from the root to level, creating every missing
// ancestor octant along the path to (x,y,z), and returns the arena
// index of the level-ℓ octant plus the number of octants newly created.
func (t *Octree) createOctant(x, y, z float64, level int) (leafIdx, created int, err error) {
	parentIdx := t.nodesIdx[0]
	min := t.nodes[parentIdx].Min
	hs := t.nodes[parentIdx].Size.X / 2.0
	var id int64 = 1

	for l := 1; l <= level; l++ {
		childIdx, childMin := childPlacement(x, y, z, min, hs)
		id = id*8 + int64(childIdx)

		if existing, ok := t.nodesIdx[id]; ok {
			parentIdx = existing
		} else {
			parent := t.nodes[parentIdx]
			if parent.Children[childIdx] != noChild {
				return 0, 0, fmt.Errorf("octree: octant %d already linked at child slot %d: %w", id, childIdx, errs.ErrOctantExists)
			}

			newOct := &Octant{
				ID:        id,
				Min:       childMin,
				Max:       vecmath.Vec3{X: childMin.X + hs, Y: childMin.Y + hs, Z: childMin.Z + hs},
				Centre:    vecmath.Vec3{X: childMin.X + hs/2, Y: childMin.Y + hs/2, Z: childMin.Z + hs/2},
				Size:      vecmath.Vec3{X: hs, Y: hs, Z: hs},
				Level:     l,
				HasParent: true,
				ParentID:  parent.ID,
				Children:  [8]int64{noChild, noChild, noChild, noChild, noChild, noChild, noChild, noChild},
			}

			newIdx := len(t.nodes)
			t.nodes = append(t.nodes, newOct)
			t.nodesIdx[id] = newIdx
			parent.Children[childIdx] = id

			parentIdx = newIdx
			created++
		}

		min = childMin
		hs /= 2.0
	}

	return parentIdx, created, nil
}

// computeNumbers recursively fills NumObjects, NumObjectsRec,
// NumChildren and NumChildrenRec for the subtree rooted at idx,
// skipping deleted nodes.
func (t *Octree) computeNumbers(idx int) (objRec, childRec int) {
	oct := t.nodes[idx]
	if oct.Deleted {
		return 0, 0
	}

	oct.NumObjects = len(oct.Objects)
	objRec = oct.NumObjects

	numChildren := 0
	for _, cid := range oct.Children {
		if cid == noChild {
			continue
		}
		cIdx, ok := t.nodesIdx[cid]
		if !ok || t.nodes[cIdx].Deleted {
			continue
		}
		numChildren++

		subObj, subChild := t.computeNumbers(cIdx)
		objRec += subObj
		childRec += subChild
	}

	oct.NumChildren = numChildren
	childRec += numChildren
	oct.NumObjectsRec = objRec
	oct.NumChildrenRec = childRec

	return objRec, childRec
}

// collapseEmptyParents floats a childless leaf's objects into its
// parent, and deletes the leaf, whenever the parent has zero own
// objects. Traverses from the deepest level to the root; the root
// itself is never collapsed (it has no parent) but may still receive
// floated objects as a parent.
func (t *Octree) collapseEmptyParents(maxLevel int) (merged, mergedObjects int) {
	return t.mergeSweep(maxLevel, func(leaf, parent *Octant) bool {
		return len(parent.Objects) == 0
	})
}

// postprocessMerge applies the same traversal as collapseEmptyParents,
// but merges a childless leaf into its parent whenever the leaf's own
// object count is within ChildCount and the parent's is within
// ParentCount.
func (t *Octree) postprocessMerge(maxLevel int) (merged, mergedObjects int) {
	return t.mergeSweep(maxLevel, func(leaf, parent *Octant) bool {
		return len(leaf.Objects) <= t.ChildCount && len(parent.Objects) <= t.ParentCount
	})
}

func (t *Octree) mergeSweep(maxLevel int, shouldMerge func(leaf, parent *Octant) bool) (merged, mergedObjects int) {
	for level := maxLevel; level >= 0; level-- {
		for _, oct := range t.nodes {
			if oct.Deleted || oct.HasKids() || oct.Level != level || !oct.HasParent {
				continue
			}

			parentIdx, ok := t.nodesIdx[oct.ParentID]
			if !ok {
				continue
			}
			parent := t.nodes[parentIdx]

			if !shouldMerge(oct, parent) {
				continue
			}

			parent.Objects = append(parent.Objects, oct.Objects...)
			mergedObjects += len(oct.Objects)
			oct.Objects = nil

			for i, cid := range parent.Children {
				if cid == oct.ID {
					parent.Children[i] = noChild

					break
				}
			}

			oct.Deleted = true
			merged++
		}
	}

	return merged, mergedObjects
}

// DebugString renders a human-readable, indented dump of the tree
// starting at the root, for --printtree diagnostics.
func (t *Octree) DebugString() string {
	var sb strings.Builder
	if len(t.nodes) > 0 {
		t.debugNode(&sb, t.nodesIdx[0], 0)
	}

	return sb.String()
}

func (t *Octree) debugNode(sb *strings.Builder, idx, depth int) {
	oct := t.nodes[idx]
	if oct.Deleted {
		return
	}

	fmt.Fprintf(sb, "%s[%d] level=%d objects=%d(own) %d(rec) children=%d(own) %d(rec)\n",
		strings.Repeat("  ", depth), oct.ID, oct.Level, oct.NumObjects, oct.NumObjectsRec, oct.NumChildren, oct.NumChildrenRec)

	for _, cid := range oct.Children {
		if cid == noChild {
			continue
		}
		if cIdx, ok := t.nodesIdx[cid]; ok {
			t.debugNode(sb, cIdx, depth+1)
		}
	}
}
