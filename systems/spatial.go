package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// maxReach caps the cell radius of a scan so the span arithmetic cannot
// overflow.
const maxReach = 1 << 16

// cellKey addresses one grid cell.
type cellKey struct {
	X, Y, Z int32
}

// SpatialGrid buckets snapshot indices into uniform 3D cells so neighbor
// scans touch only nearby members. The world is unbounded, so cells live in a
// map rather than a flat array. Rebuild it once per tick from the snapshot;
// Visit is read-only and safe for concurrent workers.
type SpatialGrid struct {
	cellSize  float32
	cells     map[cellKey][]int
	positions []mgl32.Vec3
}

// NewSpatialGrid creates a grid with the given cell size.
// A cell size equal to the perception radius keeps scans to 27 cells.
func NewSpatialGrid(cellSize float32) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

// Clear empties every cell. Buckets filled by the previous build keep their
// storage; cells that were already empty are dropped so the map tracks only
// where the flock has recently been.
func (g *SpatialGrid) Clear() {
	for k, bucket := range g.cells {
		if len(bucket) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = bucket[:0]
	}
	g.positions = g.positions[:0]
}

// Cells returns the number of cells the grid currently tracks.
func (g *SpatialGrid) Cells() int {
	return len(g.cells)
}

// Build clears the grid and inserts every member of the snapshot.
func (g *SpatialGrid) Build(members []Member) {
	g.Clear()
	for i := range members {
		g.Insert(i, members[i].Position)
	}
}

// Insert adds snapshot index i at pos.
func (g *SpatialGrid) Insert(i int, pos mgl32.Vec3) {
	k := g.keyOf(pos)
	g.cells[k] = append(g.cells[k], i)
	for len(g.positions) <= i {
		g.positions = append(g.positions, mgl32.Vec3{})
	}
	g.positions[i] = pos
}

// Visit calls fn for every indexed member other than i in the cells that
// overlap the radius around member i.
func (g *SpatialGrid) Visit(i int, radius float32, fn func(j int)) {
	if i < 0 || i >= len(g.positions) {
		return
	}
	center := g.keyOf(g.positions[i])
	reach := int32(min(float64(radius/g.cellSize), maxReach)) + 1

	// A radius spanning more cells than there are members would probe mostly
	// empty keys. Offering every member is cheaper then; the caller re-checks
	// distance anyway.
	span := int64(2*reach + 1)
	if span*span*span > int64(len(g.positions)) {
		for j := range g.positions {
			if j != i {
				fn(j)
			}
		}
		return
	}

	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := -reach; dz <= reach; dz++ {
				k := cellKey{center.X + dx, center.Y + dy, center.Z + dz}
				for _, j := range g.cells[k] {
					if j != i {
						fn(j)
					}
				}
			}
		}
	}
}

// keyOf returns the cell containing pos.
func (g *SpatialGrid) keyOf(pos mgl32.Vec3) cellKey {
	return cellKey{
		X: int32(math.Floor(float64(pos[0] / g.cellSize))),
		Y: int32(math.Floor(float64(pos[1] / g.cellSize))),
		Z: int32(math.Floor(float64(pos[2] / g.cellSize))),
	}
}
