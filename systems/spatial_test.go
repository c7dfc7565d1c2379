package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSpatialGridFindsAllNeighbors(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	members := make([]Member, 200)
	for i := range members {
		// Straddle the origin so negative cells are exercised.
		members[i].Position = mgl32.Vec3{
			(rng.Float32() - 0.5) * 60,
			(rng.Float32() - 0.5) * 20,
			(rng.Float32() - 0.5) * 60,
		}
	}

	const radius = 8
	grid := NewSpatialGrid(radius)
	grid.Build(members)

	for i := range members {
		seen := make(map[int]bool)
		grid.Visit(i, radius, func(j int) {
			if j == i {
				t.Fatalf("member %d visited itself", i)
			}
			seen[j] = true
		})
		for j := range members {
			if j != i && distance(members[i].Position, members[j].Position) < radius && !seen[j] {
				t.Fatalf("member %d: neighbor %d within radius was not visited", i, j)
			}
		}
	}
}

func TestSpatialGridRebuildDropsStaleEntries(t *testing.T) {
	grid := NewSpatialGrid(5)
	grid.Build([]Member{{Position: mgl32.Vec3{0, 0, 0}}, {Position: mgl32.Vec3{1, 0, 0}}})
	grid.Build([]Member{{Position: mgl32.Vec3{0, 0, 0}}, {Position: mgl32.Vec3{100, 0, 0}}})

	count := 0
	grid.Visit(0, 5, func(int) { count++ })
	if count != 0 {
		t.Errorf("visited %d stale neighbors after rebuild", count)
	}
}

func TestSpatialGridTinyCellsStayBounded(t *testing.T) {
	members := []Member{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{3, 1, -2}},
		{Position: mgl32.Vec3{40, 0, 0}},
	}
	grid := NewSpatialGrid(0.1)
	grid.Build(members)

	// A radius of 100 cells would probe millions of keys; the grid offers
	// each other member once instead.
	var visited []int
	grid.Visit(0, 10, func(j int) { visited = append(visited, j) })
	if len(visited) != 2 || visited[0] != 1 || visited[1] != 2 {
		t.Errorf("visited %v, want [1 2]", visited)
	}

	params := skyRayParams()
	want := Step(members, &params, 0.016)
	got := make([]Result, len(members))
	StepRange(members, &params, 0.016, grid, 0, len(members), got)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member %d: grid %v, brute force %v", i, got[i], want[i])
		}
	}
}

func TestSpatialGridDropsAbandonedCells(t *testing.T) {
	grid := NewSpatialGrid(1)
	at := func(x float32) []Member {
		return []Member{{Position: mgl32.Vec3{x, 0, 0}}, {Position: mgl32.Vec3{x + 5, 0, 0}}}
	}

	// A wandering pair leaves cells behind; they are dropped once they have
	// stayed empty for a full rebuild.
	for x := float32(0); x < 1000; x += 10 {
		grid.Build(at(x))
	}
	if n := grid.Cells(); n > 4 {
		t.Errorf("grid tracks %d cells for 2 members, want at most 4", n)
	}
}

func TestStepWithGridMatchesBruteForce(t *testing.T) {
	params := skyRayParams()
	members := randomFlock(rand.New(rand.NewSource(5)), 60, 5)
	// Pack them tighter so most members have neighbors.
	for i := range members {
		members[i].Position = members[i].Position.Mul(0.3)
	}

	want := Step(members, &params, 0.016)

	grid := NewSpatialGrid(params.PerceptionRadius)
	grid.Build(members)
	got := make([]Result, len(members))
	StepRange(members, &params, 0.016, grid, 0, len(members), got)

	// Summation order differs, so compare with a tolerance.
	for i := range want {
		for axis := 0; axis < 3; axis++ {
			if math.Abs(float64(got[i].Velocity[axis]-want[i].Velocity[axis])) > 1e-4 {
				t.Fatalf("member %d: grid %v, brute force %v", i, got[i].Velocity, want[i].Velocity)
			}
		}
	}
}

func BenchmarkStepGrid500(b *testing.B) {
	params := skyRayParams()
	members := randomFlock(rand.New(rand.NewSource(1)), 500, 5)
	grid := NewSpatialGrid(params.PerceptionRadius)
	out := make([]Result, len(members))
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		grid.Build(members)
		StepRange(members, &params, 1.0/60.0, grid, 0, len(members), out)
	}
}
