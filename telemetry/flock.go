package telemetry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FlockSample is one flock's state at a window boundary.
type FlockSample struct {
	Positions  []mgl32.Vec3
	Velocities []mgl32.Vec3
	MinSpeed   float32
	MaxSpeed   float32
}

// FlockShape summarises a flock's geometry.
type FlockShape struct {
	Polarization float64
	Spread       float64
	NearestMean  float64
}

// speedSlack absorbs float32 rounding in the speed clamp.
const speedSlack = 1e-3

// Polarization is the length of the mean unit heading: 1 when every member
// moves the same way, near 0 for random headings. Stationary members count
// as zero vectors.
func Polarization(velocities []mgl32.Vec3) float64 {
	if len(velocities) == 0 {
		return 0
	}
	var sx, sy, sz float64
	for _, v := range velocities {
		l := float64(v.Len())
		if l == 0 {
			continue
		}
		sx += float64(v[0]) / l
		sy += float64(v[1]) / l
		sz += float64(v[2]) / l
	}
	n := float64(len(velocities))
	return math.Sqrt(sx*sx+sy*sy+sz*sz) / n
}

// Spread is the mean distance from the centroid.
func Spread(positions []mgl32.Vec3) float64 {
	if len(positions) == 0 {
		return 0
	}
	var c mgl32.Vec3
	for _, p := range positions {
		c = c.Add(p)
	}
	c = c.Mul(1 / float32(len(positions)))

	var sum float64
	for _, p := range positions {
		sum += float64(p.Sub(c).Len())
	}
	return sum / float64(len(positions))
}

// NearestMean is the mean distance from each member to its closest
// neighbor. O(N²); only sampled at window boundaries.
func NearestMean(positions []mgl32.Vec3) float64 {
	if len(positions) < 2 {
		return 0
	}
	var sum float64
	for i, p := range positions {
		best := float32(math.MaxFloat32)
		for j, q := range positions {
			if i == j {
				continue
			}
			if d := p.Sub(q).Len(); d < best {
				best = d
			}
		}
		sum += float64(best)
	}
	return sum / float64(len(positions))
}

// Shape computes the flock's geometry summary.
func (f *FlockSample) Shape() FlockShape {
	return FlockShape{
		Polarization: Polarization(f.Velocities),
		Spread:       Spread(f.Positions),
		NearestMean:  NearestMean(f.Positions),
	}
}

// SpeedViolations counts members whose speed left [MinSpeed, MaxSpeed].
func (f *FlockSample) SpeedViolations() int {
	n := 0
	for _, v := range f.Velocities {
		s := v.Len()
		if s < f.MinSpeed-speedSlack || s > f.MaxSpeed+speedSlack {
			n++
		}
	}
	return n
}
