package game

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/diorama/systems"
)

// flockBuffer is one flock's tick-start snapshot and computed results.
// results[i] belongs to entities[i].
type flockBuffer struct {
	entities []ecs.Entity
	members  []systems.Member
	results  []systems.Result
}

// workChunk represents a range of one flock's members for a worker.
type workChunk struct {
	flock      int
	start, end int
	dt         float32
}

// parallelState holds resources for the snapshot-then-commit flock step.
type parallelState struct {
	buffers    []flockBuffer
	threshold  int
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newParallelState splits flocks of at least threshold members across the
// worker pool. Smaller flocks run single-threaded, where goroutine overhead
// would dominate. Config validation keeps threshold >= 0.
func newParallelState(threshold int) *parallelState {
	return &parallelState{
		threshold:  threshold,
		numWorkers: runtime.GOMAXPROCS(0),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.computeChunk(chunk)
			p.doneChan <- struct{}{}
		}
	}
}

// snapshotFlocks copies every member into its flock's buffer.
// Nothing reads live components again until applyIntents.
func (g *Game) snapshotFlocks() {
	p := g.parallel
	for len(p.buffers) < len(g.flocks) {
		p.buffers = append(p.buffers, flockBuffer{})
	}
	for i := range p.buffers {
		p.buffers[i].entities = p.buffers[i].entities[:0]
		p.buffers[i].members = p.buffers[i].members[:0]
	}

	query := g.boidFilter.Query()
	for query.Next() {
		pose, boid, _, _ := query.Get()
		b := &p.buffers[boid.Flock]
		b.entities = append(b.entities, query.Entity())
		b.members = append(b.members, systems.Member{
			Position: pose.Position,
			Velocity: boid.Velocity,
			Species:  boid.Species,
		})
	}
}

// computeFlocks fills every buffer's results from its snapshot.
func (g *Game) computeFlocks(dt float32) {
	p := g.parallel
	for fi := range g.flocks {
		b := &p.buffers[fi]
		n := len(b.members)
		if n == 0 {
			continue
		}

		if cap(b.results) < n {
			b.results = make([]systems.Result, n)
		}
		b.results = b.results[:n]

		if grid := g.flocks[fi].grid; grid != nil {
			grid.Build(b.members)
		}

		if n < p.threshold {
			g.computeChunk(workChunk{flock: fi, start: 0, end: n, dt: dt})
		} else {
			g.computeParallel(fi, n, dt)
		}
	}
}

// computeParallel dispatches one flock's members to the worker pool.
func (g *Game) computeParallel(fi, n int, dt float32) {
	p := g.parallel
	if !p.running {
		p.startWorkers(g)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		p.workChan <- workChunk{flock: fi, start: start, end: end, dt: dt}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// computeChunk steps a range of one flock's members.
// It reads only the snapshot, so disjoint chunks can run concurrently.
func (g *Game) computeChunk(c workChunk) {
	f := &g.flocks[c.flock]
	b := &g.parallel.buffers[c.flock]

	var nb systems.Neighborhood
	if f.grid != nil {
		nb = f.grid
	}
	systems.StepRange(b.members, &f.params, c.dt, nb, c.start, c.end, b.results)
}

// applyIntents writes computed results back to ECS components.
func (g *Game) applyIntents() {
	p := g.parallel
	for fi := range g.flocks {
		b := &p.buffers[fi]
		for i, e := range b.entities {
			r := b.results[i]
			pose := g.poseMap.Get(e)
			boid := g.boidMap.Get(e)

			pose.Position = r.Position
			pose.Rotation = systems.Facing(r.Velocity)
			boid.Velocity = r.Velocity
		}
	}
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
