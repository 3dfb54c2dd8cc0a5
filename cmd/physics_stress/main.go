// Stress test comparing broad-phase methods, then timing full physics ticks
// on a pile of falling bodies.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"rigid3d/internal/collision"
	"rigid3d/internal/components"
	"rigid3d/internal/compute"
	"rigid3d/internal/engine"
	"rigid3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	counts     = flag.String("counts", "100,500,1000,2000,5000,10000", "Comma separated object counts for the broad-phase test")
	iterations = flag.Int("iterations", 10, "Timed runs per method")
	bodies     = flag.Int("bodies", 500, "Bodies dropped in the tick test (0 skips it)")
	steps      = flag.Int("steps", 300, "Ticks to run in the tick test")
	method     = flag.String("broadphase", physics.BroadPhaseSAP, "CPU broad phase for the tick test: sap|hash|brute")
	gpu        = flag.Bool("gpu", true, "Try the GPU broad phase")
	seed       = flag.Int64("seed", 42, "Random seed")
)

func main() {
	flag.Parse()

	useGPU := false
	if *gpu {
		info, err := compute.Initialize()
		if err != nil {
			fmt.Printf("GPU: unavailable (%v)\n\n", err)
		} else {
			fmt.Printf("GPU: %s | %s | %s\n\n", info.Backend, info.Vendor, info.Name)
			useGPU = true
		}
	}

	for _, field := range strings.Split(*counts, ",") {
		count, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || count <= 0 {
			log.Fatalf("bad count %q", field)
		}
		testBroadPhase(count, useGPU)
	}

	if *bodies > 0 {
		fmt.Println()
		testTicks(*bodies, *steps, useGPU)
	}
}

func randomEntries(rng *rand.Rand, count int) []collision.Entry {
	// Spawn in a cube, size scales with count to keep density reasonable
	spawnSize := float32(50.0) + float32(count)/100.0

	entries := make([]collision.Entry, count)
	for i := range entries {
		center := rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: rng.Float32()*spawnSize - spawnSize/2,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
		half := 0.5 + rng.Float32()*0.5 // 0.5 to 1.0 half extent
		entries[i] = collision.Entry{
			Entity: uint64(i + 1),
			Box:    collision.NewAABBFromCenter(center, rl.Vector3{X: half, Y: half, Z: half}),
		}
	}
	return entries
}

func timeMethod(fn func() int) (time.Duration, int) {
	fn() // warm up
	var pairs int
	start := time.Now()
	for i := 0; i < *iterations; i++ {
		pairs = fn()
	}
	return time.Since(start) / time.Duration(*iterations), pairs
}

func testBroadPhase(count int, useGPU bool) {
	entries := randomEntries(rand.New(rand.NewSource(*seed)), count)

	sapTime, sapPairs := timeMethod(func() int { return len(collision.SweepAndPrune(entries)) })
	hashTime, hashPairs := timeMethod(func() int { return len(collision.SpatialHashPairs(entries, 2)) })

	line := fmt.Sprintf("%5d objects: SAP %9v (%5d pairs) | hash %9v (%5d pairs)",
		count, sapTime.Round(time.Microsecond), sapPairs, hashTime.Round(time.Microsecond), hashPairs)

	// O(n²) gets slow fast
	if count <= 5000 {
		bruteTime, brutePairs := timeMethod(func() int { return len(collision.BruteForcePairs(entries)) })
		line += fmt.Sprintf(" | brute %10v (%5d pairs)", bruteTime.Round(time.Microsecond), brutePairs)
	}

	if useGPU {
		line += gpuColumn(entries, sapTime)
	}
	fmt.Println(line)
}

func gpuColumn(entries []collision.Entry, cpuTime time.Duration) string {
	bp, err := compute.NewBroadPhase(uint32(len(entries)), uint32(len(entries)*20))
	if err != nil || bp == nil {
		return fmt.Sprintf(" | GPU ERROR: %v", err)
	}
	defer bp.Release()

	boxes := make([]compute.Box, len(entries))
	for i, e := range entries {
		boxes[i] = compute.NewBox(e.Box.Min.X, e.Box.Min.Y, e.Box.Min.Z, e.Box.Max.X, e.Box.Max.Y, e.Box.Max.Z)
	}

	var detectErr error
	gpuTime, gpuPairs := timeMethod(func() int {
		pairs, err := bp.DetectPairs(boxes)
		if err != nil {
			detectErr = err
		}
		return len(pairs)
	})
	if detectErr != nil {
		return fmt.Sprintf(" | GPU ERROR: %v", detectErr)
	}
	speedup := float64(cpuTime) / float64(gpuTime)
	return fmt.Sprintf(" | GPU %9v (%5d pairs) %.1fx vs SAP", gpuTime.Round(time.Microsecond), gpuPairs, speedup)
}

// testTicks drops count bodies onto a floor and reports per-tick cost and
// solver effort.
func testTicks(count, steps int, useGPU bool) {
	rng := rand.New(rand.NewSource(*seed))
	scene := engine.NewScene("Stress")

	floor := engine.NewGameObject("Floor")
	floor.Transform.Position = rl.Vector3{Y: -0.5}
	floor.AddComponent(components.NewBoxCollider(rl.Vector3{X: 200, Y: 1, Z: 200}))
	scene.AddGameObject(floor)

	side := int(float32(count)/10) + 1
	for i := 0; i < count; i++ {
		g := engine.NewGameObject(fmt.Sprintf("Body%d", i))
		g.Transform.Position = rl.Vector3{
			X: float32(i%side)*1.5 - float32(side)*0.75,
			Y: 1 + float32(i/side)*1.5,
			Z: rng.Float32()*4 - 2,
		}
		if i%2 == 0 {
			g.AddComponent(components.NewSphereCollider(0.5))
		} else {
			g.AddComponent(components.NewBoxCollider(rl.Vector3{X: 1, Y: 1, Z: 1}))
		}
		g.AddComponent(components.NewRigidbody())
		scene.AddGameObject(g)
	}

	cfg := physics.DefaultConfig()
	cfg.BroadPhase = *method
	cfg.GPUBroadPhase = useGPU
	world := physics.NewWorld(scene, cfg)
	if useGPU {
		world.InitGPU()
		defer world.Release()
	}

	var total time.Duration
	var worst time.Duration
	var iters, maxContacts int
	for i := 0; i < steps; i++ {
		start := time.Now()
		stats := world.Step(cfg.FixedTimestep)
		elapsed := time.Since(start)
		total += elapsed
		if elapsed > worst {
			worst = elapsed
		}
		iters += stats.Iterations
		if n := world.ContactCount(); n > maxContacts {
			maxContacts = n
		}
	}

	mode := "CPU " + *method
	if world.UsingGPU() {
		mode = "GPU"
	}
	avg := total / time.Duration(steps)
	fmt.Printf("%d bodies, %d ticks (%s): avg %v, worst %v, %.1f iterations/tick, peak %d contacts\n",
		count, steps, mode, avg.Round(time.Microsecond), worst.Round(time.Microsecond),
		float64(iters)/float64(steps), maxContacts)
}
