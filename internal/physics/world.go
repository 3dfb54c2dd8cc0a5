package physics

import (
	"log"
	"sync"
	"time"

	"rigid3d/internal/collision"
	"rigid3d/internal/components"
	"rigid3d/internal/compute"
	"rigid3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUBroadPhaseThreshold is the minimum collider count before the GPU broad
// phase kicks in. Below this the CPU sweep is faster due to GPU overhead.
const GPUBroadPhaseThreshold = 750

// MaxPhysicsObjects is the most colliders the GPU broad phase can handle.
const MaxPhysicsObjects = 50000

// World steps the rigidbodies of a scene. Bodies and colliders are gathered
// from the scene at the start of every tick and written back at the end;
// only warm-start state, joints and the committed snapshot persist.
type World struct {
	Config Config

	OnCollisionEnter engine.EventWithArg[CollisionEvent]
	OnCollisionExit  engine.EventWithArg[CollisionEvent]

	mu          sync.RWMutex
	scene       *engine.Scene
	onRemoveID  engine.ListenerID
	solver      *Solver
	accumulator *Accumulator
	handles     *HandleMap
	commands    CommandQueue
	tracker     *contactTracker

	warm   map[contactKey]ConstraintData
	joints map[uint64]*jointState // by owning entity

	// Committed after each tick
	previous  map[uint64]BodyState
	current   map[uint64]BodyState
	colliders []Collider
	stats     SolveStats
	contacts  []collision.Contact
	ticks     uint64

	gpuBroadPhase   *compute.BroadPhase
	useGPU          bool
	lastLoggedCount int
	lastLogTime     time.Time
}

type jointState struct {
	connected uint64
	joint     *BallJoint
}

// NewWorld creates a world for scene. An invalid cfg is replaced by the
// defaults.
func NewWorld(scene *engine.Scene, cfg Config) *World {
	if err := cfg.Validate(); err != nil {
		log.Printf("Physics: %v, using defaults", err)
		cfg = DefaultConfig()
	}
	w := &World{
		Config:      cfg,
		solver:      NewSolver(cfg.SolverParams(), cfg.ConvergenceTolerance),
		accumulator: NewAccumulator(cfg.FixedTimestep),
		handles:     NewHandleMap(),
		tracker:     newContactTracker(),
		warm:        make(map[contactKey]ConstraintData),
		joints:      make(map[uint64]*jointState),
		previous:    make(map[uint64]BodyState),
		current:     make(map[uint64]BodyState),
	}
	w.Attach(scene)
	return w
}

var _ engine.WorldAccess = (*World)(nil)

// Attach switches the world to scene and listens for its despawns. The
// previous scene's listener is removed; warm-start state is dropped when the
// scene changes.
func (w *World) Attach(scene *engine.Scene) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.scene != nil {
		w.scene.OnRemove.RemoveListener(w.onRemoveID)
		w.onRemoveID = 0
	}
	if w.scene != scene {
		w.warm = make(map[contactKey]ConstraintData)
		w.joints = make(map[uint64]*jointState)
	}
	w.scene = scene
	if scene != nil {
		w.onRemoveID = scene.OnRemove.AddListener(w.onRemove)
	}
}

// InitGPU enables the GPU broad phase. Call after compute.Initialize().
func (w *World) InitGPU() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gpuBroadPhase != nil {
		return
	}
	bp, err := compute.NewBroadPhase(MaxPhysicsObjects, MaxPhysicsObjects*20)
	if err != nil {
		log.Printf("Physics: GPU broad-phase unavailable: %v", err)
		return
	}
	if bp != nil {
		w.gpuBroadPhase = bp
		log.Printf("Physics: GPU broad-phase ready (threshold: %d colliders)", GPUBroadPhaseThreshold)
	}
}

// Release frees GPU resources.
func (w *World) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gpuBroadPhase != nil {
		w.gpuBroadPhase.Release()
		w.gpuBroadPhase = nil
	}
}

// UsingGPU reports whether the last tick used the GPU broad phase.
func (w *World) UsingGPU() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useGPU
}

// LastStats reports how the solver did in the last tick.
func (w *World) LastStats() SolveStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// ContactCount is the number of contact points solved in the last tick.
func (w *World) ContactCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.contacts)
}

// Contacts returns the contact points solved in the last tick, as detected
// before the solve.
func (w *World) Contacts() []collision.Contact {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]collision.Contact(nil), w.contacts...)
}

// Ticks is the number of fixed ticks stepped so far.
func (w *World) Ticks() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ticks
}

// Handles is the entity to body handle map.
func (w *World) Handles() *HandleMap {
	return w.handles
}

// Accumulator returns the frame time accumulator driving Update.
func (w *World) Accumulator() *Accumulator {
	return w.accumulator
}

// ResetWarmStart drops every carried multiplier so the next tick solves
// from scratch.
func (w *World) ResetWarmStart() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warm = make(map[contactKey]ConstraintData)
	for _, js := range w.joints {
		js.joint.data = NewConstraintData(BallJointStiffness)
	}
}

// Update feeds a frame delta to the accumulator and runs the fixed ticks it
// asks for. It returns the number of ticks run.
func (w *World) Update(frameDelta float32) int {
	steps := w.accumulator.Accumulate(frameDelta)
	for i := 0; i < steps; i++ {
		w.Step(w.Config.FixedTimestep)
	}
	return steps
}

// InterpolationAlpha is the render blend factor between the last two ticks.
func (w *World) InterpolationAlpha() float32 {
	return w.accumulator.InterpolationAlpha()
}

// tickState is everything gathered for one tick.
type tickState struct {
	bodies    []Body
	objects   []*engine.GameObject // parallel to bodies
	colliders []Collider
	index     map[uint64]int // entity to body index
}

// Step runs one fixed tick of length dt.
func (w *World) Step(dt float32) SolveStats {
	w.mu.Lock()
	if w.scene == nil || dt <= 0 {
		w.mu.Unlock()
		return SolveStats{}
	}

	ts := w.gather()
	for _, cmd := range w.commands.Drain() {
		if i, ok := ts.index[cmd.Entity]; ok {
			cmd.apply(&ts.bodies[i])
		}
	}

	w.tracker.begin()
	contacts := w.buildContacts(ts)
	constraints := make([]Constraint, 0, len(contacts)+len(w.joints))
	for _, c := range contacts {
		constraints = append(constraints, c)
	}
	for _, j := range w.buildJoints(ts) {
		constraints = append(constraints, j)
	}

	stats := w.solver.Solve(ts.bodies, constraints, dt)
	ApplyRestitution(ts.bodies, contacts, w.Config.RestitutionThreshold)
	CorrectPositions(ts.bodies, contacts, w.Config)
	FinishVelocities(ts.bodies, w.Config)

	w.warm = make(map[contactKey]ConstraintData, len(contacts))
	for _, c := range contacts {
		w.warm[c.key] = c.warmState(ts.bodies, dt)
	}
	w.writeBack(ts)
	w.commit(ts)
	w.stats = stats
	w.contacts = w.contacts[:0]
	for _, c := range contacts {
		w.contacts = append(w.contacts, c.Contact)
	}
	w.ticks++

	enter, exit := w.tracker.end()
	scene := w.scene
	w.mu.Unlock()

	w.dispatch(scene, enter, exit)
	return stats
}

// gather builds the body and collider arrays from the scene. Objects
// without a collider are skipped; a collider without a rigidbody is static.
func (w *World) gather() tickState {
	ts := tickState{index: make(map[uint64]int)}
	visited := make(map[uint64]bool)
	var walk func(obj *engine.GameObject)
	walk = func(obj *engine.GameObject) {
		if visited[obj.UID] || !obj.Active {
			return
		}
		visited[obj.UID] = true
		w.gatherObject(&ts, obj)
		for _, child := range obj.Children {
			walk(child)
		}
	}
	for _, obj := range w.scene.GameObjects {
		walk(obj)
	}
	return ts
}

func (w *World) gatherObject(ts *tickState, obj *engine.GameObject) {
	col := engine.GetComponent[*components.Collider](obj)
	if col == nil {
		return
	}
	shape := col.WorldShape()
	pos, rot := col.WorldPose()
	c := Collider{
		Entity:      obj.UID,
		Body:        StaticBody,
		Shape:       shape,
		Friction:    col.Friction,
		Restitution: col.Restitution,
		Density:     col.Density,
		IsSensor:    col.IsSensor,
		Position:    pos,
		Rotation:    rot,
		AABB:        shape.WorldAABB(pos, rot),
	}

	if rb := engine.GetComponent[*components.Rigidbody](obj); rb != nil {
		mass := rb.Mass
		if mass <= 0 {
			mass = col.Density * shape.Volume()
		}
		offset := rl.Vector3Multiply(col.Offset, obj.WorldScale())
		b := NewBody(obj.UID, obj.WorldPosition(), rot, mass, offsetInertia(shape.Inertia(mass), mass, offset))
		b.LinearVelocity = rb.Velocity
		b.AngularVelocity = rb.AngularVelocity
		b.UseGravity = rb.UseGravity
		b.LinearDamping = w.Config.LinearDamping
		if rb.LinearDamping >= 0 {
			b.LinearDamping = rb.LinearDamping
		}
		b.AngularDamping = w.Config.AngularDamping
		if rb.AngularDamping >= 0 {
			b.AngularDamping = rb.AngularDamping
		}
		if rb.IsKinematic {
			b.SetKinematic(true)
		}

		c.Body = len(ts.bodies)
		c.Offset = offset
		ts.index[obj.UID] = len(ts.bodies)
		ts.bodies = append(ts.bodies, b)
		ts.objects = append(ts.objects, obj)
		w.handles.Register(obj.UID)
	}
	ts.colliders = append(ts.colliders, c)
}

// offsetInertia moves a shape's inertia to the body origin (parallel axis).
func offsetInertia(inertia mgl32.Mat3, mass float32, d rl.Vector3) mgl32.Mat3 {
	if d == (rl.Vector3{}) {
		return inertia
	}
	shift := mgl32.Ident3().Mul(rl.Vector3DotProduct(d, d)).Sub(collision.Outer(d, d)).Mul(mass)
	return inertia.Add(shift)
}

func (w *World) isDynamic(ts tickState, idx int) bool {
	return idx != StaticBody && ts.bodies[idx].IsDynamic()
}

// buildContacts runs the broad and narrow phase and turns every manifold
// point into a contact constraint, carrying warm-start state by key.
func (w *World) buildContacts(ts tickState) []*ContactConstraint {
	var contacts []*ContactConstraint
	kStart := w.Config.Solver.KStart
	for _, p := range w.broadPhase(ts.colliders) {
		ca, cb := &ts.colliders[p.A], &ts.colliders[p.B]
		if ca.Body != StaticBody && ca.Body == cb.Body {
			continue
		}
		sensor := ca.IsSensor || cb.IsSensor
		if !sensor && !w.isDynamic(ts, ca.Body) && !w.isDynamic(ts, cb.Body) {
			continue
		}

		manifold := collision.CollideManifold(ca.Instance(), cb.Instance())
		if len(manifold) == 0 {
			continue
		}
		w.tracker.record(manifold[0], sensor)
		if sensor {
			continue
		}

		friction := CombineFriction(ca.Friction, cb.Friction)
		restitution := CombineRestitution(ca.Restitution, cb.Restitution)
		for k, ct := range manifold {
			cc := NewContactConstraint(ts.bodies, ca.Body, cb.Body, ct, friction, restitution, kStart)
			cc.key = contactKey{A: ca.Entity, B: cb.Entity, Point: k}
			cc.points = len(manifold)
			if prev, ok := w.warm[cc.key]; ok {
				cc.data.carry(prev)
			}
			contacts = append(contacts, cc)
		}
		if ca.Body != StaticBody {
			ts.bodies[ca.Body].inContact = true
		}
		if cb.Body != StaticBody {
			ts.bodies[cb.Body].inContact = true
		}
	}
	return contacts
}

// broadPhase picks the configured CPU method, or the GPU above the
// threshold.
func (w *World) broadPhase(colliders []Collider) []collision.Pair {
	wasUsingGPU := w.useGPU
	w.useGPU = w.Config.GPUBroadPhase && w.gpuBroadPhase != nil &&
		len(colliders) >= GPUBroadPhaseThreshold && len(colliders) <= w.gpuBroadPhase.MaxObjects()

	if w.useGPU && !wasUsingGPU {
		log.Printf("Physics: GPU broad-phase ON (%d colliders)", len(colliders))
	} else if !w.useGPU && wasUsingGPU {
		log.Printf("Physics: GPU broad-phase OFF (%d colliders)", len(colliders))
	} else if len(colliders)%100 == 0 && len(colliders) > 0 && len(colliders) != w.lastLoggedCount {
		w.lastLoggedCount = len(colliders)
		mode := "CPU"
		if w.useGPU {
			mode = "GPU"
		}
		log.Printf("Physics: %d colliders (%s)", len(colliders), mode)
	}

	if w.useGPU {
		boxes := make([]compute.Box, len(colliders))
		for i, c := range colliders {
			boxes[i] = compute.NewBox(c.AABB.Min.X, c.AABB.Min.Y, c.AABB.Min.Z, c.AABB.Max.X, c.AABB.Max.Y, c.AABB.Max.Z)
		}
		gpuPairs, err := w.gpuBroadPhase.DetectPairs(boxes)
		if err == nil {
			if len(gpuPairs) > 0 && time.Since(w.lastLogTime) >= time.Second {
				w.lastLogTime = time.Now()
				log.Printf("Physics: GPU detected %d pairs (%d colliders)", len(gpuPairs), len(colliders))
			}
			pairs := make([]collision.Pair, len(gpuPairs))
			for i, p := range gpuPairs {
				pairs[i] = collision.Pair{A: int(p.A), B: int(p.B)}
			}
			return pairs
		}
		log.Printf("Physics: GPU broad-phase failed, falling back to CPU: %v", err)
	}

	entries := make([]collision.Entry, len(colliders))
	for i, c := range colliders {
		entries[i] = collision.Entry{Entity: c.Entity, Box: c.AABB}
	}
	switch w.Config.BroadPhase {
	case BroadPhaseHash:
		return collision.SpatialHashPairs(entries, w.Config.HashCellSize)
	case BroadPhaseBrute:
		return collision.BruteForcePairs(entries)
	}
	return collision.SweepAndPrune(entries)
}

// buildJoints keeps one ball joint per owning entity. Anchors are fixed the
// first tick a joint is seen; later ticks only refresh body indices.
func (w *World) buildJoints(ts tickState) []*BallJoint {
	var joints []*BallJoint
	seen := make(map[uint64]bool)
	for i, obj := range ts.objects {
		bj := engine.GetComponent[*components.BallJoint](obj)
		if bj == nil {
			continue
		}
		other := StaticBody
		if bj.Connected.IsValid() {
			idx, ok := ts.index[bj.Connected.UID]
			if !ok {
				continue
			}
			other = idx
		}
		if !w.isDynamic(ts, i) && !w.isDynamic(ts, other) {
			continue
		}

		js, ok := w.joints[obj.UID]
		if !ok || js.connected != bj.Connected.UID {
			js = &jointState{
				connected: bj.Connected.UID,
				joint:     NewBallJoint(ts.bodies, i, other, bj.WorldAnchor()),
			}
			w.joints[obj.UID] = js
		}
		js.joint.BodyA, js.joint.BodyB = i, other
		seen[obj.UID] = true
		joints = append(joints, js.joint)
	}
	for uid := range w.joints {
		if !seen[uid] {
			delete(w.joints, uid)
		}
	}
	return joints
}

// writeBack copies solved poses and velocities to the scene.
func (w *World) writeBack(ts tickState) {
	for i := range ts.bodies {
		b := &ts.bodies[i]
		if !b.IsDynamic() && !b.IsKinematic {
			continue
		}
		obj := ts.objects[i]
		obj.SetWorldPose(b.Position, b.Rotation)
		if rb := engine.GetComponent[*components.Rigidbody](obj); rb != nil {
			rb.Velocity = b.LinearVelocity
			rb.AngularVelocity = b.AngularVelocity
		}
	}
}

// commit publishes the post-tick state for queries and interpolation.
func (w *World) commit(ts tickState) {
	w.previous = w.current
	w.current = make(map[uint64]BodyState, len(ts.bodies))
	for i := range ts.bodies {
		b := &ts.bodies[i]
		w.current[b.Entity] = BodyState{
			Entity:          b.Entity,
			Position:        b.Position,
			Rotation:        b.Rotation,
			LinearVelocity:  b.LinearVelocity,
			AngularVelocity: b.AngularVelocity,
		}
	}
	for i := range ts.colliders {
		c := &ts.colliders[i]
		if c.Body != StaticBody {
			c.follow(&ts.bodies[c.Body])
		}
	}
	w.colliders = ts.colliders
}

// dispatch delivers enter/exit events to CollisionHandler components and
// world listeners. It runs without the world lock so handlers may query or
// push commands.
func (w *World) dispatch(scene *engine.Scene, enter, exit []CollisionEvent) {
	for _, ev := range enter {
		a, b := scene.FindByUID(ev.EntityA), scene.FindByUID(ev.EntityB)
		notifyCollisionEnter(a, b)
		notifyCollisionEnter(b, a)
		w.OnCollisionEnter.Invoke(ev)
	}
	for _, ev := range exit {
		a, b := scene.FindByUID(ev.EntityA), scene.FindByUID(ev.EntityB)
		notifyCollisionExit(a, b)
		notifyCollisionExit(b, a)
		w.OnCollisionExit.Invoke(ev)
	}
}

func notifyCollisionEnter(obj, other *engine.GameObject) {
	if obj == nil || other == nil {
		return
	}
	for _, comp := range obj.Components() {
		if handler, ok := comp.(engine.CollisionHandler); ok {
			handler.OnCollisionEnter(other)
		}
	}
}

func notifyCollisionExit(obj, other *engine.GameObject) {
	if obj == nil || other == nil {
		return
	}
	for _, comp := range obj.Components() {
		if handler, ok := comp.(engine.CollisionHandler); ok {
			handler.OnCollisionExit(other)
		}
	}
}

// onRemove forgets everything keyed by a despawned entity.
func (w *World) onRemove(obj *engine.GameObject) {
	w.mu.Lock()
	defer w.mu.Unlock()
	uid := obj.UID
	w.handles.Unregister(uid)
	for k := range w.warm {
		if k.A == uid || k.B == uid {
			delete(w.warm, k)
		}
	}
	delete(w.joints, uid)
	for owner, js := range w.joints {
		if js.connected == uid {
			delete(w.joints, owner)
		}
	}
	w.tracker.forget(uid)
	w.commands.DropEntity(uid)
	delete(w.current, uid)
	delete(w.previous, uid)
	kept := w.colliders[:0]
	for _, c := range w.colliders {
		if c.Entity != uid {
			kept = append(kept, c)
		}
	}
	w.colliders = kept
}

// ApplyForce queues a force for the next tick.
func (w *World) ApplyForce(g *engine.GameObject, force rl.Vector3) {
	w.commands.Push(Command{Kind: CommandForce, Entity: g.UID, Linear: force})
}

// ApplyImpulse queues an instantaneous change of momentum.
func (w *World) ApplyImpulse(g *engine.GameObject, impulse rl.Vector3) {
	w.commands.Push(Command{Kind: CommandImpulse, Entity: g.UID, Linear: impulse})
}

func (w *World) ApplyTorque(g *engine.GameObject, torque rl.Vector3) {
	w.commands.Push(Command{Kind: CommandTorque, Entity: g.UID, Angular: torque})
}

// SetVelocity overrides both velocities at the start of the next tick.
func (w *World) SetVelocity(g *engine.GameObject, linear, angular rl.Vector3) {
	w.commands.Push(Command{Kind: CommandSetVelocity, Entity: g.UID, Linear: linear, Angular: angular})
}
