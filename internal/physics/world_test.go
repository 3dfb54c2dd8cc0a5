package physics

import (
	"testing"

	"rigid3d/internal/collision"
	"rigid3d/internal/components"
	"rigid3d/internal/engine"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const testDt = float32(1.0 / 60.0)

func addFloor(scene *engine.Scene) *engine.GameObject {
	floor := engine.NewGameObject("Floor")
	floor.AddComponent(components.NewBoxCollider(rl.Vector3{X: 20, Y: 1, Z: 20}))
	scene.AddGameObject(floor)
	return floor
}

func addBall(scene *engine.Scene, pos rl.Vector3, radius float32) (*engine.GameObject, *components.Rigidbody) {
	ball := engine.NewGameObject("Ball")
	ball.Transform.Position = pos
	ball.AddComponent(components.NewSphereCollider(radius))
	rb := components.NewRigidbody()
	ball.AddComponent(rb)
	scene.AddGameObject(ball)
	return ball, rb
}

func addCrate(scene *engine.Scene, pos rl.Vector3) *engine.GameObject {
	crate := engine.NewGameObject("Crate")
	crate.Transform.Position = pos
	crate.AddComponent(components.NewBoxCollider(rl.Vector3{X: 1, Y: 1, Z: 1}))
	crate.AddComponent(components.NewRigidbody())
	scene.AddGameObject(crate)
	return crate
}

func run(w *World, ticks int) {
	for i := 0; i < ticks; i++ {
		w.Step(testDt)
	}
}

func TestSphereSettlesOnFloor(t *testing.T) {
	scene := engine.NewScene("Test")
	addFloor(scene)
	ball, rb := addBall(scene, rl.Vector3{Y: 5}, 0.5)
	w := NewWorld(scene, DefaultConfig())

	run(w, 300)

	if speed := rl.Vector3Length(rb.Velocity); speed >= 1e-3 {
		t.Errorf("Expected the ball at rest, got speed %f", speed)
	}
	y := ball.Transform.Position.Y
	if math32.Abs(y-1) > w.Config.ContactSlop+2e-3 {
		t.Errorf("Expected resting height 1 within slop, got %f", y)
	}
}

func TestBoxStackIsStable(t *testing.T) {
	scene := engine.NewScene("Test")
	addFloor(scene)
	crates := []*engine.GameObject{
		addCrate(scene, rl.Vector3{Y: 1.1}),
		addCrate(scene, rl.Vector3{Y: 2.2}),
		addCrate(scene, rl.Vector3{Y: 3.3}),
	}
	w := NewWorld(scene, DefaultConfig())

	run(w, 300)

	prev := float32(0)
	for i, c := range crates {
		y := c.Transform.Position.Y
		if math32.Abs(y-prev-1) > 0.05 {
			t.Errorf("Crate %d: expected 1.0 above the one below, got %f", i, y-prev)
		}
		if math32.Abs(c.Transform.Position.X) > 0.05 || math32.Abs(c.Transform.Position.Z) > 0.05 {
			t.Errorf("Crate %d drifted sideways to %v", i, c.Transform.Position)
		}
		prev = y
	}
}

func TestWarmStartConvergesFaster(t *testing.T) {
	scene := engine.NewScene("Test")
	addFloor(scene)
	addBall(scene, rl.Vector3{Y: 1}, 0.5)
	w := NewWorld(scene, DefaultConfig())

	run(w, 120)
	warm := w.Step(testDt).Iterations

	w.ResetWarmStart()
	cold := w.Step(testDt).Iterations

	if warm >= cold {
		t.Errorf("Expected warm start to need fewer iterations, got warm %d cold %d", warm, cold)
	}
}

func TestFreeFall(t *testing.T) {
	scene := engine.NewScene("Test")
	_, rb := addBall(scene, rl.Vector3{Y: 10}, 0.5)
	cfg := DefaultConfig()
	cfg.LinearDamping = 0
	w := NewWorld(scene, cfg)

	run(w, 60)

	// One second of gravity.
	if !near(rb.Velocity.Y, -9.81, 0.05) {
		t.Errorf("Expected vy -9.81 after one second, got %f", rb.Velocity.Y)
	}
	if stats := w.LastStats(); stats.Iterations != 1 {
		t.Errorf("Expected an unconstrained solve to finish in 1 iteration, got %d", stats.Iterations)
	}
}

func TestKinematicBodyFollowsVelocity(t *testing.T) {
	scene := engine.NewScene("Test")
	platform := addCrate(scene, rl.Vector3{Y: 3})
	rb := engine.GetComponent[*components.Rigidbody](platform)
	rb.IsKinematic = true
	rb.Velocity = rl.Vector3{X: 1}
	w := NewWorld(scene, DefaultConfig())

	run(w, 60)

	if !near(platform.Transform.Position.X, 1, 1e-3) || !near(platform.Transform.Position.Y, 3, 1e-6) {
		t.Errorf("Expected platform at (1,3,0), got %v", platform.Transform.Position)
	}
}

func TestCommandsApplyNextTick(t *testing.T) {
	scene := engine.NewScene("Test")
	ball, rb := addBall(scene, rl.Vector3{Y: 10}, 0.5)
	rb.UseGravity = false
	rb.LinearDamping = 0
	w := NewWorld(scene, DefaultConfig())

	w.ApplyImpulse(ball, rl.Vector3{X: 2})
	w.Step(testDt)
	if !near(rb.Velocity.X, 2, 1e-3) {
		t.Errorf("Expected vx 2 after a unit-mass impulse, got %f", rb.Velocity.X)
	}

	w.SetVelocity(ball, rl.Vector3{Z: -1}, rl.Vector3{})
	w.Step(testDt)
	if !nearVec(rb.Velocity, rl.Vector3{Z: -1}, 1e-3) {
		t.Errorf("Expected velocity (0,0,-1), got %v", rb.Velocity)
	}
}

type collisionCounter struct {
	engine.BaseComponent
	enters, exits int
}

func (c *collisionCounter) OnCollisionEnter(other *engine.GameObject) { c.enters++ }
func (c *collisionCounter) OnCollisionExit(other *engine.GameObject)  { c.exits++ }

func TestCollisionEvents(t *testing.T) {
	scene := engine.NewScene("Test")
	addFloor(scene)
	ball, _ := addBall(scene, rl.Vector3{Y: 1.5}, 0.5)
	counter := &collisionCounter{}
	ball.AddComponent(counter)
	w := NewWorld(scene, DefaultConfig())

	var worldEnters []CollisionEvent
	w.OnCollisionEnter.AddListener(func(ev CollisionEvent) {
		worldEnters = append(worldEnters, ev)
	})

	run(w, 90)
	if counter.enters != 1 || counter.exits != 0 {
		t.Errorf("Expected 1 enter and 0 exits while resting, got %d and %d", counter.enters, counter.exits)
	}
	if len(worldEnters) != 1 || worldEnters[0].EntityA >= worldEnters[0].EntityB {
		t.Errorf("Expected one ordered world enter event, got %v", worldEnters)
	}

	w.SetVelocity(ball, rl.Vector3{Y: 10}, rl.Vector3{})
	run(w, 10)
	if counter.exits != 1 {
		t.Errorf("Expected 1 exit after launching, got %d", counter.exits)
	}
}

func TestSensorDoesNotPush(t *testing.T) {
	scene := engine.NewScene("Test")
	zone := engine.NewGameObject("Zone")
	sensor := components.NewBoxCollider(rl.Vector3{X: 4, Y: 4, Z: 4})
	sensor.IsSensor = true
	zone.AddComponent(sensor)
	scene.AddGameObject(zone)

	ball, rb := addBall(scene, rl.Vector3{Y: 0.5}, 0.5)
	rb.UseGravity = false
	counter := &collisionCounter{}
	ball.AddComponent(counter)
	w := NewWorld(scene, DefaultConfig())

	run(w, 10)
	if counter.enters != 1 {
		t.Errorf("Expected the sensor to report an enter, got %d", counter.enters)
	}
	if w.ContactCount() != 0 {
		t.Errorf("Expected no contact constraints from a sensor, got %d", w.ContactCount())
	}
	if !nearVec(ball.Transform.Position, rl.Vector3{Y: 0.5}, 1e-4) {
		t.Errorf("Expected the ball not to move, got %v", ball.Transform.Position)
	}
}

func TestDespawnUnregisters(t *testing.T) {
	scene := engine.NewScene("Test")
	addFloor(scene)
	ball, _ := addBall(scene, rl.Vector3{Y: 1}, 0.5)
	w := NewWorld(scene, DefaultConfig())

	run(w, 5)
	if _, ok := w.Handles().Handle(ball.UID); !ok {
		t.Fatal("Expected the ball to be registered after a tick")
	}
	w.ApplyForce(ball, rl.Vector3{X: 1})

	scene.RemoveGameObject(ball)

	if _, ok := w.Handles().Handle(ball.UID); ok {
		t.Error("Expected the ball to be unregistered after removal")
	}
	if w.commands.Len() != 0 {
		t.Errorf("Expected pending commands dropped, got %d", w.commands.Len())
	}
	for k := range w.warm {
		if k.A == ball.UID || k.B == ball.UID {
			t.Errorf("Warm-start entry %v survived despawn", k)
		}
	}
	if ids := w.QueryAABB(collision.AABB{Min: rl.Vector3{X: -1, Y: 0, Z: -1}, Max: rl.Vector3{X: 1, Y: 2, Z: 1}}); len(ids) != 1 {
		t.Errorf("Expected only the floor in the query, got %v", ids)
	}
	run(w, 5)
}

func TestAttachMovesRemoveListener(t *testing.T) {
	first := engine.NewScene("First")
	addFloor(first)
	ball, _ := addBall(first, rl.Vector3{Y: 1}, 0.5)
	w := NewWorld(first, DefaultConfig())

	w.Attach(first)
	if n := first.OnRemove.ListenerCount(); n != 1 {
		t.Errorf("Expected one listener after attaching twice, got %d", n)
	}

	run(w, 5)
	second := engine.NewScene("Second")
	addFloor(second)
	w.Attach(second)

	if n := first.OnRemove.ListenerCount(); n != 0 {
		t.Errorf("Expected the old scene's listener removed, got %d", n)
	}
	if n := second.OnRemove.ListenerCount(); n != 1 {
		t.Errorf("Expected one listener on the new scene, got %d", n)
	}
	if len(w.warm) != 0 {
		t.Errorf("Expected warm-start state dropped on scene change, got %d entries", len(w.warm))
	}

	// Despawns in the old scene no longer reach the world.
	first.RemoveGameObject(ball)
	if _, ok := w.Handles().Handle(ball.UID); !ok {
		t.Error("Expected a removal in the detached scene to be ignored")
	}
}

func TestWorldRaycast(t *testing.T) {
	scene := engine.NewScene("Test")
	floor := addFloor(scene)
	w := NewWorld(scene, DefaultConfig())
	w.Step(testDt)

	hit, ok := w.Raycast(rl.Vector3{Y: 5}, rl.Vector3{Y: -1}, 100)
	if !ok {
		t.Fatal("Expected the ray to hit the floor")
	}
	if hit.GameObject != floor {
		t.Errorf("Expected the floor, got %v", hit.GameObject)
	}
	if !near(hit.Distance, 4.5, 1e-4) || !nearVec(hit.Normal, rl.Vector3{Y: 1}, 1e-5) {
		t.Errorf("Expected distance 4.5 with normal +Y, got %f %v", hit.Distance, hit.Normal)
	}
	if _, ok := w.Raycast(rl.Vector3{Y: 5}, rl.Vector3{Y: 1}, 100); ok {
		t.Error("Expected a ray pointing away to miss")
	}
}

func TestBallJointKeepsDistance(t *testing.T) {
	scene := engine.NewScene("Test")
	bob, _ := addBall(scene, rl.Vector3{X: 1, Y: 5}, 0.25)
	bob.AddComponent(components.NewBallJoint(nil, rl.Vector3{X: -1}))
	w := NewWorld(scene, DefaultConfig())

	pivot := rl.Vector3{Y: 5}
	lowest := bob.Transform.Position.Y
	for i := 0; i < 120; i++ {
		w.Step(testDt)
		d := rl.Vector3Distance(bob.Transform.Position, pivot)
		if math32.Abs(d-1) > 0.05 {
			t.Fatalf("Tick %d: expected rope length 1, got %f", i, d)
		}
		lowest = math32.Min(lowest, bob.Transform.Position.Y)
	}
	if lowest > 4.5 {
		t.Errorf("Expected the bob to swing down, lowest y was %f", lowest)
	}
}

func TestInterpolated(t *testing.T) {
	scene := engine.NewScene("Test")
	ball, rb := addBall(scene, rl.Vector3{Y: 10}, 0.5)
	rb.UseGravity = false
	rb.Velocity = rl.Vector3{X: 6}
	rb.LinearDamping = 0
	w := NewWorld(scene, DefaultConfig())

	w.Step(testDt)
	w.Step(testDt)

	pos, _, ok := w.Interpolated(ball.UID, 0.5)
	if !ok {
		t.Fatal("Expected an interpolated state")
	}
	if !near(pos.X, 0.15, 1e-4) {
		t.Errorf("Expected x 0.15 halfway between ticks, got %f", pos.X)
	}
	if _, _, ok := w.Interpolated(12345678, 0.5); ok {
		t.Error("Unknown entity should not interpolate")
	}
}

func TestUpdateRunsFixedTicks(t *testing.T) {
	scene := engine.NewScene("Test")
	addBall(scene, rl.Vector3{Y: 10}, 0.5)
	w := NewWorld(scene, DefaultConfig())

	if n := w.Update(testDt * 3); n != 3 {
		t.Errorf("Expected 3 ticks, got %d", n)
	}
	if w.Ticks() != 3 {
		t.Errorf("Expected tick counter 3, got %d", w.Ticks())
	}
}

func TestBroadPhaseMethodsAgree(t *testing.T) {
	for _, method := range []string{BroadPhaseSAP, BroadPhaseHash, BroadPhaseBrute} {
		scene := engine.NewScene("Test")
		addFloor(scene)
		for i := 0; i < 5; i++ {
			addBall(scene, rl.Vector3{X: float32(i) * 0.9, Y: 0.99}, 0.5)
		}
		cfg := DefaultConfig()
		cfg.BroadPhase = method
		w := NewWorld(scene, cfg)
		w.Step(testDt)

		// 5 balls on the floor plus 4 neighbor pairs.
		if n := w.ContactCount(); n != 9 {
			t.Errorf("%s: expected 9 contacts, got %d", method, n)
		}
	}
}

func TestContactsReportRestingPoint(t *testing.T) {
	scene := engine.NewScene("Test")
	addFloor(scene)
	addBall(scene, rl.Vector3{Y: 1}, 0.5)
	w := NewWorld(scene, DefaultConfig())

	run(w, 30)

	contacts := w.Contacts()
	if len(contacts) == 0 || len(contacts) != w.ContactCount() {
		t.Fatalf("Expected %d contacts, got %d", w.ContactCount(), len(contacts))
	}
	for _, c := range contacts {
		if math32.Abs(c.Normal.Y) < 0.99 {
			t.Errorf("Expected a vertical normal, got %v", c.Normal)
		}
		if math32.Abs(c.Position.Y-0.5) > 0.05 {
			t.Errorf("Expected the contact near the floor top, got %v", c.Position)
		}
	}
}
