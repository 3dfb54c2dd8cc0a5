// Interactive physics sandbox. Loads a scene file (or builds a demo scene),
// steps it on the fixed timestep and draws colliders at interpolated poses.
//
// Controls: WASD/QE fly, right mouse look, left click pushes the body under
// the cursor, Space drops a ball, P pauses, N steps once while paused,
// R reloads, C toggles contact points, F1 toggles stats.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"rigid3d/internal/components"
	"rigid3d/internal/compute"
	"rigid3d/internal/engine"
	"rigid3d/internal/physics"
	"rigid3d/internal/scenefile"
	"rigid3d/internal/validate"
	"rigid3d/internal/viewer"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	scenePath  = flag.String("scene", "", "Scene JSON file (empty builds the demo scene)")
	configPath = flag.String("config", "", "Physics config YAML or JSON")
	useGPU     = flag.Bool("gpu", false, "Enable the GPU broad phase")
)

const pushImpulse = 8.0

type sandbox struct {
	cfg     physics.Config
	scene   *engine.Scene
	world   *physics.World
	camera  *viewer.FlyCamera
	paused  bool
	showHUD bool
	showHit bool
	spawned int
}

func main() {
	flag.Parse()

	cfg := physics.DefaultConfig()
	if *configPath != "" {
		loaded, err := physics.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Sandbox: %v", err)
		}
		cfg = loaded
	}
	cfg.GPUBroadPhase = cfg.GPUBroadPhase || *useGPU

	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(1280, 720, "rigid3d sandbox")
	defer rl.CloseWindow()
	rl.SetTargetFPS(120)

	if cfg.GPUBroadPhase {
		if info, err := compute.Initialize(); err != nil {
			log.Printf("Sandbox: GPU unavailable: %v", err)
		} else {
			log.Printf("Sandbox: GPU %s (%s)", info.Name, info.Backend)
		}
	}

	s := &sandbox{
		cfg:     cfg,
		camera:  viewer.NewFlyCamera(rl.Vector3{X: 12, Y: 10, Z: 12}),
		showHUD: true,
	}
	if err := s.load(); err != nil {
		log.Fatalf("Sandbox: %v", err)
	}
	defer s.world.Release()

	for !rl.WindowShouldClose() {
		s.update(rl.GetFrameTime())
		s.draw()
	}
}

func (s *sandbox) load() error {
	var scene *engine.Scene
	if *scenePath != "" {
		loaded, err := scenefile.Load(*scenePath)
		if err != nil {
			return err
		}
		scene = loaded
	} else {
		scene = demoScene()
	}

	report := validate.Validate(scene)
	for _, d := range report.Diagnostics {
		log.Printf("Sandbox: %s %s on %q: %s", d.Severity, d.Kind, d.Name, d.Message)
	}

	if s.world != nil {
		s.world.Release()
	}
	s.scene = scene
	s.world = physics.NewWorld(scene, s.cfg)
	if s.cfg.GPUBroadPhase && compute.Get() != nil {
		s.world.InitGPU()
	}
	s.scene.Start()
	return nil
}

func (s *sandbox) update(frameDelta float32) {
	s.camera.Update(frameDelta)

	switch {
	case rl.IsKeyPressed(rl.KeyP):
		s.paused = !s.paused
	case rl.IsKeyPressed(rl.KeyF1):
		s.showHUD = !s.showHUD
	case rl.IsKeyPressed(rl.KeyC):
		s.showHit = !s.showHit
	case rl.IsKeyPressed(rl.KeyR):
		if err := s.load(); err != nil {
			log.Printf("Sandbox: reload failed: %v", err)
		}
	case rl.IsKeyPressed(rl.KeySpace):
		s.dropBall()
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		s.push()
	}

	if s.paused {
		if rl.IsKeyPressed(rl.KeyN) {
			s.world.Step(s.cfg.FixedTimestep)
		}
		return
	}
	s.scene.Update(frameDelta)
	s.world.Update(frameDelta)
}

// push shoots a ray from the cursor and kicks whatever body it hits.
func (s *sandbox) push() {
	ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), s.camera.GetRaylibCamera())
	hit, ok := s.world.Raycast(ray.Position, ray.Direction, 200)
	if !ok || engine.GetComponent[*components.Rigidbody](hit.GameObject) == nil {
		return
	}
	s.world.ApplyImpulse(hit.GameObject, rl.Vector3Scale(ray.Direction, pushImpulse))
}

func (s *sandbox) dropBall() {
	s.spawned++
	g := engine.NewGameObject(fmt.Sprintf("Dropped_%d", s.spawned))
	g.Transform.Position = rl.Vector3Add(s.camera.Position, rl.Vector3Scale(s.camera.Forward(), 3))
	col := components.NewSphereCollider(0.4)
	col.Restitution = 0.3
	g.AddComponent(col)
	g.AddComponent(components.NewRigidbody())
	g.AddComponent(components.NewTint(rl.Gold))
	s.scene.AddGameObject(g)
	s.world.SetVelocity(g, rl.Vector3Scale(s.camera.Forward(), 10), rl.Vector3{})
}

func (s *sandbox) draw() {
	cam := s.camera.GetRaylibCamera()
	aspect := float32(rl.GetScreenWidth()) / float32(rl.GetScreenHeight())
	frustum := viewer.ExtractFrustum(cam, aspect)
	alpha := s.world.InterpolationAlpha()

	rl.BeginDrawing()
	rl.ClearBackground(rl.RayWhite)
	rl.BeginMode3D(cam)

	drawn := 0
	for _, g := range s.scene.GameObjects {
		col := engine.GetComponent[*components.Collider](g)
		if col == nil || !g.Active {
			continue
		}
		pos, rot := col.WorldPose()
		if bodyPos, bodyRot, ok := s.world.Interpolated(g.UID, alpha); ok {
			offset := rl.Vector3Multiply(col.Offset, g.WorldScale())
			pos = rl.Vector3Add(bodyPos, rl.Vector3RotateByQuaternion(offset, bodyRot))
			rot = bodyRot
		}
		shape := col.WorldShape()
		if !frustum.ContainsSphere(pos, viewer.BoundingRadius(shape)) {
			continue
		}
		viewer.DrawShape(shape, pos, rot, colorOf(g), col.IsSensor)
		drawn++
	}

	if s.showHit {
		for _, c := range s.world.Contacts() {
			viewer.DrawContact(c)
		}
	}
	rl.DrawGrid(40, 1)
	rl.EndMode3D()

	if s.showHUD {
		s.drawHUD(drawn)
	}
	rl.EndDrawing()
}

func colorOf(g *engine.GameObject) rl.Color {
	if tint := engine.GetComponent[*components.Tint](g); tint != nil {
		return tint.Color
	}
	if rb := engine.GetComponent[*components.Rigidbody](g); rb == nil {
		return rl.LightGray
	} else if rb.IsKinematic {
		return rl.SkyBlue
	}
	return rl.Orange
}

func (s *sandbox) drawHUD(drawn int) {
	stats := s.world.LastStats()
	mode := "CPU " + s.cfg.BroadPhase
	if s.world.UsingGPU() {
		mode = "GPU"
	}
	lines := []string{
		fmt.Sprintf("FPS %d | tick %d | drawn %d", rl.GetFPS(), s.world.Ticks(), drawn),
		fmt.Sprintf("bodies %d | contacts %d | broad phase %s", s.world.Handles().Len(), s.world.ContactCount(), mode),
		fmt.Sprintf("solver: %d iterations, residual %.2e, %d colors", stats.Iterations, stats.Residual, stats.Colors),
	}
	if s.paused {
		lines = append(lines, "PAUSED (N to step)")
	}
	for i, line := range lines {
		rl.DrawText(line, 10, int32(10+i*22), 20, rl.DarkGray)
	}
}

// demoScene is a floor with a box pyramid, bouncing balls, a pendulum, a
// circling kinematic sweeper and a sensor pad.
func demoScene() *engine.Scene {
	scene := engine.NewScene("Demo")
	palette := []rl.Color{rl.Red, rl.Blue, rl.Green, rl.Purple, rl.Orange, rl.Yellow, rl.Pink, rl.SkyBlue, rl.Lime, rl.Magenta}

	floor := engine.NewGameObject("Floor")
	floor.Transform.Position = rl.Vector3{Y: -0.5}
	floor.AddComponent(components.NewBoxCollider(rl.Vector3{X: 40, Y: 1, Z: 40}))
	floor.AddComponent(components.NewTint(rl.LightGray))
	scene.AddGameObject(floor)

	const rows = 5
	n := 0
	for row := 0; row < rows; row++ {
		for i := 0; i < rows-row; i++ {
			crate := engine.NewGameObject(fmt.Sprintf("Crate_%d", n))
			crate.Transform.Position = rl.Vector3{
				X: float32(i) - float32(rows-row-1)*0.5,
				Y: 0.5 + float32(row),
				Z: -4,
			}
			crate.AddComponent(components.NewBoxCollider(rl.Vector3{X: 1, Y: 1, Z: 1}))
			crate.AddComponent(components.NewRigidbody())
			crate.AddComponent(components.NewTint(palette[n%len(palette)]))
			scene.AddGameObject(crate)
			n++
		}
	}

	for i := 0; i < 8; i++ {
		ball := engine.NewGameObject(fmt.Sprintf("Ball_%d", i))
		ball.Transform.Position = rl.Vector3{X: rand.Float32()*6 - 3, Y: 3 + float32(i), Z: 3}
		col := components.NewSphereCollider(0.3 + rand.Float32()*0.3)
		col.Restitution = 0.6
		ball.AddComponent(col)
		ball.AddComponent(components.NewRigidbody())
		scene.AddGameObject(ball)
	}

	bob := engine.NewGameObject("Pendulum")
	bob.Transform.Position = rl.Vector3{X: 6, Y: 6, Z: 0}
	bob.AddComponent(components.NewCapsuleCollider(0.4, 0.3))
	bob.AddComponent(components.NewRigidbody())
	bob.AddComponent(components.NewBallJoint(nil, rl.Vector3{X: -2}))
	bob.AddComponent(components.NewTint(rl.Maroon))
	scene.AddGameObject(bob)

	sweeper := engine.NewGameObject("Sweeper")
	sweeper.Transform.Position = rl.Vector3{X: -8, Y: 0.5, Z: 0}
	sweeper.AddComponent(components.NewCylinderCollider(0.5, 0.6))
	rb := components.NewRigidbody()
	rb.IsKinematic = true
	rb.UseGravity = false
	sweeper.AddComponent(rb)
	sweeper.AddComponent(components.NewKinematicDriver(rl.Vector3{Y: 1}, 45, 3, 0.5))
	scene.AddGameObject(sweeper)

	pad := engine.NewGameObject("SensorPad")
	pad.Transform.Position = rl.Vector3{X: 0, Y: 0.25, Z: 3}
	sensor := components.NewBoxCollider(rl.Vector3{X: 4, Y: 0.5, Z: 2})
	sensor.IsSensor = true
	pad.AddComponent(sensor)
	pad.AddComponent(components.NewTint(rl.Lime))
	scene.AddGameObject(pad)

	return scene
}
