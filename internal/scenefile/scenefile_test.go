package scenefile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rigid3d/internal/collision"
	"rigid3d/internal/components"
	"rigid3d/internal/engine"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const pendulumScene = `{
  "name": "Pendulum",
  "objects": [
    {
      "uid": 501,
      "name": "Floor",
      "tags": ["static"],
      "position": [0, -0.5, 0],
      "rotation": [0, 0, 0],
      "scale": [20, 1, 20],
      "components": [
        {"type": "Collider", "shape": "box", "halfExtents": [0.5, 0.5, 0.5]},
        {"type": "Tint", "color": "Gray"}
      ]
    },
    {
      "uid": 502,
      "name": "Bob",
      "position": [1, 5, 0],
      "rotation": [0, 45, 0],
      "scale": [1, 1, 1],
      "components": [
        {"type": "Collider", "shape": "sphere", "radius": 0.25, "restitution": 0.5},
        {"type": "Rigidbody", "mass": 2},
        {"type": "BallJoint", "anchor": [-1, 0, 0]},
        {"type": "Particles", "rate": 10}
      ]
    },
    {
      "uid": 503,
      "name": "Marker",
      "parent": 502,
      "position": [0, 1, 0],
      "rotation": [0, 0, 0],
      "scale": [0, 0, 0]
    }
  ]
}`

func TestParse(t *testing.T) {
	scene, err := Parse([]byte(pendulumScene))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if scene.Name != "Pendulum" {
		t.Errorf("Expected scene name Pendulum, got %s", scene.Name)
	}
	if len(scene.GameObjects) != 3 {
		t.Fatalf("Expected 3 objects, got %d", len(scene.GameObjects))
	}

	floor := scene.FindByUID(501)
	if floor == nil || floor.Name != "Floor" || !floor.HasTag("static") {
		t.Fatalf("Expected Floor with tag static at uid 501, got %v", floor)
	}
	col := engine.GetComponent[*components.Collider](floor)
	if col == nil || col.Shape.Kind != collision.Cuboid {
		t.Fatal("Expected a box collider on the floor")
	}
	if tint := engine.GetComponent[*components.Tint](floor); tint == nil || tint.Color != rl.Gray {
		t.Error("Expected a gray tint on the floor")
	}

	bob := scene.FindByUID(502)
	if bob == nil {
		t.Fatal("Expected Bob at uid 502")
	}
	// Unknown component types are skipped, the rest survive.
	if n := len(bob.Components()); n != 3 {
		t.Errorf("Expected 3 components on Bob, got %d", n)
	}
	rb := engine.GetComponent[*components.Rigidbody](bob)
	if rb == nil || rb.Mass != 2 {
		t.Error("Expected a rigidbody with mass 2")
	}
	if c := engine.GetComponent[*components.Collider](bob); c == nil || c.Restitution != 0.5 {
		t.Error("Expected a bouncy sphere collider")
	}
	if j := engine.GetComponent[*components.BallJoint](bob); j == nil || j.Connected.IsValid() {
		t.Error("Expected a ball joint pinned to the world")
	}
	euler := bob.Transform.EulerDegrees()
	if math32.Abs(euler.Y-45) > 1e-2 {
		t.Errorf("Expected yaw 45, got %f", euler.Y)
	}

	marker := scene.FindByUID(503)
	if marker.Parent != bob {
		t.Fatal("Expected Marker parented to Bob")
	}
	if marker.Transform.Scale != (rl.Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("Expected zero scale to default to 1, got %v", marker.Transform.Scale)
	}
}

func TestParseReservesUIDs(t *testing.T) {
	if _, err := Parse([]byte(pendulumScene)); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g := engine.NewGameObject("Fresh"); g.UID <= 503 {
		t.Errorf("Expected new UIDs above 503, got %d", g.UID)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"objects": [`},
		{"duplicate uid", `{"objects": [{"uid": 7, "name": "A"}, {"uid": 7, "name": "B"}]}`},
		{"untyped component", `{"objects": [{"name": "A", "components": [{"radius": 1}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestParseUnknownParent(t *testing.T) {
	scene, err := Parse([]byte(`{"objects": [{"uid": 900, "name": "Orphan", "parent": 12345}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g := scene.FindByUID(900); g == nil || g.Parent != nil {
		t.Error("Expected the orphan at the root")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a wrapped not-exist error, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	scene := engine.NewScene("Stack")

	floor := engine.NewGameObject("Floor")
	floor.Transform.Scale = rl.Vector3{X: 10, Y: 1, Z: 10}
	floor.AddComponent(components.NewBoxCollider(rl.Vector3{X: 1, Y: 1, Z: 1}))
	scene.AddGameObject(floor)

	crate := engine.NewGameObject("Crate")
	crate.Transform.Position = rl.Vector3{Y: 2}
	crate.Transform.SetEulerDegrees(rl.Vector3{Y: 30})
	crate.Active = false
	crate.AddComponent(components.NewBoxCollider(rl.Vector3{X: 1, Y: 1, Z: 1}))
	crate.AddComponent(components.NewRigidbody())
	crate.AddComponent(components.NewBallJoint(floor, rl.Vector3{Y: -0.5}))
	scene.AddGameObject(crate)

	lid := engine.NewGameObject("Lid")
	lid.Transform.Position = rl.Vector3{Y: 0.5}
	crate.AddChild(lid)
	scene.AddGameObject(lid)

	path := filepath.Join(t.TempDir(), "stack.json")
	if err := Save(scene, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Name != "Stack" || len(loaded.GameObjects) != 3 {
		t.Fatalf("Expected Stack with 3 objects, got %s with %d", loaded.Name, len(loaded.GameObjects))
	}
	c := loaded.FindByUID(crate.UID)
	if c == nil {
		t.Fatalf("Expected crate at uid %d", crate.UID)
	}
	if c.Active {
		t.Error("Expected the crate to stay inactive")
	}
	if c.Transform.Position.Y != 2 {
		t.Errorf("Expected crate Y 2, got %f", c.Transform.Position.Y)
	}
	if yaw := c.Transform.EulerDegrees().Y; math32.Abs(yaw-30) > 1e-2 {
		t.Errorf("Expected yaw 30, got %f", yaw)
	}
	j := engine.GetComponent[*components.BallJoint](c)
	if j == nil || j.Connected.UID != floor.UID {
		t.Error("Expected the joint to reference the floor")
	}
	if j != nil && j.Connected.Get(loaded) == nil {
		t.Error("Expected the joint reference to resolve in the loaded scene")
	}

	l := loaded.FindByUID(lid.UID)
	if l == nil || l.Parent != c {
		t.Error("Expected the lid parented to the crate")
	}

	f := loaded.FindByUID(floor.UID)
	col := engine.GetComponent[*components.Collider](f)
	if col == nil || col.Shape.HalfExtents != (rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}) {
		t.Error("Expected the floor collider half extents to survive")
	}
	if f.Transform.Scale.X != 10 {
		t.Errorf("Expected floor scale 10, got %f", f.Transform.Scale.X)
	}
}
