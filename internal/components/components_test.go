package components

import (
	"encoding/json"
	"testing"

	"rigid3d/internal/collision"
	"rigid3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// jsonRoundTrip mimics a scene save and load.
func jsonRoundTrip(t *testing.T, data map[string]any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestRigidbodyDefaults(t *testing.T) {
	rb := NewRigidbody()
	if rb.Mass != 1 {
		t.Errorf("Expected mass 1, got %f", rb.Mass)
	}
	if !rb.UseGravity {
		t.Error("Expected gravity on by default")
	}
	if rb.LinearDamping != UseWorldDamping {
		t.Errorf("Expected world damping sentinel, got %f", rb.LinearDamping)
	}
}

func TestRigidbodyDeserializeKeepsWorldDamping(t *testing.T) {
	rb := NewRigidbody()
	rb.Mass = 3
	rb.IsKinematic = true

	restored := NewRigidbody()
	restored.Deserialize(jsonRoundTrip(t, rb.Serialize()))

	if restored.Mass != 3 || !restored.IsKinematic {
		t.Errorf("Expected mass 3 kinematic, got %f %v", restored.Mass, restored.IsKinematic)
	}
	if restored.LinearDamping != UseWorldDamping {
		t.Errorf("Expected damping to stay on the world default, got %f", restored.LinearDamping)
	}
}

func TestColliderDeserializeLegacySize(t *testing.T) {
	c := NewSphereCollider(1)
	c.Deserialize(map[string]any{
		"shape": "box",
		"size":  []any{2.0, 4.0, 6.0},
	})
	if c.Shape.Kind != collision.Cuboid {
		t.Fatalf("Expected cuboid, got %v", c.Shape.Kind)
	}
	if c.Shape.HalfExtents != (rl.Vector3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("Expected half extents (1,2,3), got %v", c.Shape.HalfExtents)
	}
}

func TestColliderCapsuleThroughJSON(t *testing.T) {
	c := NewCapsuleCollider(0.75, 0.25)
	c.Friction = 0.9
	c.IsSensor = true

	restored := NewBoxCollider(rl.Vector3{X: 1, Y: 1, Z: 1})
	restored.Deserialize(jsonRoundTrip(t, c.Serialize()))

	if restored.Shape.Kind != collision.Capsule {
		t.Fatalf("Expected capsule, got %v", restored.Shape.Kind)
	}
	if restored.Shape.HalfHeight != 0.75 || restored.Shape.Radius != 0.25 {
		t.Errorf("Expected capsule 0.75/0.25, got %f/%f", restored.Shape.HalfHeight, restored.Shape.Radius)
	}
	if restored.Friction != 0.9 || !restored.IsSensor {
		t.Errorf("Expected friction 0.9 sensor, got %f %v", restored.Friction, restored.IsSensor)
	}
}

func TestColliderWorldPose(t *testing.T) {
	g := engine.NewGameObject("Crate")
	g.Transform.Position = rl.Vector3{X: 5}
	g.Transform.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}
	c := NewBoxCollider(rl.Vector3{X: 1, Y: 1, Z: 1})
	c.Offset = rl.Vector3{Y: 1}
	g.AddComponent(c)

	pos, _ := c.WorldPose()
	if pos.X != 5 || pos.Y != 2 {
		t.Errorf("Expected center (5,2,0), got %v", pos)
	}
	if c.WorldShape().HalfExtents.X != 1 {
		t.Errorf("Expected scaled half extent 1, got %f", c.WorldShape().HalfExtents.X)
	}

	box := c.WorldAABB()
	if box.Min.Y != 1 || box.Max.Y != 3 {
		t.Errorf("Expected Y range [1,3], got [%f,%f]", box.Min.Y, box.Max.Y)
	}

	inst := c.Instance()
	if inst.Entity != g.UID {
		t.Errorf("Expected entity %d, got %d", g.UID, inst.Entity)
	}
}

func TestBallJointSerialize(t *testing.T) {
	other := engine.NewGameObject("Other")
	j := NewBallJoint(other, rl.Vector3{Y: 0.5})

	restored := &BallJoint{}
	restored.Deserialize(jsonRoundTrip(t, j.Serialize()))
	if restored.Connected.UID != other.UID {
		t.Errorf("Expected connected UID %d, got %d", other.UID, restored.Connected.UID)
	}
	if restored.Anchor.Y != 0.5 {
		t.Errorf("Expected anchor Y 0.5, got %f", restored.Anchor.Y)
	}

	direct := &BallJoint{}
	direct.Deserialize(j.Serialize())
	if direct.Connected.UID != other.UID {
		t.Errorf("Expected connected UID %d without JSON, got %d", other.UID, direct.Connected.UID)
	}
}

func TestRegisteredPhysicsComponents(t *testing.T) {
	for _, name := range []string{"Rigidbody", "Collider", "BallJoint", "Tint", "KinematicDriver"} {
		c, err := engine.CreateComponent(name, nil)
		if err != nil {
			t.Errorf("CreateComponent(%q): %v", name, err)
			continue
		}
		if c.TypeName() != name {
			t.Errorf("Expected TypeName %q, got %q", name, c.TypeName())
		}
	}
}

func TestTintColorNames(t *testing.T) {
	tint := NewTint(rl.Orange)
	restored := NewTint(rl.White)
	restored.Deserialize(jsonRoundTrip(t, tint.Serialize()))
	if restored.Color != rl.Orange {
		t.Errorf("Expected orange, got %v", restored.Color)
	}

	custom := rl.Color{R: 0x12, G: 0x34, B: 0x56, A: 0xff}
	name := LookupColorName(custom)
	if name != "#123456ff" {
		t.Errorf("Expected #123456ff, got %s", name)
	}
	if LookupColor(name) != custom {
		t.Errorf("Expected %v back from %s, got %v", custom, name, LookupColor(name))
	}
	if LookupColor("NotAColor") != rl.White {
		t.Error("Expected unknown names to fall back to white")
	}
}

func TestKinematicDriverWritesVelocities(t *testing.T) {
	g := engine.NewGameObject("Platform")
	rb := NewRigidbody()
	rb.IsKinematic = true
	g.AddComponent(rb)
	d := NewKinematicDriver(rl.Vector3{Y: 2}, 90, 2, 0.5)
	g.AddComponent(d)

	d.Update(0)

	// At t=0 the path heads along +Z at radius*speed
	if rb.Velocity.X != 0 || rb.Velocity.Z != 1 {
		t.Errorf("Expected velocity (0,0,1), got %v", rb.Velocity)
	}
	if diff := rb.AngularVelocity.Y - rl.Deg2rad*90; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("Expected spin of pi/2 about Y, got %v", rb.AngularVelocity)
	}

	rb.IsKinematic = false
	rb.Velocity = rl.Vector3{}
	d.Update(1)
	if rb.Velocity != (rl.Vector3{}) {
		t.Errorf("Expected dynamic bodies to be left alone, got %v", rb.Velocity)
	}
}

func TestKinematicDriverSerialize(t *testing.T) {
	d := NewKinematicDriver(rl.Vector3{X: 1}, 30, 4, 0.25)
	d.Phase = 1.5

	restored := NewKinematicDriver(rl.Vector3{Y: 1}, 0, 0, 0)
	restored.Deserialize(jsonRoundTrip(t, d.Serialize()))
	if restored.RotationAxis.X != 1 || restored.RotationSpeed != 30 ||
		restored.MovementRadius != 4 || restored.MovementSpeed != 0.25 || restored.Phase != 1.5 {
		t.Errorf("Expected the driver to survive a round trip, got %+v", restored)
	}
}
