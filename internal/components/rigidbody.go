package components

import (
	"rigid3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("Rigidbody", func() engine.Serializable {
		return NewRigidbody()
	})
}

// UseWorldDamping makes a body fall back to the physics config damping.
const UseWorldDamping = -1

type Rigidbody struct {
	engine.BaseComponent
	Velocity        rl.Vector3
	AngularVelocity rl.Vector3 // radians per second, world space
	Mass            float32    // <= 0 derives mass from collider density
	LinearDamping   float32
	AngularDamping  float32
	UseGravity      bool
	IsKinematic     bool // moves but doesn't get pushed by physics
}

func NewRigidbody() *Rigidbody {
	return &Rigidbody{
		Mass:           1.0,
		LinearDamping:  UseWorldDamping,
		AngularDamping: UseWorldDamping,
		UseGravity:     true,
	}
}

// TypeName implements engine.Serializable
func (r *Rigidbody) TypeName() string {
	return "Rigidbody"
}

// Serialize implements engine.Serializable
func (r *Rigidbody) Serialize() map[string]any {
	data := map[string]any{
		"type":        "Rigidbody",
		"mass":        r.Mass,
		"useGravity":  r.UseGravity,
		"isKinematic": r.IsKinematic,
	}
	if r.LinearDamping >= 0 {
		data["linearDamping"] = r.LinearDamping
	}
	if r.AngularDamping >= 0 {
		data["angularDamping"] = r.AngularDamping
	}
	if r.Velocity != (rl.Vector3{}) {
		data["velocity"] = vec3Data(r.Velocity)
	}
	if r.AngularVelocity != (rl.Vector3{}) {
		data["angularVelocity"] = vec3Data(r.AngularVelocity)
	}
	return data
}

// Deserialize implements engine.Serializable
func (r *Rigidbody) Deserialize(data map[string]any) {
	if m, ok := data["mass"].(float64); ok {
		r.Mass = float32(m)
	}
	if d, ok := data["linearDamping"].(float64); ok {
		r.LinearDamping = float32(d)
	}
	if d, ok := data["angularDamping"].(float64); ok {
		r.AngularDamping = float32(d)
	}
	if g, ok := data["useGravity"].(bool); ok {
		r.UseGravity = g
	}
	if k, ok := data["isKinematic"].(bool); ok {
		r.IsKinematic = k
	}
	if v, ok := dataVec3(data["velocity"]); ok {
		r.Velocity = v
	}
	if v, ok := dataVec3(data["angularVelocity"]); ok {
		r.AngularVelocity = v
	}
}
