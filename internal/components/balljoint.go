package components

import (
	"rigid3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("BallJoint", func() engine.Serializable {
		return &BallJoint{}
	})
}

// BallJoint pins a point of this object to the same world point on the
// connected object, leaving rotation free. An empty Connected reference pins
// the point to the world.
type BallJoint struct {
	engine.BaseComponent
	Connected engine.GameObjectRef
	Anchor    rl.Vector3 // local to this object
}

func NewBallJoint(connected *engine.GameObject, anchor rl.Vector3) *BallJoint {
	j := &BallJoint{Anchor: anchor}
	j.Connected.Set(connected)
	return j
}

// WorldAnchor is the anchor in world space at the object's current pose.
func (j *BallJoint) WorldAnchor() rl.Vector3 {
	g := j.GetGameObject()
	scaled := rl.Vector3Multiply(j.Anchor, g.WorldScale())
	return rl.Vector3Add(g.WorldPosition(), rl.Vector3RotateByQuaternion(scaled, g.WorldRotation()))
}

// TypeName implements engine.Serializable
func (j *BallJoint) TypeName() string {
	return "BallJoint"
}

// Serialize implements engine.Serializable
func (j *BallJoint) Serialize() map[string]any {
	return map[string]any{
		"type":      "BallJoint",
		"connected": j.Connected.UID,
		"anchor":    vec3Data(j.Anchor),
	}
}

// Deserialize implements engine.Serializable
func (j *BallJoint) Deserialize(data map[string]any) {
	if _, ok := data["connected"]; ok {
		j.Connected = engine.RefFromData(data["connected"])
	}
	if v, ok := dataVec3(data["anchor"]); ok {
		j.Anchor = v
	}
}
