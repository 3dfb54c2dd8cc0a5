package components

import (
	"rigid3d/internal/collision"
	"rigid3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("Collider", func() engine.Serializable {
		return NewBoxCollider(rl.Vector3{X: 1, Y: 1, Z: 1})
	})
}

const (
	DefaultFriction = 0.4
	DefaultDensity  = 1.0
)

// Collider attaches a convex shape to a GameObject. Without a Rigidbody the
// collider is static geometry.
type Collider struct {
	engine.BaseComponent
	Shape       collision.Shape
	Offset      rl.Vector3 // local, scaled with the object
	Friction    float32
	Restitution float32 // 0 = no bounce, 1 = perfect bounce
	Density     float32
	IsSensor    bool // reports collisions but never pushes
}

func newCollider(shape collision.Shape) *Collider {
	return &Collider{
		Shape:    shape,
		Friction: DefaultFriction,
		Density:  DefaultDensity,
	}
}

// NewBoxCollider takes the full size of the box, like the editor shows it.
func NewBoxCollider(size rl.Vector3) *Collider {
	return newCollider(collision.NewCuboid(rl.Vector3Scale(size, 0.5)))
}

func NewSphereCollider(radius float32) *Collider {
	return newCollider(collision.NewSphere(radius))
}

func NewCapsuleCollider(halfHeight, radius float32) *Collider {
	return newCollider(collision.NewCapsule(halfHeight, radius))
}

func NewCylinderCollider(halfHeight, radius float32) *Collider {
	return newCollider(collision.NewCylinder(halfHeight, radius))
}

// WorldShape is the shape with the object's world scale applied.
func (c *Collider) WorldShape() collision.Shape {
	return c.Shape.Scaled(c.GetGameObject().WorldScale())
}

// WorldPose returns the world-space center and rotation of the shape.
func (c *Collider) WorldPose() (rl.Vector3, rl.Quaternion) {
	g := c.GetGameObject()
	rot := g.WorldRotation()
	offset := rl.Vector3Multiply(c.Offset, g.WorldScale())
	return rl.Vector3Add(g.WorldPosition(), rl.Vector3RotateByQuaternion(offset, rot)), rot
}

func (c *Collider) WorldAABB() collision.AABB {
	pos, rot := c.WorldPose()
	return c.WorldShape().WorldAABB(pos, rot)
}

// Instance places the collider for the narrow phase.
func (c *Collider) Instance() collision.Instance {
	pos, rot := c.WorldPose()
	return collision.Instance{
		Entity:   c.GetGameObject().UID,
		Shape:    c.WorldShape(),
		Position: pos,
		Rotation: rot,
	}
}

// TypeName implements engine.Serializable
func (c *Collider) TypeName() string {
	return "Collider"
}

// Serialize implements engine.Serializable
func (c *Collider) Serialize() map[string]any {
	data := map[string]any{
		"type":        "Collider",
		"shape":       c.Shape.Kind.String(),
		"friction":    c.Friction,
		"restitution": c.Restitution,
		"density":     c.Density,
	}
	switch c.Shape.Kind {
	case collision.Cuboid:
		data["halfExtents"] = vec3Data(c.Shape.HalfExtents)
	case collision.Sphere:
		data["radius"] = c.Shape.Radius
	default:
		data["radius"] = c.Shape.Radius
		data["halfHeight"] = c.Shape.HalfHeight
	}
	if c.Offset != (rl.Vector3{}) {
		data["offset"] = vec3Data(c.Offset)
	}
	if c.IsSensor {
		data["isSensor"] = true
	}
	return data
}

// Deserialize implements engine.Serializable. "size" is accepted as the full
// box size for scenes written before half extents were stored.
func (c *Collider) Deserialize(data map[string]any) {
	if name, ok := data["shape"].(string); ok {
		if kind, err := collision.ParseShapeKind(name); err == nil {
			c.Shape.Kind = kind
		}
	}
	if v, ok := dataVec3(data["halfExtents"]); ok {
		c.Shape.HalfExtents = v
	} else if v, ok := dataVec3(data["size"]); ok {
		c.Shape.HalfExtents = rl.Vector3Scale(v, 0.5)
	}
	if r, ok := dataFloat(data, "radius"); ok {
		c.Shape.Radius = r
	}
	if h, ok := dataFloat(data, "halfHeight"); ok {
		c.Shape.HalfHeight = h
	}
	if v, ok := dataVec3(data["offset"]); ok {
		c.Offset = v
	}
	if f, ok := dataFloat(data, "friction"); ok {
		c.Friction = f
	}
	if r, ok := dataFloat(data, "restitution"); ok {
		c.Restitution = r
	}
	if d, ok := dataFloat(data, "density"); ok {
		c.Density = d
	}
	if s, ok := data["isSensor"].(bool); ok {
		c.IsSensor = s
	}
}
