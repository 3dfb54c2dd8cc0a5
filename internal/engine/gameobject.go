package engine

import (
	"sync/atomic"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
	Scale    rl.Vector3
}

// EulerDegrees returns the rotation as pitch/yaw/roll in degrees.
func (t Transform) EulerDegrees() rl.Vector3 {
	return rl.Vector3Scale(rl.QuaternionToEuler(t.Rotation), rl.Rad2deg)
}

// SetEulerDegrees sets the rotation from pitch/yaw/roll in degrees.
func (t *Transform) SetEulerDegrees(deg rl.Vector3) {
	r := rl.Vector3Scale(deg, rl.Deg2rad)
	t.Rotation = rl.QuaternionFromEuler(r.X, r.Y, r.Z)
}

var nextUID atomic.Uint64

type GameObject struct {
	UID        uint64
	Name       string
	Tags       []string
	Transform  Transform
	Active     bool
	Scene      *Scene
	Parent     *GameObject
	Children   []*GameObject
	components []Component
	started    bool
}

func NewGameObject(name string) *GameObject {
	return &GameObject{
		UID:    nextUID.Add(1),
		Name:   name,
		Active: true,
		Transform: Transform{
			Position: rl.Vector3{},
			Rotation: rl.QuaternionIdentity(),
			Scale:    rl.Vector3{X: 1, Y: 1, Z: 1},
		},
		components: make([]Component, 0),
		Children:   make([]*GameObject, 0),
	}
}

// ReserveUID makes sure freshly created objects never reuse uid. Scene
// loaders call it for every UID read from disk.
func ReserveUID(uid uint64) {
	for {
		cur := nextUID.Load()
		if cur >= uid || nextUID.CompareAndSwap(cur, uid) {
			return
		}
	}
}

func (g *GameObject) AddComponent(c Component) {
	c.SetGameObject(g)
	g.components = append(g.components, c)
}

// GetComponent returns the first component of type T, or the zero value.
func GetComponent[T Component](g *GameObject) T {
	var zero T
	for _, c := range g.components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

func (g *GameObject) Start() {
	if g.started {
		return
	}
	for _, c := range g.components {
		c.Start()
	}
	g.started = true
}

func (g *GameObject) Update(deltaTime float32) {
	if !g.Active {
		return
	}
	for _, c := range g.components {
		c.Update(deltaTime)
	}
}

func (g *GameObject) Components() []Component {
	return g.components
}

func (g *GameObject) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (g *GameObject) AddChild(child *GameObject) {
	child.Parent = g
	g.Children = append(g.Children, child)
}

func (g *GameObject) RemoveChild(child *GameObject) {
	for i, c := range g.Children {
		if c == child {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

func (g *GameObject) WorldPosition() rl.Vector3 {
	if g.Parent == nil {
		return g.Transform.Position
	}
	parentPos := g.Parent.WorldPosition()
	parentRot := g.Parent.WorldRotation()
	parentScale := g.Parent.WorldScale()

	// Scale local position by parent's world scale, then rotate into the parent frame
	scaled := rl.Vector3Multiply(g.Transform.Position, parentScale)
	return rl.Vector3Add(parentPos, rl.Vector3RotateByQuaternion(scaled, parentRot))
}

func (g *GameObject) WorldRotation() rl.Quaternion {
	if g.Parent == nil {
		return g.Transform.Rotation
	}
	return rl.QuaternionMultiply(g.Parent.WorldRotation(), g.Transform.Rotation)
}

func (g *GameObject) WorldScale() rl.Vector3 {
	if g.Parent == nil {
		return g.Transform.Scale
	}
	return rl.Vector3Multiply(g.Parent.WorldScale(), g.Transform.Scale)
}

// SetWorldPose moves the object so its world position and rotation match.
// Parented objects get the equivalent local transform.
func (g *GameObject) SetWorldPose(position rl.Vector3, rotation rl.Quaternion) {
	if g.Parent == nil {
		g.Transform.Position = position
		g.Transform.Rotation = rotation
		return
	}
	parentRot := g.Parent.WorldRotation()
	inv := rl.QuaternionInvert(parentRot)
	local := rl.Vector3RotateByQuaternion(rl.Vector3Subtract(position, g.Parent.WorldPosition()), inv)
	ps := g.Parent.WorldScale()
	g.Transform.Position = rl.Vector3{X: safeDiv(local.X, ps.X), Y: safeDiv(local.Y, ps.Y), Z: safeDiv(local.Z, ps.Z)}
	g.Transform.Rotation = rl.QuaternionNormalize(rl.QuaternionMultiply(inv, rotation))
}

func safeDiv(a, b float32) float32 {
	if math32.Abs(b) < 1e-8 {
		return a
	}
	return a / b
}
